// Package service implements the splitledger Connect services on top of the
// ledger core and the storage layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage"
)

// Deps bundles the collaborators shared by the ledger services.
// Locks must be the same instance for every service so that per-group and
// per-settlement critical sections exclude each other.
type Deps struct {
	Store    storage.Store
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Locks    *KeyedMutex
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Locks == nil {
		d.Locks = NewKeyedMutex()
	}
	return d
}

type nopNotifier struct{}

func (nopNotifier) Notify(notify.Event, ...string) {}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks the validate tags of a request message.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	problems := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			problems[i] = fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			problems[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(problems, "; "))
}

// currentUser returns the authenticated caller's ID.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// toConnectError maps domain errors to Connect codes. Unknown errors are
// logged and replaced by a generic message.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, apperrors.ErrAuthorization):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, apperrors.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, apperrors.ErrInvalidState):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, apperrors.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	slog.Error("Internal error", "error", err)
	return connect.NewError(connect.CodeInternal, errors.New("internal server error"))
}
