// Package notify fans out "something changed" events to connected
// participants so their dashboards can refresh.
//
// Delivery is best-effort: an event for a participant with no subscription
// is discarded, and a subscriber whose buffer is full misses the event.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Kind identifies what changed.
type Kind string

const (
	// KindBalancesChanged is sent when a bill mutation or member removal
	// changes the balances of a group.
	KindBalancesChanged Kind = "balances_changed"

	// KindSettlementUpdated is sent when a settlement is created or decided.
	KindSettlementUpdated Kind = "settlement_updated"
)

// Event is delivered to each subscriber of an affected participant.
type Event struct {
	Kind         Kind
	GroupID      string
	SettlementID string
	Status       string
	At           int64
}

// Notifier is told which participants are affected by a change.
type Notifier interface {
	Notify(event Event, participantIDs ...string)
}

// Subscriber hands out per-participant event streams.
type Subscriber interface {
	Subscribe(participantID string) (<-chan Event, func())
}

// Option configures a Hub.
type Option func(*Hub)

// WithBuffer sets the per-subscription channel capacity.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithDropHook registers fn to be called each time an event is dropped
// because a subscriber is not keeping up.
func WithDropHook(fn func()) Option {
	return func(h *Hub) {
		h.onDrop = fn
	}
}

type subscription struct {
	ch chan Event
}

// Hub is an in-process Notifier with per-participant subscriptions.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	buffer int
	onDrop func()
}

var (
	_ Notifier   = (*Hub)(nil)
	_ Subscriber = (*Hub)(nil)
)

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: 16,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers interest in events for participantID. The returned
// cancel function unregisters and closes the channel; it is safe to call
// more than once.
func (h *Hub) Subscribe(participantID string) (<-chan Event, func()) {
	sub := &subscription{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.subs[participantID] == nil {
		h.subs[participantID] = make(map[*subscription]struct{})
	}
	h.subs[participantID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[participantID], sub)
			if len(h.subs[participantID]) == 0 {
				delete(h.subs, participantID)
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Notify delivers event to every subscription of the given participants.
// Duplicate IDs receive the event once.
func (h *Hub) Notify(event Event, participantIDs ...string) {
	if event.At == 0 {
		event.At = time.Now().Unix()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		for sub := range h.subs[id] {
			select {
			case sub.ch <- event:
			default:
				slog.Warn("Dropping notification for slow subscriber",
					"participant_id", id,
					"kind", event.Kind,
				)
				if h.onDrop != nil {
					h.onDrop()
				}
			}
		}
	}
}

// Subscribers returns the number of live subscriptions for participantID.
func (h *Hub) Subscribers(participantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[participantID])
}
