package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/apperrors"
	"github.com/mmynk/splitledger/internal/models"
)

func TestBuildBillSplits(t *testing.T) {
	roster := []models.Participant{
		registered("alice", "Alice"),
		registered("bob", "Bob"),
		guest("carol", "Carol"),
	}

	tests := []struct {
		name         string
		total        string
		raw          []RawSplit
		wantErr      error
		validateFunc func(t *testing.T, splits []models.Split)
	}{
		{
			name:  "exact split with guest",
			total: "100",
			raw: []RawSplit{
				{ParticipantID: "alice", Amount: d("50")},
				{ParticipantID: "carol", Amount: d("50")},
			},
			validateFunc: func(t *testing.T, splits []models.Split) {
				require.Len(t, splits, 2)
				assert.Equal(t, "Alice", splits[0].ParticipantName)
				assert.True(t, splits[0].IsRegistered)
				assert.Equal(t, "Carol", splits[1].ParticipantName)
				assert.False(t, splits[1].IsRegistered)
				assertDecimal(t, "50", splits[1].Amount)
			},
		},
		{
			name:  "sum within one cent is accepted",
			total: "100",
			raw: []RawSplit{
				{ParticipantID: "alice", Amount: d("33.33")},
				{ParticipantID: "bob", Amount: d("33.33")},
				{ParticipantID: "carol", Amount: d("33.33")},
			},
			validateFunc: func(t *testing.T, splits []models.Split) {
				assert.Len(t, splits, 3)
			},
		},
		{
			name:  "zero amount entries are dropped",
			total: "40",
			raw: []RawSplit{
				{ParticipantID: "alice", Amount: d("40")},
				{ParticipantID: "bob", Amount: d("0")},
			},
			validateFunc: func(t *testing.T, splits []models.Split) {
				require.Len(t, splits, 1)
				assert.Equal(t, "alice", splits[0].ParticipantID)
			},
		},
		{
			name:    "empty splits",
			total:   "10",
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "zero total",
			total:   "0",
			raw:     []RawSplit{{ParticipantID: "alice", Amount: d("0")}},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "negative total",
			total:   "-5",
			raw:     []RawSplit{{ParticipantID: "alice", Amount: d("-5")}},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:  "sum off by more than a cent",
			total: "100",
			raw: []RawSplit{
				{ParticipantID: "alice", Amount: d("60")},
				{ParticipantID: "bob", Amount: d("39.98")},
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "unknown participant",
			total:   "10",
			raw:     []RawSplit{{ParticipantID: "mallory", Amount: d("10")}},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:  "duplicate participant",
			total: "10",
			raw: []RawSplit{
				{ParticipantID: "alice", Amount: d("5")},
				{ParticipantID: "alice", Amount: d("5")},
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:  "negative split",
			total: "10",
			raw: []RawSplit{
				{ParticipantID: "alice", Amount: d("15")},
				{ParticipantID: "bob", Amount: d("-5")},
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := BuildBillSplits(d(tt.total), tt.raw, roster)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestBuildBillSplits_AcceptsIffSumMatches(t *testing.T) {
	roster := []models.Participant{registered("a", "A"), registered("b", "B")}

	for _, delta := range []string{"-0.01", "-0.005", "0", "0.005", "0.01"} {
		raw := []RawSplit{
			{ParticipantID: "a", Amount: d("70")},
			{ParticipantID: "b", Amount: d("30").Add(d(delta))},
		}
		_, err := BuildBillSplits(d("100"), raw, roster)
		assert.NoError(t, err, "delta %s", delta)
	}

	for _, delta := range []string{"-0.02", "-0.011", "0.011", "1"} {
		raw := []RawSplit{
			{ParticipantID: "a", Amount: d("70")},
			{ParticipantID: "b", Amount: d("30").Add(d(delta))},
		}
		_, err := BuildBillSplits(d("100"), raw, roster)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "delta %s", delta)
	}
}
