package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilingDeadline(t *testing.T) {
	cases := []struct {
		name  string
		year  int
		month int
		want  time.Time
	}{
		{"october", 2025, 10, time.Date(2025, 11, 15, 23, 59, 59, 0, time.UTC)},
		{"december rolls into next year", 2025, 12, time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)},
		{"january", 2026, 1, time.Date(2026, 2, 15, 23, 59, 59, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilingDeadline(tc.year, tc.month, 15))
		})
	}
}

func TestMonthBounds(t *testing.T) {
	start := MonthStart(2025, 12)
	end := MonthEnd(2025, 12)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusAwaitingPayment))
	assert.True(t, StatusOverdue.CanTransition(StatusSubmitted))
	assert.True(t, StatusPaymentReceived.CanTransition(StatusRejected))
	assert.True(t, StatusRejected.CanTransition(StatusSubmitted))

	assert.False(t, StatusPending.CanTransition(StatusPaymentReceived))
	assert.False(t, StatusAwaitingPayment.CanTransition(StatusInProgress))
	assert.False(t, StatusSubmitted.CanTransition(StatusPending))
	assert.False(t, StatusFiledByAdmin.CanTransition(StatusSubmitted))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusSubmitted.IsTerminal())
	assert.True(t, StatusFiledByAdmin.IsTerminal())
	assert.False(t, StatusRejected.IsTerminal())
	assert.False(t, StatusOverdue.IsTerminal())
}

func TestInvalidTransitionError(t *testing.T) {
	err := NewInvalidTransition("complete filing", StatusPaymentReceived)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "payment_received")

	var transitionErr *InvalidTransitionError
	assert.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, StatusPaymentReceived, transitionErr.Current)
}
