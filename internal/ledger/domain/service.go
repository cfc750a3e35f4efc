package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type RecordIncomeRequest struct {
	UserID      snowflake.ID
	AmountGel   float64
	Category    string
	Description string
	IncomeDate  time.Time
}

type ListIncomeRequest struct {
	UserID snowflake.ID
	From   *time.Time
	To     *time.Time
}

// Service is the income ledger boundary the declaration generator reads
// aggregates through.
type Service interface {
	Record(ctx context.Context, req RecordIncomeRequest) (IncomeRecord, error)
	List(ctx context.Context, req ListIncomeRequest) ([]IncomeRecord, error)
	// SumAndList aggregates all income dated within [from, to).
	SumAndList(ctx context.Context, userID snowflake.ID, from, to time.Time) (MonthlyIncome, error)
	// Total sums income dated within [from, to) without loading records.
	Total(ctx context.Context, userID snowflake.ID, from, to time.Time) (float64, error)
}

var (
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidDate   = errors.New("invalid_date")
)
