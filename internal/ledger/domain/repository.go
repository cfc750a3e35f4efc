package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *IncomeRecord) error
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to *time.Time) ([]*IncomeRecord, error)
	SumRange(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (MonthlyIncome, error)
	SumTotal(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (float64, error)
}
