package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, declaration *Declaration) error
	FindByKey(ctx context.Context, db *gorm.DB, userID snowflake.ID, year, month int) (*Declaration, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Declaration, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, year *int) ([]*Declaration, error)
	FindPending(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Declaration, error)

	// UpdateWhereStatus applies updates only when the declaration is still
	// in one of the expected statuses and reports the number of rows
	// changed. A zero count means the guard failed.
	UpdateWhereStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected []Status, updates map[string]any) (int64, error)

	LastSubmitted(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Declaration, error)
	NextPendingDeadline(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Declaration, error)

	// DuePending lists pending declarations across all users whose
	// deadline falls in [from, to), ordered by deadline ascending.
	DuePending(ctx context.Context, db *gorm.DB, from, to time.Time) ([]*Declaration, error)
	// PastDuePending lists pending declarations whose deadline has
	// already passed.
	PastDuePending(ctx context.Context, db *gorm.DB, now time.Time) ([]*Declaration, error)
	// MarkOverdue flips pending declarations past their deadline to
	// overdue and reports how many rows changed.
	MarkOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
