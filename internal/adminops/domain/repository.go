package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
)

type StatusCounts struct {
	AwaitingPayment int
	PaymentReceived int
	InProgress      int
}

type Repository interface {
	// QueueItems loads declarations in the given statuses across all
	// users, owner email resolved, ordered by filing deadline ascending.
	QueueItems(ctx context.Context, db *gorm.DB, statuses []declarationdomain.Status) ([]QueueItem, error)

	CountCreatedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (StatusCounts, error)
	CountFiledBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int, error)
	CountRejectedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int, error)
	RevenueBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (float64, error)
	// AverageFilingHours averages payment-to-filed turnaround for
	// declarations filed within the window. Nil when none were.
	AverageFilingHours(ctx context.Context, db *gorm.DB, from, to time.Time) (*float64, error)

	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]QueueItem, int64, float64, error)
	ByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]QueueItem, error)
	UserDirectory(ctx context.Context, db *gorm.DB) ([]DirectoryUser, error)
}
