package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the back-office read surface: the filing queue, dashboard
// numbers, and cross-user listings. Mutating the queue goes through the
// declaration service.
type Service interface {
	Queue(ctx context.Context) (*Queue, error)
	Dashboard(ctx context.Context) (*DashboardStats, error)
	ListAll(ctx context.Context, filter ListFilter) (*DeclarationList, error)
	UserDeclarations(ctx context.Context, userID snowflake.ID) (*UserHistory, error)
	Users(ctx context.Context) (*Directory, error)
}
