package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Insights(ctx context.Context, userID snowflake.ID) (*InsightsList, error)
}
