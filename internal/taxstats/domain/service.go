package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Overview(ctx context.Context, userID snowflake.ID, year int) (*Overview, error)
	MonthlyBreakdown(ctx context.Context, userID snowflake.ID, year int) (*MonthlyBreakdown, error)
	Projection(ctx context.Context, userID snowflake.ID) (*Projection, error)
	Comparison(ctx context.Context, userID snowflake.ID, years []int) (*Comparison, error)
	ChartData(ctx context.Context, userID snowflake.ID, chartType ChartType, year int) (*ChartData, error)
	DeclarationDetails(ctx context.Context, userID snowflake.ID, year, month int) (*DeclarationDetails, error)
}
