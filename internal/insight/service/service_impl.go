package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tbilisoft/declara/internal/clock"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	"github.com/tbilisoft/declara/internal/insight/domain"
	taxstatsdomain "github.com/tbilisoft/declara/internal/taxstats/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  declarationdomain.Repository
	Stats taxstatsdomain.Service
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  declarationdomain.Repository
	stats taxstatsdomain.Service
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("insight.service"),
		repo:  p.Repo,
		stats: p.Stats,
		clock: p.Clock,
	}
}

func (s *service) Insights(ctx context.Context, userID snowflake.ID) (*domain.InsightsList, error) {
	now := s.clock.Now()
	year := now.Year()
	insights := make([]domain.Insight, 0, 8)

	open, err := s.repo.FindPending(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	overdueCount := 0
	for _, decl := range open {
		if decl.FilingDeadline.Before(now) {
			overdueCount++
			continue
		}
		if insight, ok := s.deadlineReminder(decl, now); ok {
			insights = append(insights, insight)
		}
	}

	if overdueCount > 0 {
		insights = append(insights, domain.Insight{
			Type:     domain.TypeComplianceAlert,
			Severity: domain.SeverityCritical,
			Title:    fmt.Sprintf("%d Overdue Declaration(s)", overdueCount),
			Message: fmt.Sprintf(
				"You have %d overdue tax declaration(s). File immediately to avoid penalties.",
				overdueCount),
			ActionRequired: true,
			CreatedAt:      now,
		})
	}

	overview, err := s.stats.Overview(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	if insight, ok := thresholdWarning(overview, now); ok {
		insights = append(insights, insight)
	}

	if insight, ok, err := s.incomeChange(ctx, userID, now); err != nil {
		return nil, err
	} else if ok {
		insights = append(insights, insight)
	}

	if overview.ThresholdRemainingGel > 100000 {
		insights = append(insights, domain.Insight{
			Type:     domain.TypeOptimizationTip,
			Severity: domain.SeverityInfo,
			Title:    "Room for Growth",
			Message: fmt.Sprintf(
				"You have %s GEL remaining capacity this year. Consider taking on additional projects.",
				formatGel(overview.ThresholdRemainingGel)),
			CreatedAt: now,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Severity.Rank() < insights[j].Severity.Rank()
	})

	highPriority := 0
	for _, i := range insights {
		if i.Severity == domain.SeverityHigh || i.Severity == domain.SeverityCritical {
			highPriority++
		}
	}

	return &domain.InsightsList{
		Insights:          insights,
		TotalInsights:     len(insights),
		HighPriorityCount: highPriority,
	}, nil
}

// deadlineReminder builds a reminder for a declaration whose deadline is
// within the next seven days. Anything further out is suppressed.
func (s *service) deadlineReminder(decl *declarationdomain.Declaration, now time.Time) (domain.Insight, bool) {
	daysUntil := int(decl.FilingDeadline.Sub(now).Hours() / 24)

	var severity domain.Severity
	var title string
	switch {
	case daysUntil <= 1:
		severity = domain.SeverityCritical
		title = "Declaration Due Tomorrow!"
	case daysUntil <= 3:
		severity = domain.SeverityHigh
		title = fmt.Sprintf("Declaration Due in %d Days", daysUntil)
	case daysUntil <= 7:
		severity = domain.SeverityMedium
		title = fmt.Sprintf("Declaration Due in %d Days", daysUntil)
	default:
		return domain.Insight{}, false
	}

	monthName := time.Date(decl.Year, time.Month(decl.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	return domain.Insight{
		Type:     domain.TypeDeclarationReminder,
		Severity: severity,
		Title:    title,
		Message: fmt.Sprintf(
			"Your %s declaration is due on %s. Income: %.2f GEL, Tax: %.2f GEL",
			monthName, decl.FilingDeadline.Format("January 02"), decl.IncomeGel, decl.TaxDueGel),
		ActionURL:      fmt.Sprintf("/tax-stats/declarations/%d/%d", decl.Year, decl.Month),
		ActionText:     "Prepare Declaration",
		ActionRequired: true,
		CreatedAt:      now,
	}, true
}

func thresholdWarning(overview *taxstatsdomain.Overview, now time.Time) (domain.Insight, bool) {
	used := overview.ThresholdPercentageUsed
	switch {
	case used >= 95:
		return domain.Insight{
			Type:     domain.TypeThresholdWarning,
			Severity: domain.SeverityCritical,
			Title:    "Near Annual Threshold Limit",
			Message: fmt.Sprintf(
				"You've used %.1f%% of your 500k annual limit. Only %s GEL remaining. Consult an accountant.",
				used, formatGel(overview.ThresholdRemainingGel)),
			CreatedAt: now,
		}, true
	case used >= 85:
		return domain.Insight{
			Type:     domain.TypeThresholdWarning,
			Severity: domain.SeverityHigh,
			Title:    "Approaching Annual Threshold",
			Message: fmt.Sprintf(
				"You've used %.1f%% of your 500k annual limit. Plan accordingly for remaining months.",
				used),
			CreatedAt: now,
		}, true
	case used >= 75:
		return domain.Insight{
			Type:     domain.TypeThresholdWarning,
			Severity: domain.SeverityMedium,
			Title:    "75% of Annual Threshold Reached",
			Message: fmt.Sprintf(
				"You've reached 75%% of your annual limit. %s GEL remaining for the year.",
				formatGel(overview.ThresholdRemainingGel)),
			CreatedAt: now,
		}, true
	}
	return domain.Insight{}, false
}

// incomeChange flags a swing of more than 30% in last month's income
// against the average of the months before it.
func (s *service) incomeChange(ctx context.Context, userID snowflake.ID, now time.Time) (domain.Insight, bool, error) {
	if now.Month() == time.January {
		return domain.Insight{}, false, nil
	}

	year := now.Year()
	lastMonth := int(now.Month()) - 1

	declarations, err := s.repo.FindByUser(ctx, s.db, userID, &year)
	if err != nil {
		return domain.Insight{}, false, err
	}

	var lastIncome float64
	haveLast := false
	sum, count := 0.0, 0
	for _, d := range declarations {
		switch {
		case d.Month == lastMonth:
			lastIncome = d.IncomeGel
			haveLast = true
		case d.Month < lastMonth:
			sum += d.IncomeGel
			count++
		}
	}

	if !haveLast || lastIncome <= 0 || count == 0 {
		return domain.Insight{}, false, nil
	}
	avg := sum / float64(count)
	if avg <= 0 {
		return domain.Insight{}, false, nil
	}

	change := (lastIncome - avg) / avg * 100
	monthName := time.Date(year, time.Month(lastMonth), 1, 0, 0, 0, 0, time.UTC).Format("January")

	if change > 30 {
		return domain.Insight{
			Type:     domain.TypeIncomeSpike,
			Severity: domain.SeverityInfo,
			Title:    fmt.Sprintf("Income Increased %.0f%% Last Month", change),
			Message: fmt.Sprintf(
				"Your %s income was %.0f%% higher than your average. Great month!",
				monthName, change),
			CreatedAt: now,
		}, true, nil
	}
	if change < -30 {
		return domain.Insight{
			Type:     domain.TypeIncomeDrop,
			Severity: domain.SeverityInfo,
			Title:    fmt.Sprintf("Income Decreased %.0f%% Last Month", math.Abs(change)),
			Message: fmt.Sprintf(
				"Your %s income was %.0f%% lower than your average.",
				monthName, math.Abs(change)),
			CreatedAt: now,
		}, true, nil
	}
	return domain.Insight{}, false, nil
}

func formatGel(v float64) string {
	n := int64(v + 0.5)
	neg := false
	if n < 0 {
		neg = true
		n = -n
	}
	out := fmt.Sprintf("%d", n)
	for i := len(out) - 3; i > 0; i -= 3 {
		out = out[:i] + "," + out[i:]
	}
	if neg {
		return "-" + out
	}
	return out
}
