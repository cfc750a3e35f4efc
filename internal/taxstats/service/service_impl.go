package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tbilisoft/declara/internal/clock"
	"github.com/tbilisoft/declara/internal/config"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	ledgerdomain "github.com/tbilisoft/declara/internal/ledger/domain"
	"github.com/tbilisoft/declara/internal/taxstats/domain"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   declarationdomain.Repository
	Decls  declarationdomain.Service
	Ledger ledgerdomain.Service
	Clock  clock.Clock
	Tax    config.TaxConfig
}

type service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   declarationdomain.Repository
	decls  declarationdomain.Service
	ledger ledgerdomain.Service
	clock  clock.Clock
	tax    config.TaxConfig
}

func New(p Params) domain.Service {
	return &service{
		db:     p.DB,
		log:    p.Log.Named("taxstats.service"),
		repo:   p.Repo,
		decls:  p.Decls,
		ledger: p.Ledger,
		clock:  p.Clock,
		tax:    p.Tax,
	}
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}

func (s *service) Overview(ctx context.Context, userID snowflake.ID, year int) (*domain.Overview, error) {
	if year == 0 {
		year = s.clock.Now().Year()
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	income, err := s.ledger.SumAndList(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	totalIncome := income.TotalGel
	remaining := s.tax.AnnualThreshold - totalIncome
	if remaining < 0 {
		remaining = 0
	}
	percentage := totalIncome / s.tax.AnnualThreshold * 100

	declarations, err := s.repo.FindByUser(ctx, s.db, userID, &year)
	if err != nil {
		return nil, err
	}

	declared, pending := 0, 0
	for _, d := range declarations {
		switch d.Status {
		case declarationdomain.StatusSubmitted:
			declared++
		case declarationdomain.StatusPending:
			pending++
		}
	}

	overview := &domain.Overview{
		Year:                    year,
		TotalIncomeYTDGel:       round2(totalIncome),
		TaxLiabilityYTDGel:      round2(totalIncome * s.tax.Rate),
		ThresholdRemainingGel:   round2(remaining),
		ThresholdPercentageUsed: round2(percentage),
		Status:                  domain.BandFor(percentage),
		MonthsDeclared:          declared,
		MonthsPending:           pending,
	}

	if last, err := s.repo.LastSubmitted(ctx, s.db, userID); err != nil {
		return nil, err
	} else if last != nil {
		overview.LastDeclarationDate = last.SubmittedDate
	}

	if next, err := s.repo.NextPendingDeadline(ctx, s.db, userID); err != nil {
		return nil, err
	} else if next != nil {
		due := next.FilingDeadline
		overview.NextDeclarationDue = &due
	}

	return overview, nil
}

func (s *service) MonthlyBreakdown(ctx context.Context, userID snowflake.ID, year int) (*domain.MonthlyBreakdown, error) {
	if year == 0 {
		year = s.clock.Now().Year()
	}
	now := s.clock.Now()

	months := make([]domain.MonthlySummary, 0, 12)
	totalIncome, totalTax := 0.0, 0.0
	incomeMonths, taxMonths := 0, 0

	for month := 1; month <= 12; month++ {
		decl, err := s.decls.GetOrCreate(ctx, userID, year, month)
		if err != nil {
			return nil, err
		}

		totalIncome += decl.IncomeGel
		totalTax += decl.TaxDueGel
		if decl.IncomeGel > 0 {
			incomeMonths++
		}
		if decl.TaxDueGel > 0 {
			taxMonths++
		}

		var daysUntil *int
		if decl.Status == declarationdomain.StatusPending && decl.FilingDeadline.After(now) {
			d := int(decl.FilingDeadline.Sub(now).Hours() / 24)
			daysUntil = &d
		}

		months = append(months, domain.MonthlySummary{
			Month:             fmt.Sprintf("%d-%02d", year, month),
			IncomeGel:         round2(decl.IncomeGel),
			TaxDueGel:         round2(decl.TaxDueGel),
			DeclarationStatus: decl.Status,
			FilingDeadline:    decl.FilingDeadline,
			SubmittedDate:     decl.SubmittedDate,
			DaysUntilDeadline: daysUntil,
			TransactionCount:  decl.TransactionCount,
		})
	}

	// Averages divide by the months that actually had activity, not by 12.
	avgIncome, avgTax := 0.0, 0.0
	if incomeMonths > 0 {
		avgIncome = totalIncome / float64(incomeMonths)
	}
	if taxMonths > 0 {
		avgTax = totalTax / float64(taxMonths)
	}

	return &domain.MonthlyBreakdown{
		Year:                year,
		Months:              months,
		TotalIncomeGel:      round2(totalIncome),
		TotalTaxGel:         round2(totalTax),
		AvgMonthlyIncomeGel: round2(avgIncome),
		AvgMonthlyTaxGel:    round2(avgTax),
	}, nil
}

func (s *service) Projection(ctx context.Context, userID snowflake.ID) (*domain.Projection, error) {
	now := s.clock.Now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	income, err := s.ledger.SumAndList(ctx, userID, start, now)
	if err != nil {
		return nil, err
	}

	currentIncome := income.TotalGel
	monthsElapsed := int(now.Month())

	projected := 0.0
	if monthsElapsed > 0 && currentIncome > 0 {
		projected = currentIncome / float64(monthsElapsed) * 12
	}

	willExceed := projected > s.tax.AnnualThreshold
	projectedRemaining := s.tax.AnnualThreshold - projected
	if projectedRemaining < 0 {
		projectedRemaining = 0
	}

	percentage := projected / s.tax.AnnualThreshold * 100
	var risk domain.RiskLevel
	var confidence float64
	switch {
	case percentage < 75:
		risk, confidence = domain.RiskLow, 0.85
	case percentage < 90:
		risk, confidence = domain.RiskMedium, 0.75
	case percentage < 100:
		risk, confidence = domain.RiskHigh, 0.70
	default:
		risk, confidence = domain.RiskHigh, 0.80
	}

	var recommendation string
	switch {
	case willExceed:
		recommendation = fmt.Sprintf(
			"Projected to exceed threshold by %s GEL. Consider consulting an accountant.",
			formatGel(projected-s.tax.AnnualThreshold))
	case percentage > 85:
		recommendation = fmt.Sprintf(
			"Approaching threshold. You have %s GEL remaining capacity this year.",
			formatGel(projectedRemaining))
	default:
		recommendation = "You're on track. Current pace keeps you under the 500k limit."
	}

	monthsRemaining := 12 - int(now.Month())
	avgNeeded := 0.0
	if monthsRemaining > 0 {
		avgNeeded = (s.tax.AnnualThreshold - currentIncome) / float64(monthsRemaining)
	}

	return &domain.Projection{
		BasedOnMonths:                monthsElapsed,
		CurrentIncomeGel:             round2(currentIncome),
		CurrentTaxGel:                round2(currentIncome * s.tax.Rate),
		ProjectedAnnualIncomeGel:     round2(projected),
		ProjectedAnnualTaxGel:        round2(projected * s.tax.Rate),
		ThresholdStatus: domain.ThresholdRisk{
			WillExceedThreshold:   willExceed,
			ThresholdGel:          s.tax.AnnualThreshold,
			ProjectedRemainingGel: round2(projectedRemaining),
			RiskLevel:             risk,
			Confidence:            confidence,
		},
		MonthlyAvgNeededForThreshold: round2(avgNeeded),
		Recommendation:               recommendation,
	}, nil
}

func (s *service) Comparison(ctx context.Context, userID snowflake.ID, years []int) (*domain.Comparison, error) {
	if len(years) == 0 {
		return nil, domain.ErrNoYears
	}
	if len(years) > 5 {
		return nil, domain.ErrTooManyYears
	}

	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	// Growth compares each year against the previous one in the request,
	// so the oldest year has nothing to compare to.
	summaries := make([]domain.YearlySummary, 0, len(sorted))
	totalTaxAllYears := 0.0
	var previousIncome *float64

	for _, year := range sorted {
		y := year
		declarations, err := s.repo.FindByUser(ctx, s.db, userID, &y)
		if err != nil {
			return nil, err
		}

		totalIncome, totalTax := 0.0, 0.0
		monthsWithIncome := 0
		for _, d := range declarations {
			totalIncome += d.IncomeGel
			totalTax += d.TaxDueGel
			if d.IncomeGel > 0 {
				monthsWithIncome++
			}
		}

		avgMonthly := 0.0
		if monthsWithIncome > 0 {
			avgMonthly = totalIncome / float64(monthsWithIncome)
		}

		var growth *float64
		if previousIncome != nil && *previousIncome > 0 {
			g := round2((totalIncome - *previousIncome) / *previousIncome * 100)
			growth = &g
		}

		summaries = append(summaries, domain.YearlySummary{
			Year:                year,
			TotalIncomeGel:      round2(totalIncome),
			TotalTaxGel:         round2(totalTax),
			AvgMonthlyIncomeGel: round2(avgMonthly),
			MonthsWithIncome:    monthsWithIncome,
			GrowthVsPrevious:    growth,
		})

		totalTaxAllYears += totalTax
		income := totalIncome
		previousIncome = &income
	}

	// Newest first in the response.
	for i, j := 0, len(summaries)-1; i < j; i, j = i+1, j-1 {
		summaries[i], summaries[j] = summaries[j], summaries[i]
	}

	return &domain.Comparison{
		Years:                summaries,
		TotalTaxPaidAllYears: round2(totalTaxAllYears),
	}, nil
}

func (s *service) ChartData(ctx context.Context, userID snowflake.ID, chartType domain.ChartType, year int) (*domain.ChartData, error) {
	switch chartType {
	case domain.ChartMonthlyTax, domain.ChartCumulativeTax, domain.ChartThresholdProgress:
	default:
		return nil, domain.ErrInvalidChartType
	}

	if year == 0 {
		year = s.clock.Now().Year()
	}

	declarations, err := s.repo.FindByUser(ctx, s.db, userID, &year)
	if err != nil {
		return nil, err
	}
	sort.Slice(declarations, func(i, j int) bool {
		return declarations[i].Month < declarations[j].Month
	})

	points := make([]domain.ChartDataPoint, 0, len(declarations))
	totalIncome, totalTax, cumulative := 0.0, 0.0, 0.0

	for _, d := range declarations {
		if d.IncomeGel <= 0 {
			continue
		}

		totalIncome += d.IncomeGel
		totalTax += d.TaxDueGel
		month := fmt.Sprintf("%d-%02d", year, d.Month)

		switch chartType {
		case domain.ChartCumulativeTax, domain.ChartThresholdProgress:
			cumulative += d.IncomeGel
			points = append(points, domain.ChartDataPoint{
				Date:   month,
				Income: round2(cumulative),
				Tax:    round2(cumulative * s.tax.Rate),
			})
		default:
			points = append(points, domain.ChartDataPoint{
				Date:   month,
				Income: round2(d.IncomeGel),
				Tax:    round2(d.TaxDueGel),
			})
		}
	}

	return &domain.ChartData{
		ChartType:    chartType,
		Data:         points,
		TotalIncome:  round2(totalIncome),
		TotalTax:     round2(totalTax),
		ThresholdGel: s.tax.AnnualThreshold,
	}, nil
}

func (s *service) DeclarationDetails(ctx context.Context, userID snowflake.ID, year, month int) (*domain.DeclarationDetails, error) {
	decl, err := s.decls.GetOrCreate(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var daysUntil *int
	isOverdue := false

	if decl.Status == declarationdomain.StatusPending {
		if decl.FilingDeadline.Before(now) {
			isOverdue = true
		} else {
			d := int(decl.FilingDeadline.Sub(now).Hours() / 24)
			daysUntil = &d
		}
	}

	var quote *domain.FilingServiceQuote
	if decl.Status == declarationdomain.StatusPending || decl.Status == declarationdomain.StatusOverdue {
		fee := round2(decl.IncomeGel * s.tax.ServiceFeeRate)
		quote = &domain.FilingServiceQuote{
			Available:    true,
			TaxAmount:    round2(decl.TaxDueGel),
			ServiceFee:   fee,
			TotalPayment: round2(decl.TaxDueGel + fee),
			Breakdown: fmt.Sprintf("%g%% of income (%g%% tax + %g%% service fee)",
				round2(s.tax.TotalFeeRate()*100), round2(s.tax.Rate*100), round2(s.tax.ServiceFeeRate*100)),
		}
	}

	return &domain.DeclarationDetails{
		Year:              year,
		Month:             month,
		MonthName:         time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006"),
		IncomeGel:         round2(decl.IncomeGel),
		TaxDueGel:         round2(decl.TaxDueGel),
		TransactionCount:  decl.TransactionCount,
		DeclarationStatus: decl.Status,
		FilingDeadline:    decl.FilingDeadline,
		SubmittedDate:     decl.SubmittedDate,
		DaysUntilDeadline: daysUntil,
		IsOverdue:         isOverdue,
		FilingService:     quote,
	}, nil
}

// formatGel renders an amount with thousands separators and no decimals,
// e.g. 125000.4 -> "125,000".
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
