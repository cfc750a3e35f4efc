package domain

import (
	"errors"
	"time"

	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
)

// ThresholdStatus bands year-to-date income against the annual ceiling.
type ThresholdStatus string

const (
	ThresholdOnTrack     ThresholdStatus = "on_track"
	ThresholdApproaching ThresholdStatus = "approaching_limit"
	ThresholdNearLimit   ThresholdStatus = "near_limit"
	ThresholdExceeded    ThresholdStatus = "exceeded"
)

// BandFor maps a percentage of the annual threshold to its band. Boundary
// values belong to the higher band: exactly 75% is approaching, exactly
// 100% is exceeded.
func BandFor(percentage float64) ThresholdStatus {
	switch {
	case percentage < 75:
		return ThresholdOnTrack
	case percentage < 90:
		return ThresholdApproaching
	case percentage < 100:
		return ThresholdNearLimit
	default:
		return ThresholdExceeded
	}
}

type Overview struct {
	Year                    int             `json:"year"`
	TotalIncomeYTDGel       float64         `json:"total_income_ytd_gel"`
	TaxLiabilityYTDGel      float64         `json:"tax_liability_ytd_gel"`
	ThresholdRemainingGel   float64         `json:"threshold_remaining_gel"`
	ThresholdPercentageUsed float64         `json:"threshold_percentage_used"`
	Status                  ThresholdStatus `json:"status"`
	MonthsDeclared          int             `json:"months_declared"`
	MonthsPending           int             `json:"months_pending"`
	LastDeclarationDate     *time.Time      `json:"last_declaration_date,omitempty"`
	NextDeclarationDue      *time.Time      `json:"next_declaration_due,omitempty"`
}

type MonthlySummary struct {
	Month             string                   `json:"month"`
	IncomeGel         float64                  `json:"income_gel"`
	TaxDueGel         float64                  `json:"tax_due_gel"`
	DeclarationStatus declarationdomain.Status `json:"declaration_status"`
	FilingDeadline    time.Time                `json:"filing_deadline"`
	SubmittedDate     *time.Time               `json:"submitted_date,omitempty"`
	DaysUntilDeadline *int                     `json:"days_until_deadline,omitempty"`
	TransactionCount  int                      `json:"transaction_count"`
}

type MonthlyBreakdown struct {
	Year                int              `json:"year"`
	Months              []MonthlySummary `json:"months"`
	TotalIncomeGel      float64          `json:"total_income_gel"`
	TotalTaxGel         float64          `json:"total_tax_gel"`
	AvgMonthlyIncomeGel float64          `json:"avg_monthly_income_gel"`
	AvgMonthlyTaxGel    float64          `json:"avg_monthly_tax_gel"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type ThresholdRisk struct {
	WillExceedThreshold   bool      `json:"will_exceed_threshold"`
	ThresholdGel          float64   `json:"threshold_gel"`
	ProjectedRemainingGel float64   `json:"projected_remaining_gel"`
	RiskLevel             RiskLevel `json:"risk_level"`
	Confidence            float64   `json:"confidence"`
}

type Projection struct {
	BasedOnMonths                int           `json:"based_on_months"`
	CurrentIncomeGel             float64       `json:"current_income_gel"`
	CurrentTaxGel                float64       `json:"current_tax_gel"`
	ProjectedAnnualIncomeGel     float64       `json:"projected_annual_income_gel"`
	ProjectedAnnualTaxGel        float64       `json:"projected_annual_tax_gel"`
	ThresholdStatus              ThresholdRisk `json:"threshold_status"`
	MonthlyAvgNeededForThreshold float64       `json:"monthly_avg_needed_for_threshold"`
	Recommendation               string        `json:"recommendation"`
}

type YearlySummary struct {
	Year                int      `json:"year"`
	TotalIncomeGel      float64  `json:"total_income_gel"`
	TotalTaxGel         float64  `json:"total_tax_gel"`
	AvgMonthlyIncomeGel float64  `json:"avg_monthly_income_gel"`
	MonthsWithIncome    int      `json:"months_with_income"`
	GrowthVsPrevious    *float64 `json:"growth_vs_previous,omitempty"`
}

type Comparison struct {
	Years                []YearlySummary `json:"years"`
	TotalTaxPaidAllYears float64         `json:"total_tax_paid_all_years"`
}

type ChartType string

const (
	ChartMonthlyTax        ChartType = "monthly_tax"
	ChartCumulativeTax     ChartType = "cumulative_tax"
	ChartThresholdProgress ChartType = "threshold_progress"
)

type ChartDataPoint struct {
	Date   string  `json:"date"`
	Income float64 `json:"income"`
	Tax    float64 `json:"tax"`
}

type ChartData struct {
	ChartType    ChartType        `json:"chart_type"`
	Data         []ChartDataPoint `json:"data"`
	TotalIncome  float64          `json:"total_income"`
	TotalTax     float64          `json:"total_tax"`
	ThresholdGel float64          `json:"threshold_gel"`
}

type DeclarationDetails struct {
	Year              int                      `json:"year"`
	Month             int                      `json:"month"`
	MonthName         string                   `json:"month_name"`
	IncomeGel         float64                  `json:"income_gel"`
	TaxDueGel         float64                  `json:"tax_due_gel"`
	TransactionCount  int                      `json:"transaction_count"`
	DeclarationStatus declarationdomain.Status `json:"declaration_status"`
	FilingDeadline    time.Time                `json:"filing_deadline"`
	SubmittedDate     *time.Time               `json:"submitted_date,omitempty"`
	DaysUntilDeadline *int                     `json:"days_until_deadline,omitempty"`
	IsOverdue         bool                     `json:"is_overdue"`
	FilingService     *FilingServiceQuote      `json:"filing_service,omitempty"`
}

// FilingServiceQuote previews what the admin filing service would cost
// for a declaration that has not been filed yet: the statutory tax plus
// our service fee on top.
type FilingServiceQuote struct {
	Available    bool    `json:"available"`
	TaxAmount    float64 `json:"tax_amount"`
	ServiceFee   float64 `json:"service_fee"`
	TotalPayment float64 `json:"total_payment"`
	Breakdown    string  `json:"breakdown"`
}

var (
	ErrInvalidYear      = errors.New("invalid_year")
	ErrTooManyYears     = errors.New("too_many_years")
	ErrNoYears          = errors.New("no_years")
	ErrInvalidChartType = errors.New("invalid_chart_type")
)
