package domain

import "time"

type InsightType string

const (
	TypeDeclarationReminder InsightType = "declaration_reminder"
	TypeThresholdWarning    InsightType = "threshold_warning"
	TypeIncomeSpike         InsightType = "income_spike"
	TypeIncomeDrop          InsightType = "income_drop"
	TypeOptimizationTip     InsightType = "optimization_tip"
	TypeComplianceAlert     InsightType = "compliance_alert"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityInfo     Severity = "info"
)

// Rank orders severities for sorting, most urgent first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

type Insight struct {
	Type           InsightType `json:"type"`
	Severity       Severity    `json:"severity"`
	Title          string      `json:"title"`
	Message        string      `json:"message"`
	ActionURL      string      `json:"action_url,omitempty"`
	ActionText     string      `json:"action_text,omitempty"`
	ActionRequired bool        `json:"action_required"`
	CreatedAt      time.Time   `json:"created_at"`
}

type InsightsList struct {
	Insights          []Insight `json:"insights"`
	TotalInsights     int       `json:"total_insights"`
	HighPriorityCount int       `json:"high_priority_count"`
}
