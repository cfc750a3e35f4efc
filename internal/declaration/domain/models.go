package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the lifecycle state of a monthly tax declaration.
type Status string

const (
	StatusPending         Status = "pending"
	StatusSubmitted       Status = "submitted"
	StatusOverdue         Status = "overdue"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaymentReceived Status = "payment_received"
	StatusInProgress      Status = "in_progress"
	StatusFiledByAdmin    Status = "filed_by_admin"
	StatusRejected        Status = "rejected"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type FilingMethod string

const (
	FilingSelfService FilingMethod = "self_service"
	FilingByAdmin     FilingMethod = "admin_filed"
)

// transitions is the closed transition table. MarkSubmitted is additionally
// allowed from every non-terminal status, which the table encodes
// explicitly so there is a single source of truth.
var transitions = map[Status][]Status{
	StatusPending:         {StatusSubmitted, StatusOverdue, StatusAwaitingPayment},
	StatusOverdue:         {StatusSubmitted, StatusAwaitingPayment},
	StatusAwaitingPayment: {StatusSubmitted, StatusPaymentReceived},
	StatusPaymentReceived: {StatusSubmitted, StatusInProgress, StatusRejected},
	StatusInProgress:      {StatusSubmitted, StatusFiledByAdmin, StatusRejected},
	StatusRejected:        {StatusSubmitted},
	StatusSubmitted:       {},
	StatusFiledByAdmin:    {},
}

func (s Status) IsTerminal() bool {
	return s == StatusSubmitted || s == StatusFiledByAdmin
}

func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Declaration is the per-(user, year, month) tax obligation record. The
// financial fields are a snapshot of the income ledger taken at generation
// time; they are not re-derived when the ledger changes afterwards.
type Declaration struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID snowflake.ID `gorm:"not null;uniqueIndex:ux_declarations_user_period,priority:1" json:"user_id"`
	Year   int          `gorm:"not null;uniqueIndex:ux_declarations_user_period,priority:2" json:"year"`
	Month  int          `gorm:"not null;uniqueIndex:ux_declarations_user_period,priority:3" json:"month"`

	IncomeGel        float64                     `gorm:"not null" json:"income_gel"`
	TaxDueGel        float64                     `gorm:"not null" json:"tax_due_gel"`
	TransactionCount int                         `gorm:"not null;default:0" json:"transaction_count"`
	TransactionIDs   datatypes.JSONSlice[string] `json:"transaction_ids"`

	Status         Status     `gorm:"not null;index" json:"status"`
	FilingDeadline time.Time  `gorm:"not null;index" json:"filing_deadline"`
	SubmittedDate  *time.Time `json:"submitted_date,omitempty"`

	PaymentStatus    PaymentStatus `gorm:"not null;default:unpaid" json:"payment_status"`
	PaymentAmount    float64       `gorm:"not null;default:0" json:"payment_amount"`
	PaymentDate      *time.Time    `json:"payment_date,omitempty"`
	PaymentReference string        `json:"payment_reference,omitempty"`

	FilingMethod       FilingMethod  `gorm:"not null;default:self_service" json:"filing_method"`
	FiledByAdminID     *snowflake.ID `json:"filed_by_admin_id,omitempty"`
	FiledByAdminAt     *time.Time    `json:"filed_by_admin_at,omitempty"`
	AdminNotes         string        `json:"admin_notes,omitempty"`
	RequiresCorrection bool          `gorm:"not null;default:false" json:"requires_correction"`
	CorrectionNotes    string        `json:"correction_notes,omitempty"`

	AutoGeneratedAt time.Time `gorm:"not null" json:"auto_generated_at"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Declaration) TableName() string {
	return "declarations"
}

// FilingDeadline returns the statutory deadline for a declared month: end
// of day on the filing day of the following month, UTC. December rolls
// into January of the next year.
func FilingDeadline(year, month, filingDay int) time.Time {
	deadlineYear, deadlineMonth := year, month+1
	if month == 12 {
		deadlineYear, deadlineMonth = year+1, 1
	}
	return time.Date(deadlineYear, time.Month(deadlineMonth), filingDay, 23, 59, 59, 0, time.UTC)
}

// MonthStart returns the first instant of a declared month in UTC.
func MonthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the first instant of the month after the declared one.
func MonthEnd(year, month int) time.Time {
	if month == 12 {
		return time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
}
