package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	"github.com/tbilisoft/declara/pkg/db/pagination"
)

// QueueItem is a declaration as the back office sees it, with the owner's
// email resolved.
type QueueItem struct {
	ID                 snowflake.ID                    `json:"id"`
	UserID             snowflake.ID                    `json:"user_id"`
	UserEmail          string                          `json:"user_email"`
	Year               int                             `json:"year"`
	Month              int                             `json:"month"`
	IncomeGel          float64                         `json:"income_gel"`
	TaxDueGel          float64                         `json:"tax_due_gel"`
	Status             declarationdomain.Status        `json:"status"`
	FilingDeadline     time.Time                       `json:"filing_deadline"`
	PaymentStatus      declarationdomain.PaymentStatus `json:"payment_status"`
	PaymentAmount      float64                         `json:"payment_amount"`
	PaymentDate        *time.Time                      `json:"payment_date,omitempty"`
	SubmittedDate      *time.Time                      `json:"submitted_date,omitempty"`
	RequiresCorrection bool                            `json:"requires_correction"`
	TransactionCount   int                             `json:"transaction_count"`
}

// Queue buckets the filing backlog by the step an admin has to take next.
type Queue struct {
	PendingPayment  []QueueItem `json:"pending_payment"`
	ReadyToFile     []QueueItem `json:"ready_to_file"`
	InProgress      []QueueItem `json:"in_progress"`
	NeedsCorrection []QueueItem `json:"needs_correction"`
	TotalCount      int         `json:"total_count"`
}

type DashboardStats struct {
	TotalDeclarationsThisMonth int      `json:"total_declarations_this_month"`
	PendingPayment             int      `json:"pending_payment"`
	ReadyToFile                int      `json:"ready_to_file"`
	InProgress                 int      `json:"in_progress"`
	FiledThisMonth             int      `json:"filed_this_month"`
	RejectedThisMonth          int      `json:"rejected_this_month"`
	TotalRevenueThisMonth      float64  `json:"total_revenue_this_month"`
	AverageFilingTimeHours     *float64 `json:"average_filing_time_hours,omitempty"`
}

type ListFilter struct {
	Status     *declarationdomain.Status
	UserID     *snowflake.ID
	Year       *int
	Month      *int
	Pagination pagination.Pagination
}

type DeclarationList struct {
	Declarations []QueueItem `json:"declarations"`
	TotalCount   int64       `json:"total_count"`
	TotalRevenue float64     `json:"total_revenue"`
}

type UserHistory struct {
	UserID       snowflake.ID `json:"user_id"`
	Declarations []QueueItem  `json:"declarations"`
	TotalCount   int          `json:"total_count"`
}

type DirectoryUser struct {
	ID                snowflake.ID `json:"id"`
	Email             string       `json:"email"`
	IsAdmin           bool         `json:"is_admin"`
	AdminSince        *time.Time   `json:"admin_since,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	TotalDeclarations int          `json:"total_declarations"`
	TotalFiled        int          `json:"total_filed"`
	TotalPaid         float64      `json:"total_paid"`
}

type Directory struct {
	Users      []DirectoryUser `json:"users"`
	TotalCount int             `json:"total_count"`
}
