package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type MarkSubmittedRequest struct {
	UserID        snowflake.ID
	Year          int
	Month         int
	SubmittedDate *time.Time
}

type CompleteFilingRequest struct {
	DeclarationID      snowflake.ID
	AdminID            snowflake.ID
	ConfirmationNumber string
	AdminNotes         string
}

type RejectRequest struct {
	DeclarationID   snowflake.ID
	AdminID         snowflake.ID
	CorrectionNotes string
	AdminNotes      string
}

// FilingStatus is the user-facing view of the paid filing workflow.
type FilingStatus struct {
	Year               int           `json:"year"`
	Month              int           `json:"month"`
	Status             Status        `json:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	PaymentAmount      float64       `json:"payment_amount"`
	PaymentReference   string        `json:"payment_reference,omitempty"`
	PaymentDate        *time.Time    `json:"payment_date,omitempty"`
	FilingMethod       FilingMethod  `json:"filing_method"`
	FiledByAdminAt     *time.Time    `json:"filed_by_admin_at,omitempty"`
	AdminNotes         string        `json:"admin_notes,omitempty"`
	RequiresCorrection bool          `json:"requires_correction"`
	CorrectionNotes    string        `json:"correction_notes,omitempty"`
}

// Service owns the declaration lifecycle: lazy generation off the income
// ledger and the guarded status transitions for self-service and the paid
// admin filing workflow.
type Service interface {
	GetOrCreate(ctx context.Context, userID snowflake.ID, year, month int) (Declaration, error)
	GenerateYear(ctx context.Context, userID snowflake.ID, year int) error
	ListByUser(ctx context.Context, userID snowflake.ID, year *int) ([]Declaration, error)

	MarkSubmitted(ctx context.Context, req MarkSubmittedRequest) (Declaration, error)
	RequestFiling(ctx context.Context, userID snowflake.ID, year, month int) (Declaration, error)
	ConfirmPayment(ctx context.Context, userID snowflake.ID, year, month int) (Declaration, error)
	StartFiling(ctx context.Context, declarationID, adminID snowflake.ID) (Declaration, error)
	CompleteFiling(ctx context.Context, req CompleteFilingRequest) (Declaration, error)
	Reject(ctx context.Context, req RejectRequest) (Declaration, error)

	FilingServiceStatus(ctx context.Context, userID snowflake.ID, year, month int) (FilingStatus, error)
}
