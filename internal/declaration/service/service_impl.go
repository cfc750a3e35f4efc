package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/tbilisoft/declara/internal/clock"
	"github.com/tbilisoft/declara/internal/config"
	"github.com/tbilisoft/declara/internal/declaration/domain"
	ledgerdomain "github.com/tbilisoft/declara/internal/ledger/domain"
	"github.com/tbilisoft/declara/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Ledger ledgerdomain.Service
	Clock  clock.Clock
	Tax    config.TaxConfig
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	ledger ledgerdomain.Service
	clock  clock.Clock
	tax    config.TaxConfig
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("declaration.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		ledger: p.Ledger,
		clock:  p.Clock,
		tax:    p.Tax,
	}
}

// GetOrCreate returns the declaration for (user, year, month), creating it
// from a ledger snapshot on first access. An existing pending declaration
// whose deadline has passed is reclassified to overdue before returning;
// nothing else about an existing record is recomputed.
func (s *Service) GetOrCreate(ctx context.Context, userID snowflake.ID, year, month int) (domain.Declaration, error) {
	if userID == 0 {
		return domain.Declaration{}, domain.ErrInvalidUser
	}
	if month < 1 || month > 12 {
		return domain.Declaration{}, domain.ErrInvalidMonth
	}
	if year < 2000 || year > 2100 {
		return domain.Declaration{}, domain.ErrInvalidYear
	}

	existing, err := s.repo.FindByKey(ctx, s.db, userID, year, month)
	if err != nil {
		return domain.Declaration{}, err
	}
	if existing != nil {
		return s.reclassifyOverdue(ctx, existing)
	}

	created, err := s.create(ctx, userID, year, month)
	if err == nil {
		return created, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return domain.Declaration{}, err
	}

	// Lost the first-insert race; the winner's record is authoritative.
	winner, findErr := s.repo.FindByKey(ctx, s.db, userID, year, month)
	if findErr != nil {
		return domain.Declaration{}, findErr
	}
	if winner == nil {
		return domain.Declaration{}, err
	}
	return s.reclassifyOverdue(ctx, winner)
}

func (s *Service) create(ctx context.Context, userID snowflake.ID, year, month int) (domain.Declaration, error) {
	income, err := s.ledger.SumAndList(ctx, userID, domain.MonthStart(year, month), domain.MonthEnd(year, month))
	if err != nil {
		return domain.Declaration{}, err
	}

	now := s.clock.Now()
	deadline := domain.FilingDeadline(year, month, s.tax.FilingDay)

	status := domain.StatusPending
	if income.TotalGel > 0 && deadline.Before(now) {
		status = domain.StatusOverdue
	}

	declaration := domain.Declaration{
		ID:               s.genID.Generate(),
		UserID:           userID,
		Year:             year,
		Month:            month,
		IncomeGel:        income.TotalGel,
		TaxDueGel:        income.TotalGel * s.tax.Rate,
		TransactionCount: income.Count,
		TransactionIDs:   income.RecordIDs,
		Status:           status,
		FilingDeadline:   deadline,
		PaymentStatus:    domain.PaymentUnpaid,
		FilingMethod:     domain.FilingSelfService,
		AutoGeneratedAt:  now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &declaration); err != nil {
		return domain.Declaration{}, err
	}

	s.log.Info("created declaration",
		zap.String("user_id", userID.String()),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Float64("income_gel", income.TotalGel),
	)
	return declaration, nil
}

func (s *Service) reclassifyOverdue(ctx context.Context, declaration *domain.Declaration) (domain.Declaration, error) {
	if declaration.Status != domain.StatusPending || !declaration.FilingDeadline.Before(s.clock.Now()) {
		return *declaration, nil
	}

	_, err := s.repo.UpdateWhereStatus(ctx, s.db, declaration.ID,
		[]domain.Status{domain.StatusPending},
		map[string]any{"status": domain.StatusOverdue},
	)
	if err != nil {
		return domain.Declaration{}, err
	}
	declaration.Status = domain.StatusOverdue
	return *declaration, nil
}

func (s *Service) GenerateYear(ctx context.Context, userID snowflake.ID, year int) error {
	for month := 1; month <= 12; month++ {
		if _, err := s.GetOrCreate(ctx, userID, year, month); err != nil {
			return err
		}
	}
	s.log.Info("generated declarations for year",
		zap.String("user_id", userID.String()),
		zap.Int("year", year),
	)
	return nil
}

func (s *Service) ListByUser(ctx context.Context, userID snowflake.ID, year *int) ([]domain.Declaration, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	items, err := s.repo.FindByUser(ctx, s.db, userID, year)
	if err != nil {
		return nil, err
	}
	declarations := make([]domain.Declaration, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		declarations = append(declarations, *item)
	}
	return declarations, nil
}

func (s *Service) MarkSubmitted(ctx context.Context, req domain.MarkSubmittedRequest) (domain.Declaration, error) {
	declaration, err := s.GetOrCreate(ctx, req.UserID, req.Year, req.Month)
	if err != nil {
		return domain.Declaration{}, err
	}
	if declaration.Status.IsTerminal() {
		return domain.Declaration{}, domain.NewInvalidTransition("mark submitted", declaration.Status)
	}

	submittedDate := s.clock.Now()
	if req.SubmittedDate != nil {
		submittedDate = req.SubmittedDate.UTC()
	}

	return s.transition(ctx, declaration.ID, "mark submitted",
		nonTerminalStatuses(),
		map[string]any{
			"status":         domain.StatusSubmitted,
			"submitted_date": submittedDate,
			"updated_at":     s.clock.Now(),
		},
	)
}

// RequestFiling puts a declaration into the paid admin-filing workflow. A
// repeated request while payment is still outstanding returns the record
// unchanged.
func (s *Service) RequestFiling(ctx context.Context, userID snowflake.ID, year, month int) (domain.Declaration, error) {
	declaration, err := s.GetOrCreate(ctx, userID, year, month)
	if err != nil {
		return domain.Declaration{}, err
	}

	if declaration.Status == domain.StatusAwaitingPayment {
		return declaration, nil
	}
	if declaration.PaymentStatus == domain.PaymentPaid {
		return domain.Declaration{}, domain.ErrAlreadyPaid
	}
	if declaration.Status != domain.StatusPending && declaration.Status != domain.StatusOverdue {
		return domain.Declaration{}, domain.NewInvalidTransition("request filing service", declaration.Status)
	}

	return s.transition(ctx, declaration.ID, "request filing service",
		[]domain.Status{domain.StatusPending, domain.StatusOverdue},
		map[string]any{
			"status":            domain.StatusAwaitingPayment,
			"payment_reference": uuid.NewString(),
			"payment_amount":    s.tax.FilingFee,
			"updated_at":        s.clock.Now(),
		},
	)
}

func (s *Service) ConfirmPayment(ctx context.Context, userID snowflake.ID, year, month int) (domain.Declaration, error) {
	declaration, err := s.GetOrCreate(ctx, userID, year, month)
	if err != nil {
		return domain.Declaration{}, err
	}

	now := s.clock.Now()
	return s.transition(ctx, declaration.ID, "confirm payment",
		[]domain.Status{domain.StatusAwaitingPayment},
		map[string]any{
			"status":         domain.StatusPaymentReceived,
			"payment_status": domain.PaymentPaid,
			"payment_date":   now,
			"updated_at":     now,
		},
	)
}

func (s *Service) StartFiling(ctx context.Context, declarationID, adminID snowflake.ID) (domain.Declaration, error) {
	if _, err := s.mustFind(ctx, declarationID); err != nil {
		return domain.Declaration{}, err
	}

	return s.transition(ctx, declarationID, "start filing",
		[]domain.Status{domain.StatusPaymentReceived},
		map[string]any{
			"status":            domain.StatusInProgress,
			"filed_by_admin_id": adminID,
			"updated_at":        s.clock.Now(),
		},
	)
}

func (s *Service) CompleteFiling(ctx context.Context, req domain.CompleteFilingRequest) (domain.Declaration, error) {
	declaration, err := s.mustFind(ctx, req.DeclarationID)
	if err != nil {
		return domain.Declaration{}, err
	}

	now := s.clock.Now()
	updates := map[string]any{
		"status":            domain.StatusFiledByAdmin,
		"filing_method":     domain.FilingByAdmin,
		"filed_by_admin_id": req.AdminID,
		"filed_by_admin_at": now,
		"submitted_date":    now,
		"updated_at":        now,
	}
	if notes := completionNotes(declaration.AdminNotes, req.ConfirmationNumber, req.AdminNotes); notes != "" {
		updates["admin_notes"] = notes
	}

	return s.transition(ctx, req.DeclarationID, "complete filing",
		[]domain.Status{domain.StatusInProgress},
		updates,
	)
}

func (s *Service) Reject(ctx context.Context, req domain.RejectRequest) (domain.Declaration, error) {
	if strings.TrimSpace(req.CorrectionNotes) == "" {
		return domain.Declaration{}, domain.ErrCorrectionNotesRequired
	}
	if _, err := s.mustFind(ctx, req.DeclarationID); err != nil {
		return domain.Declaration{}, err
	}

	updates := map[string]any{
		"status":              domain.StatusRejected,
		"requires_correction": true,
		"correction_notes":    strings.TrimSpace(req.CorrectionNotes),
		"filed_by_admin_id":   req.AdminID,
		"updated_at":          s.clock.Now(),
	}
	if notes := strings.TrimSpace(req.AdminNotes); notes != "" {
		updates["admin_notes"] = notes
	}

	return s.transition(ctx, req.DeclarationID, "reject declaration",
		[]domain.Status{domain.StatusPaymentReceived, domain.StatusInProgress},
		updates,
	)
}

func (s *Service) FilingServiceStatus(ctx context.Context, userID snowflake.ID, year, month int) (domain.FilingStatus, error) {
	declaration, err := s.GetOrCreate(ctx, userID, year, month)
	if err != nil {
		return domain.FilingStatus{}, err
	}

	return domain.FilingStatus{
		Year:               declaration.Year,
		Month:              declaration.Month,
		Status:             declaration.Status,
		PaymentStatus:      declaration.PaymentStatus,
		PaymentAmount:      declaration.PaymentAmount,
		PaymentReference:   declaration.PaymentReference,
		PaymentDate:        declaration.PaymentDate,
		FilingMethod:       declaration.FilingMethod,
		FiledByAdminAt:     declaration.FiledByAdminAt,
		AdminNotes:         declaration.AdminNotes,
		RequiresCorrection: declaration.RequiresCorrection,
		CorrectionNotes:    declaration.CorrectionNotes,
	}, nil
}

// transition applies a guarded status change as a single conditional
// update. When the guard fails the record is re-read so the error can name
// the status that refused the action.
func (s *Service) transition(ctx context.Context, id snowflake.ID, action string, expected []domain.Status, updates map[string]any) (domain.Declaration, error) {
	affected, err := s.repo.UpdateWhereStatus(ctx, s.db, id, expected, updates)
	if err != nil {
		return domain.Declaration{}, err
	}
	if affected == 0 {
		current, findErr := s.repo.FindByID(ctx, s.db, id)
		if findErr != nil {
			return domain.Declaration{}, findErr
		}
		if current == nil {
			return domain.Declaration{}, domain.ErrNotFound
		}
		return domain.Declaration{}, domain.NewInvalidTransition(action, current.Status)
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Declaration{}, err
	}
	if updated == nil {
		return domain.Declaration{}, domain.ErrNotFound
	}
	return *updated, nil
}

func (s *Service) mustFind(ctx context.Context, id snowflake.ID) (domain.Declaration, error) {
	declaration, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Declaration{}, err
	}
	if declaration == nil {
		return domain.Declaration{}, domain.ErrNotFound
	}
	return *declaration, nil
}

func nonTerminalStatuses() []domain.Status {
	return []domain.Status{
		domain.StatusPending,
		domain.StatusOverdue,
		domain.StatusAwaitingPayment,
		domain.StatusPaymentReceived,
		domain.StatusInProgress,
		domain.StatusRejected,
	}
}

func completionNotes(existing, confirmationNumber, adminNotes string) string {
	parts := make([]string, 0, 3)
	if trimmed := strings.TrimSpace(existing); trimmed != "" {
		parts = append(parts, trimmed)
	}
	if number := strings.TrimSpace(confirmationNumber); number != "" {
		parts = append(parts, "confirmation: "+number)
	}
	if notes := strings.TrimSpace(adminNotes); notes != "" {
		parts = append(parts, notes)
	}
	return strings.Join(parts, "\n")
}
