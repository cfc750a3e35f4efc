package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tbilisoft/declara/internal/adminops/domain"
	adminrepo "github.com/tbilisoft/declara/internal/adminops/repository"
	"github.com/tbilisoft/declara/internal/clock"
	"github.com/tbilisoft/declara/internal/config"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	declarationrepo "github.com/tbilisoft/declara/internal/declaration/repository"
	declarationservice "github.com/tbilisoft/declara/internal/declaration/service"
	ledgerdomain "github.com/tbilisoft/declara/internal/ledger/domain"
	ledgerrepo "github.com/tbilisoft/declara/internal/ledger/repository"
	ledgerservice "github.com/tbilisoft/declara/internal/ledger/service"
	userdomain "github.com/tbilisoft/declara/internal/user/domain"
	"github.com/tbilisoft/declara/pkg/db/pagination"
)

type fixture struct {
	db     *gorm.DB
	admin  domain.Service
	decls  declarationdomain.Service
	ledger ledgerdomain.Service
	clock  *clock.FakeClock
	node   *snowflake.Node
}

func setupAdmin(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&ledgerdomain.IncomeRecord{},
		&declarationdomain.Declaration{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(now)
	log := zap.NewNop()
	tax := config.TaxConfig{
		Rate:            0.01,
		AnnualThreshold: 500000,
		FilingDay:       15,
		FilingFee:       50,
		ServiceFeeRate:  0.02,
	}

	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  ledgerrepo.Provide(),
	})
	declSvc := declarationservice.New(declarationservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Repo:   declarationrepo.Provide(),
		Ledger: ledgerSvc,
		Clock:  fake,
		Tax:    tax,
	})
	adminSvc := New(Params{
		DB:    db,
		Log:   log,
		Repo:  adminrepo.Provide(),
		Clock: fake,
	})

	return &fixture{db: db, admin: adminSvc, decls: declSvc, ledger: ledgerSvc, clock: fake, node: node}
}

func (f *fixture) user(t *testing.T, email string) snowflake.ID {
	t.Helper()
	u := userdomain.User{
		ID:        f.node.Generate(),
		Email:     email,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u.ID
}

func (f *fixture) income(t *testing.T, userID snowflake.ID, amount float64, date time.Time) {
	t.Helper()
	_, err := f.ledger.Record(context.Background(), ledgerdomain.RecordIncomeRequest{
		UserID:     userID,
		AmountGel:  amount,
		Category:   "freelance",
		IncomeDate: date,
	})
	require.NoError(t, err)
}

func (f *fixture) toAwaitingPayment(t *testing.T, userID snowflake.ID, year, month int) declarationdomain.Declaration {
	t.Helper()
	decl, err := f.decls.RequestFiling(context.Background(), userID, year, month)
	require.NoError(t, err)
	return decl
}

func (f *fixture) toPaymentReceived(t *testing.T, userID snowflake.ID, year, month int) declarationdomain.Declaration {
	t.Helper()
	f.toAwaitingPayment(t, userID, year, month)
	decl, err := f.decls.ConfirmPayment(context.Background(), userID, year, month)
	require.NoError(t, err)
	return decl
}

func (f *fixture) toInProgress(t *testing.T, userID, adminID snowflake.ID, year, month int) declarationdomain.Declaration {
	t.Helper()
	decl := f.toPaymentReceived(t, userID, year, month)
	decl, err := f.decls.StartFiling(context.Background(), decl.ID, adminID)
	require.NoError(t, err)
	return decl
}

func TestQueueBuckets(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupAdmin(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	admin := f.user(t, "admin@example.com")

	f.income(t, alice, 10000, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, alice, 11000, time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, bob, 12000, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, bob, 13000, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))

	// Alice: September awaiting payment, October in progress.
	f.toAwaitingPayment(t, alice, 2025, 9)
	f.toInProgress(t, alice, admin, 2025, 10)

	// Bob: August paid and ready, September rejected back to him.
	f.toPaymentReceived(t, bob, 2025, 8)
	rejected := f.toInProgress(t, bob, admin, 2025, 9)
	_, err := f.decls.Reject(ctx, declarationdomain.RejectRequest{
		DeclarationID:   rejected.ID,
		AdminID:         admin,
		CorrectionNotes: "income total does not match bank statement",
	})
	require.NoError(t, err)

	queue, err := f.admin.Queue(ctx)
	require.NoError(t, err)

	require.Len(t, queue.PendingPayment, 1)
	assert.Equal(t, "alice@example.com", queue.PendingPayment[0].UserEmail)
	assert.Equal(t, 9, queue.PendingPayment[0].Month)

	require.Len(t, queue.ReadyToFile, 1)
	assert.Equal(t, "bob@example.com", queue.ReadyToFile[0].UserEmail)
	assert.Equal(t, 8, queue.ReadyToFile[0].Month)

	require.Len(t, queue.InProgress, 1)
	assert.Equal(t, 10, queue.InProgress[0].Month)

	require.Len(t, queue.NeedsCorrection, 1)
	assert.Equal(t, "bob@example.com", queue.NeedsCorrection[0].UserEmail)
	assert.True(t, queue.NeedsCorrection[0].RequiresCorrection)

	assert.Equal(t, 4, queue.TotalCount)
}

func TestQueueOrderedByDeadline(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupAdmin(t, now)

	alice := f.user(t, "alice@example.com")
	f.income(t, alice, 10000, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, alice, 11000, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))

	// Request newest first to prove ordering comes from the deadline.
	f.toAwaitingPayment(t, alice, 2025, 9)
	f.toAwaitingPayment(t, alice, 2025, 8)

	queue, err := f.admin.Queue(context.Background())
	require.NoError(t, err)

	require.Len(t, queue.PendingPayment, 2)
	assert.Equal(t, 8, queue.PendingPayment[0].Month)
	assert.Equal(t, 9, queue.PendingPayment[1].Month)
}

func TestDashboard(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupAdmin(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	admin := f.user(t, "admin@example.com")

	f.income(t, alice, 10000, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, alice, 11000, time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, bob, 12000, time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC))

	// Alice's October goes all the way through filing, six hours after
	// payment landed.
	inProgress := f.toInProgress(t, alice, admin, 2025, 10)
	f.clock.Advance(6 * time.Hour)
	_, err := f.decls.CompleteFiling(ctx, declarationdomain.CompleteFilingRequest{
		DeclarationID:      inProgress.ID,
		AdminID:            admin,
		ConfirmationNumber: "RS-2025-010",
	})
	require.NoError(t, err)

	// Alice's September is still waiting on payment, Bob's October is paid.
	f.toAwaitingPayment(t, alice, 2025, 9)
	f.toPaymentReceived(t, bob, 2025, 10)

	stats, err := f.admin.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalDeclarationsThisMonth)
	assert.Equal(t, 1, stats.PendingPayment)
	assert.Equal(t, 1, stats.ReadyToFile)
	assert.Equal(t, 0, stats.InProgress)
	assert.Equal(t, 1, stats.FiledThisMonth)
	assert.Equal(t, 0, stats.RejectedThisMonth)
	assert.Equal(t, 100.0, stats.TotalRevenueThisMonth)
	require.NotNil(t, stats.AverageFilingTimeHours)
	assert.InDelta(t, 6.0, *stats.AverageFilingTimeHours, 0.01)
}

func TestDashboardEmpty(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupAdmin(t, now)

	stats, err := f.admin.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalDeclarationsThisMonth)
	assert.Equal(t, 0.0, stats.TotalRevenueThisMonth)
	assert.Nil(t, stats.AverageFilingTimeHours)
}

func TestListAllWithFilters(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupAdmin(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	f.income(t, alice, 10000, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, alice, 11000, time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, bob, 12000, time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC))

	f.toAwaitingPayment(t, alice, 2025, 9)
	f.toPaymentReceived(t, alice, 2025, 10)
	f.toPaymentReceived(t, bob, 2025, 10)

	all, err := f.admin.ListAll(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalCount)
	assert.Equal(t, 100.0, all.TotalRevenue)
	// Newest period first.
	assert.Equal(t, 10, all.Declarations[0].Month)

	status := declarationdomain.StatusPaymentReceived
	paid, err := f.admin.ListAll(ctx, domain.ListFilter{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 2, paid.TotalCount)

	byUser, err := f.admin.ListAll(ctx, domain.ListFilter{UserID: &alice})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byUser.TotalCount)
	for _, d := range byUser.Declarations {
		assert.Equal(t, alice, d.UserID)
	}

	month := 9
	september, err := f.admin.ListAll(ctx, domain.ListFilter{Month: &month})
	require.NoError(t, err)
	assert.EqualValues(t, 1, september.TotalCount)
	assert.Equal(t, 0.0, september.TotalRevenue)
}

func TestListAllPagination(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupAdmin(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	for month := 7; month <= 10; month++ {
		f.income(t, alice, 10000, time.Date(2025, time.Month(month), 5, 0, 0, 0, 0, time.UTC))
		f.toAwaitingPayment(t, alice, 2025, month)
	}

	page, err := f.admin.ListAll(ctx, domain.ListFilter{
		Pagination: pagination.Pagination{Limit: 2, Offset: 1},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.TotalCount)
	require.Len(t, page.Declarations, 2)
	assert.Equal(t, 9, page.Declarations[0].Month)
	assert.Equal(t, 8, page.Declarations[1].Month)
}

func TestUserDeclarations(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupAdmin(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	f.income(t, alice, 10000, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, bob, 12000, time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC))
	f.toAwaitingPayment(t, alice, 2025, 9)
	f.toAwaitingPayment(t, bob, 2025, 10)

	history, err := f.admin.UserDeclarations(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, alice, history.UserID)
	assert.Equal(t, 1, history.TotalCount)
	require.Len(t, history.Declarations, 1)
	assert.Equal(t, "alice@example.com", history.Declarations[0].UserEmail)

	empty, err := f.admin.UserDeclarations(ctx, f.node.Generate())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalCount)
	assert.NotNil(t, empty.Declarations)
}

func TestUserDirectory(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupAdmin(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	f.clock.Advance(time.Minute)
	bob := f.user(t, "bob@example.com")
	f.clock.Advance(time.Minute)
	admin := f.user(t, "admin@example.com")
	require.NoError(t, f.db.Model(&userdomain.User{}).
		Where("id = ?", admin).
		Updates(map[string]any{"is_admin": true, "admin_since": f.clock.Now()}).Error)

	f.income(t, alice, 10000, time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC))
	inProgress := f.toInProgress(t, alice, admin, 2025, 10)
	_, err := f.decls.CompleteFiling(ctx, declarationdomain.CompleteFilingRequest{
		DeclarationID: inProgress.ID,
		AdminID:       admin,
	})
	require.NoError(t, err)

	directory, err := f.admin.Users(ctx)
	require.NoError(t, err)

	require.Equal(t, 3, directory.TotalCount)
	// Oldest account first.
	assert.Equal(t, alice, directory.Users[0].ID)
	assert.Equal(t, 1, directory.Users[0].TotalDeclarations)
	assert.Equal(t, 1, directory.Users[0].TotalFiled)
	assert.Equal(t, 50.0, directory.Users[0].TotalPaid)

	assert.Equal(t, bob, directory.Users[1].ID)
	assert.Equal(t, 0, directory.Users[1].TotalDeclarations)

	assert.Equal(t, admin, directory.Users[2].ID)
	assert.True(t, directory.Users[2].IsAdmin)
	assert.NotNil(t, directory.Users[2].AdminSince)
}
