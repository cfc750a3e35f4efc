package scheduler

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

	"github.com/tbilisoft/declara/internal/clock"
	"github.com/tbilisoft/declara/internal/config"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	declarationrepo "github.com/tbilisoft/declara/internal/declaration/repository"
	declarationservice "github.com/tbilisoft/declara/internal/declaration/service"
	ledgerdomain "github.com/tbilisoft/declara/internal/ledger/domain"
	ledgerrepo "github.com/tbilisoft/declara/internal/ledger/repository"
	ledgerservice "github.com/tbilisoft/declara/internal/ledger/service"
	notificationdomain "github.com/tbilisoft/declara/internal/notification/domain"
	userdomain "github.com/tbilisoft/declara/internal/user/domain"
	userrepo "github.com/tbilisoft/declara/internal/user/repository"
)

// captureSender records everything a sweep tries to deliver.
type captureSender struct {
	sent []notificationdomain.Notification
}

func (c *captureSender) Send(_ context.Context, n notificationdomain.Notification) error {
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureSender) byKind(kind notificationdomain.Kind) []notificationdomain.Notification {
	var out []notificationdomain.Notification
	for _, n := range c.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	scheduler *Scheduler
	decls     declarationdomain.Service
	ledger    ledgerdomain.Service
	sender    *captureSender
	clock     *clock.FakeClock
	node      *snowflake.Node
}

func setupScheduler(t *testing.T, now time.Time) *fixture {
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
	cfg := config.Config{
		Tax: config.TaxConfig{
			Rate:            0.01,
			AnnualThreshold: 500000,
			FilingDay:       15,
			FilingFee:       50,
			ServiceFeeRate:  0.02,
		},
		SweepInterval: time.Hour,
	}

	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  ledgerrepo.Provide(),
	})
	declRepo := declarationrepo.Provide()
	declSvc := declarationservice.New(declarationservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Repo:   declRepo,
		Ledger: ledgerSvc,
		Clock:  fake,
		Tax:    cfg.Tax,
	})
	sender := &captureSender{}
	sched := New(Params{
		DB:     db,
		Log:    log,
		Cfg:    cfg,
		Decls:  declRepo,
		Users:  userrepo.Provide(),
		Ledger: ledgerSvc,
		Clock:  fake,
		Sender: sender,
	})

	return &fixture{
		db:        db,
		scheduler: sched,
		decls:     declSvc,
		ledger:    ledgerSvc,
		sender:    sender,
		clock:     fake,
		node:      node,
	}
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

// materializeAt creates a declaration while the clock reads the given
// instant, then restores it. The sweep under test decides what the
// record's age means.
func (f *fixture) materializeAt(t *testing.T, at time.Time, userID snowflake.ID, year, month int) {
	t.Helper()
	saved := f.clock.Now()
	f.clock.Set(at)
	_, err := f.decls.GetOrCreate(context.Background(), userID, year, month)
	require.NoError(t, err)
	f.clock.Set(saved)
}

func TestSweepDeadlinesReclassifiesAndAlerts(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	f.income(t, alice, 10000, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, alice, 11000, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))

	// Created while still in time, now both past deadline.
	f.materializeAt(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), alice, 2025, 8)
	f.materializeAt(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), alice, 2025, 9)

	require.NoError(t, f.scheduler.SweepDeadlines(ctx))

	var statuses []declarationdomain.Status
	require.NoError(t, f.db.Model(&declarationdomain.Declaration{}).
		Order("month asc").
		Pluck("status", &statuses).Error)
	assert.Equal(t, []declarationdomain.Status{
		declarationdomain.StatusOverdue,
		declarationdomain.StatusOverdue,
	}, statuses)

	alerts := f.sender.byKind(notificationdomain.KindOverdueAlert)
	require.Len(t, alerts, 1)
	assert.Equal(t, alice, alerts[0].UserID)
	assert.Equal(t, "2 Overdue Declaration(s)", alerts[0].Title)
}

func TestSweepDeadlinesRemindsUpcoming(t *testing.T) {
	now := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	// Alice's October deadline is five days out. Bob's November deadline
	// is more than a month away and stays quiet.
	f.income(t, alice, 22000, time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC))
	f.income(t, bob, 9000, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC))
	f.materializeAt(t, now, alice, 2025, 10)
	f.materializeAt(t, now, bob, 2025, 11)

	require.NoError(t, f.scheduler.SweepDeadlines(ctx))

	reminders := f.sender.byKind(notificationdomain.KindDeadlineReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, alice, reminders[0].UserID)
	assert.Equal(t, "Declaration Due in 5 Days", reminders[0].Title)
	assert.Contains(t, reminders[0].Body, "October 2025")

	assert.Empty(t, f.sender.byKind(notificationdomain.KindOverdueAlert))
}

func TestSweepDeadlinesDueTomorrow(t *testing.T) {
	now := time.Date(2025, 11, 14, 9, 0, 0, 0, time.UTC)
	f := setupScheduler(t, now)

	alice := f.user(t, "alice@example.com")
	f.income(t, alice, 22000, time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC))
	f.materializeAt(t, now, alice, 2025, 10)

	require.NoError(t, f.scheduler.SweepDeadlines(context.Background()))

	reminders := f.sender.byKind(notificationdomain.KindDeadlineReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, "Declaration Due Tomorrow!", reminders[0].Title)
}

func TestSweepDeadlinesIdempotent(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	f.income(t, alice, 10000, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC))
	f.materializeAt(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), alice, 2025, 9)

	require.NoError(t, f.scheduler.SweepDeadlines(ctx))
	require.NoError(t, f.scheduler.SweepDeadlines(ctx))

	// The declaration is overdue after the first pass, so the second
	// sends nothing new.
	assert.Len(t, f.sender.byKind(notificationdomain.KindOverdueAlert), 1)
}

func TestSweepThresholds(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	ctx := context.Background()

	quiet := f.user(t, "quiet@example.com")
	busy := f.user(t, "busy@example.com")
	over := f.user(t, "over@example.com")

	f.income(t, quiet, 100000, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	f.income(t, busy, 380000, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	f.income(t, over, 490000, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, f.scheduler.SweepThresholds(ctx))

	alerts := f.sender.byKind(notificationdomain.KindThresholdAlert)
	require.Len(t, alerts, 2)

	byUser := map[snowflake.ID]notificationdomain.Notification{}
	for _, n := range alerts {
		byUser[n.UserID] = n
	}

	require.Contains(t, byUser, busy)
	assert.Contains(t, byUser[busy].Body, "76.0%")

	require.Contains(t, byUser, over)
	assert.Contains(t, byUser[over].Body, "98.0%")
	assert.Contains(t, byUser[over].Body, "10000 GEL remaining")
}

func TestSweepThresholdsFiresOncePerSweep(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	f := setupScheduler(t, now)
	ctx := context.Background()

	// 96% crosses every band but only the highest one fires.
	alice := f.user(t, "alice@example.com")
	f.income(t, alice, 480000, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, f.scheduler.SweepThresholds(ctx))

	alerts := f.sender.byKind(notificationdomain.KindThresholdAlert)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Body, "96.0%")
}
