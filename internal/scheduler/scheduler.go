package scheduler

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tbilisoft/declara/internal/clock"
	"github.com/tbilisoft/declara/internal/config"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	ledgerdomain "github.com/tbilisoft/declara/internal/ledger/domain"
	notificationdomain "github.com/tbilisoft/declara/internal/notification/domain"
	"github.com/tbilisoft/declara/internal/observability/metrics"
	userdomain "github.com/tbilisoft/declara/internal/user/domain"
)

// reminderWindowDays is how far ahead the deadline sweep looks.
const reminderWindowDays = 7

// thresholdAlertBands are the usage percentages that trigger an alert,
// highest first. Only the highest crossed band fires.
var thresholdAlertBands = []float64{95, 85, 75}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Cfg    config.Config
	Decls  declarationdomain.Repository
	Users  userdomain.Repository
	Ledger ledgerdomain.Service
	Clock  clock.Clock
	Sender notificationdomain.Sender
}

// Scheduler runs the periodic sweeps: overdue reclassification with
// deadline reminders, and annual-threshold alerts.
type Scheduler struct {
	db     *gorm.DB
	log    *zap.Logger
	cfg    config.Config
	decls  declarationdomain.Repository
	users  userdomain.Repository
	ledger ledgerdomain.Service
	clock  clock.Clock
	sender notificationdomain.Sender

	cancel context.CancelFunc
	done   chan struct{}
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:     p.DB,
		log:    p.Log.Named("scheduler"),
		cfg:    p.Cfg,
		decls:  p.Decls,
		users:  p.Users,
		ledger: p.Ledger,
		clock:  p.Clock,
		sender: p.Sender,
	}
}

// SweepDeadlines reclassifies pending declarations past their deadline to
// overdue, alerts their owners, and reminds owners of declarations due
// within the next week. A failed send is logged and skipped so one user
// cannot stall the sweep.
func (s *Scheduler) SweepDeadlines(ctx context.Context) error {
	now := s.clock.Now()

	pastDue, err := s.decls.PastDuePending(ctx, s.db, now)
	if err != nil {
		return err
	}

	if len(pastDue) > 0 {
		flipped, err := s.decls.MarkOverdue(ctx, s.db, now)
		if err != nil {
			return err
		}
		s.log.Info("reclassified overdue declarations", zap.Int64("count", flipped))

		byUser := make(map[snowflake.ID]int)
		for _, decl := range pastDue {
			byUser[decl.UserID]++
		}
		for userID, count := range byUser {
			n := notificationdomain.OverdueAlert(userID, count, now)
			if err := s.sender.Send(ctx, n); err != nil {
				s.log.Warn("overdue alert failed",
					zap.Int64("user_id", int64(userID)), zap.Error(err))
			}
		}
	}

	due, err := s.decls.DuePending(ctx, s.db, now, now.AddDate(0, 0, reminderWindowDays))
	if err != nil {
		return err
	}
	for _, decl := range due {
		daysLeft := int(decl.FilingDeadline.Sub(now).Hours() / 24)
		n := notificationdomain.DeadlineReminder(decl, daysLeft, now)
		if err := s.sender.Send(ctx, n); err != nil {
			s.log.Warn("deadline reminder failed",
				zap.Int64("user_id", int64(decl.UserID)), zap.Error(err))
		}
	}
	return nil
}

// SweepThresholds checks every user's year-to-date income against the
// annual ceiling and alerts when a band is crossed.
func (s *Scheduler) SweepThresholds(ctx context.Context) error {
	now := s.clock.Now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	users, err := s.users.List(ctx, s.db)
	if err != nil {
		return err
	}

	for _, u := range users {
		total, err := s.ledger.Total(ctx, u.ID, start, end)
		if err != nil {
			s.log.Warn("threshold sweep: income lookup failed",
				zap.Int64("user_id", int64(u.ID)), zap.Error(err))
			continue
		}

		used := total / s.cfg.Tax.AnnualThreshold * 100
		for _, band := range thresholdAlertBands {
			if used >= band {
				remaining := s.cfg.Tax.AnnualThreshold - total
				if remaining < 0 {
					remaining = 0
				}
				n := notificationdomain.ThresholdAlert(u.ID, used, remaining, now)
				if err := s.sender.Send(ctx, n); err != nil {
					s.log.Warn("threshold alert failed",
						zap.Int64("user_id", int64(u.ID)), zap.Error(err))
				}
				break
			}
		}
	}
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, name string, fn func(context.Context) error) {
	started := time.Now()
	metrics.Scheduler().IncJobRun(name)
	if err := fn(ctx); err != nil {
		metrics.Scheduler().IncJobError(name)
		s.log.Error("sweep failed", zap.String("job", name), zap.Error(err))
	}
	metrics.Scheduler().ObserveJobDuration(name, time.Since(started))
}

// RunForever runs both sweeps on the configured interval until the
// context is cancelled. One round runs immediately on start.
func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runJob(ctx, "sweep_deadlines", s.SweepDeadlines)
	s.runJob(ctx, "sweep_thresholds", s.SweepThresholds)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runJob(ctx, "sweep_deadlines", s.SweepDeadlines)
			s.runJob(ctx, "sweep_thresholds", s.SweepThresholds)
		}
	}
}

func (s *Scheduler) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.RunForever(ctx)
	}()
}

func (s *Scheduler) stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				s.start()
				log.Info("scheduler started")
				return nil
			},
			OnStop: func(context.Context) error {
				s.stop()
				log.Info("scheduler stopped")
				return nil
			},
		})
	}),
)
