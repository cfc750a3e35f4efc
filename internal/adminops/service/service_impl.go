package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tbilisoft/declara/internal/adminops/domain"
	"github.com/tbilisoft/declara/internal/clock"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("adminops.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *service) Queue(ctx context.Context) (*domain.Queue, error) {
	items, err := s.repo.QueueItems(ctx, s.db, []declarationdomain.Status{
		declarationdomain.StatusAwaitingPayment,
		declarationdomain.StatusPaymentReceived,
		declarationdomain.StatusInProgress,
		declarationdomain.StatusRejected,
	})
	if err != nil {
		return nil, err
	}

	queue := &domain.Queue{
		PendingPayment:  []domain.QueueItem{},
		ReadyToFile:     []domain.QueueItem{},
		InProgress:      []domain.QueueItem{},
		NeedsCorrection: []domain.QueueItem{},
	}
	for _, item := range items {
		switch item.Status {
		case declarationdomain.StatusAwaitingPayment:
			queue.PendingPayment = append(queue.PendingPayment, item)
		case declarationdomain.StatusPaymentReceived:
			queue.ReadyToFile = append(queue.ReadyToFile, item)
		case declarationdomain.StatusInProgress:
			queue.InProgress = append(queue.InProgress, item)
		case declarationdomain.StatusRejected:
			if item.RequiresCorrection {
				queue.NeedsCorrection = append(queue.NeedsCorrection, item)
			}
		}
	}
	queue.TotalCount = len(queue.PendingPayment) + len(queue.ReadyToFile) +
		len(queue.InProgress) + len(queue.NeedsCorrection)
	return queue, nil
}

func (s *service) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	now := s.clock.Now()
	monthStart := declarationdomain.MonthStart(now.Year(), int(now.Month()))
	monthEnd := monthStart.AddDate(0, 1, 0)

	created, err := s.repo.CountCreatedBetween(ctx, s.db, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx, s.db)
	if err != nil {
		return nil, err
	}
	filed, err := s.repo.CountFiledBetween(ctx, s.db, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	rejected, err := s.repo.CountRejectedBetween(ctx, s.db, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.RevenueBetween(ctx, s.db, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	avgHours, err := s.repo.AverageFilingHours(ctx, s.db, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		TotalDeclarationsThisMonth: created,
		PendingPayment:             counts.AwaitingPayment,
		ReadyToFile:                counts.PaymentReceived,
		InProgress:                 counts.InProgress,
		FiledThisMonth:             filed,
		RejectedThisMonth:          rejected,
		TotalRevenueThisMonth:      revenue,
		AverageFilingTimeHours:     avgHours,
	}, nil
}

func (s *service) ListAll(ctx context.Context, filter domain.ListFilter) (*domain.DeclarationList, error) {
	filter.Pagination = filter.Pagination.Normalize()
	items, count, revenue, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.QueueItem{}
	}
	return &domain.DeclarationList{
		Declarations: items,
		TotalCount:   count,
		TotalRevenue: revenue,
	}, nil
}

func (s *service) UserDeclarations(ctx context.Context, userID snowflake.ID) (*domain.UserHistory, error) {
	items, err := s.repo.ByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.QueueItem{}
	}
	return &domain.UserHistory{
		UserID:       userID,
		Declarations: items,
		TotalCount:   len(items),
	}, nil
}

func (s *service) Users(ctx context.Context) (*domain.Directory, error) {
	users, err := s.repo.UserDirectory(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.DirectoryUser{}
	}
	return &domain.Directory{Users: users, TotalCount: len(users)}, nil
}
