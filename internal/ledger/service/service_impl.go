package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tbilisoft/declara/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordIncomeRequest) (domain.IncomeRecord, error) {
	if req.UserID == 0 {
		return domain.IncomeRecord{}, domain.ErrInvalidUser
	}
	if req.AmountGel <= 0 {
		return domain.IncomeRecord{}, domain.ErrInvalidAmount
	}
	if req.IncomeDate.IsZero() {
		return domain.IncomeRecord{}, domain.ErrInvalidDate
	}

	record := domain.IncomeRecord{
		ID:          s.genID.Generate(),
		UserID:      req.UserID,
		AmountGel:   req.AmountGel,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		IncomeDate:  req.IncomeDate.UTC(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		return domain.IncomeRecord{}, err
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListIncomeRequest) ([]domain.IncomeRecord, error) {
	if req.UserID == 0 {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.List(ctx, s.db, req.UserID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	records := make([]domain.IncomeRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, *item)
	}
	return records, nil
}

func (s *Service) SumAndList(ctx context.Context, userID snowflake.ID, from, to time.Time) (domain.MonthlyIncome, error) {
	if userID == 0 {
		return domain.MonthlyIncome{}, domain.ErrInvalidUser
	}
	return s.repo.SumRange(ctx, s.db, userID, from, to)
}

func (s *Service) Total(ctx context.Context, userID snowflake.ID, from, to time.Time) (float64, error) {
	if userID == 0 {
		return 0, domain.ErrInvalidUser
	}
	return s.repo.SumTotal(ctx, s.db, userID, from, to)
}
