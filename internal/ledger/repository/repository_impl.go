package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tbilisoft/declara/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.IncomeRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to *time.Time) ([]*domain.IncomeRecord, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.IncomeRecord{}).
		Where("user_id = ?", userID)
	if from != nil {
		stmt = stmt.Where("income_date >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("income_date < ?", *to)
	}

	var records []*domain.IncomeRecord
	err := stmt.Order("income_date desc, id desc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) SumRange(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (domain.MonthlyIncome, error) {
	var records []*domain.IncomeRecord
	err := db.WithContext(ctx).
		Model(&domain.IncomeRecord{}).
		Where("user_id = ? AND income_date >= ? AND income_date < ?", userID, from, to).
		Order("income_date asc, id asc").
		Find(&records).Error
	if err != nil {
		return domain.MonthlyIncome{}, err
	}

	agg := domain.MonthlyIncome{
		Count:     len(records),
		RecordIDs: make([]string, 0, len(records)),
	}
	for _, record := range records {
		agg.TotalGel += record.AmountGel
		agg.RecordIDs = append(agg.RecordIDs, record.ID.String())
	}
	return agg, nil
}

func (r *repo) SumTotal(ctx context.Context, db *gorm.DB, userID snowflake.ID, from, to time.Time) (float64, error) {
	var total *float64
	err := db.WithContext(ctx).
		Model(&domain.IncomeRecord{}).
		Select("SUM(amount_gel)").
		Where("user_id = ? AND income_date >= ? AND income_date < ?", userID, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
