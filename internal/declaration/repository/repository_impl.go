package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tbilisoft/declara/internal/declaration/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, declaration *domain.Declaration) error {
	return db.WithContext(ctx).Create(declaration).Error
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, userID snowflake.ID, year, month int) (*domain.Declaration, error) {
	var declaration domain.Declaration
	err := db.WithContext(ctx).
		First(&declaration, "user_id = ? AND year = ? AND month = ?", userID, year, month).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &declaration, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Declaration, error) {
	var declaration domain.Declaration
	err := db.WithContext(ctx).First(&declaration, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &declaration, nil
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, year *int) ([]*domain.Declaration, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Declaration{}).
		Where("user_id = ?", userID)
	if year != nil {
		stmt = stmt.Where("year = ?", *year)
	}

	var declarations []*domain.Declaration
	err := stmt.Order("year desc, month desc").Find(&declarations).Error
	if err != nil {
		return nil, err
	}
	return declarations, nil
}

func (r *repo) FindPending(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.Declaration, error) {
	var declarations []*domain.Declaration
	err := db.WithContext(ctx).
		Model(&domain.Declaration{}).
		Where("user_id = ? AND status IN ?", userID, []domain.Status{domain.StatusPending, domain.StatusOverdue}).
		Order("filing_deadline asc").
		Find(&declarations).Error
	if err != nil {
		return nil, err
	}
	return declarations, nil
}

func (r *repo) UpdateWhereStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected []domain.Status, updates map[string]any) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Declaration{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) LastSubmitted(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Declaration, error) {
	var declaration domain.Declaration
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusSubmitted).
		Order("submitted_date desc").
		First(&declaration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &declaration, nil
}

func (r *repo) NextPendingDeadline(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Declaration, error) {
	var declaration domain.Declaration
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusPending).
		Order("filing_deadline asc").
		First(&declaration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &declaration, nil
}

func (r *repo) DuePending(ctx context.Context, db *gorm.DB, from, to time.Time) ([]*domain.Declaration, error) {
	var declarations []*domain.Declaration
	err := db.WithContext(ctx).
		Where("status = ? AND filing_deadline >= ? AND filing_deadline < ?",
			domain.StatusPending, from, to).
		Order("filing_deadline asc").
		Find(&declarations).Error
	if err != nil {
		return nil, err
	}
	return declarations, nil
}

func (r *repo) PastDuePending(ctx context.Context, db *gorm.DB, now time.Time) ([]*domain.Declaration, error) {
	var declarations []*domain.Declaration
	err := db.WithContext(ctx).
		Where("status = ? AND filing_deadline < ?", domain.StatusPending, now).
		Find(&declarations).Error
	if err != nil {
		return nil, err
	}
	return declarations, nil
}

func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Declaration{}).
		Where("status = ? AND filing_deadline < ?", domain.StatusPending, now).
		Updates(map[string]any{"status": domain.StatusOverdue, "updated_at": now})
	return res.RowsAffected, res.Error
}
