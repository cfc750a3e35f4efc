package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/tbilisoft/declara/internal/adminops/domain"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	userdomain "github.com/tbilisoft/declara/internal/user/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const queueColumns = "declarations.id, declarations.user_id, users.email AS user_email, " +
	"declarations.year, declarations.month, declarations.income_gel, declarations.tax_due_gel, " +
	"declarations.status, declarations.filing_deadline, declarations.payment_status, " +
	"declarations.payment_amount, declarations.payment_date, declarations.submitted_date, " +
	"declarations.requires_correction, declarations.transaction_count"

func queueQuery(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("declarations").
		Select(queueColumns).
		Joins("JOIN users ON users.id = declarations.user_id")
}

func (r *repo) QueueItems(ctx context.Context, db *gorm.DB, statuses []declarationdomain.Status) ([]domain.QueueItem, error) {
	var items []domain.QueueItem
	err := queueQuery(ctx, db).
		Where("declarations.status IN ?", statuses).
		Order("declarations.filing_deadline asc").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountCreatedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&declarationdomain.Declaration{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return int(count), err
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (domain.StatusCounts, error) {
	rows := []struct {
		Status declarationdomain.Status
		Count  int
	}{}
	err := db.WithContext(ctx).
		Model(&declarationdomain.Declaration{}).
		Select("status, COUNT(*) AS count").
		Where("status IN ?", []declarationdomain.Status{
			declarationdomain.StatusAwaitingPayment,
			declarationdomain.StatusPaymentReceived,
			declarationdomain.StatusInProgress,
		}).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.StatusCounts{}, err
	}

	var counts domain.StatusCounts
	for _, row := range rows {
		switch row.Status {
		case declarationdomain.StatusAwaitingPayment:
			counts.AwaitingPayment = row.Count
		case declarationdomain.StatusPaymentReceived:
			counts.PaymentReceived = row.Count
		case declarationdomain.StatusInProgress:
			counts.InProgress = row.Count
		}
	}
	return counts, nil
}

func (r *repo) CountFiledBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&declarationdomain.Declaration{}).
		Where("filed_by_admin_at >= ? AND filed_by_admin_at < ?", from, to).
		Count(&count).Error
	return int(count), err
}

func (r *repo) CountRejectedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&declarationdomain.Declaration{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?",
			declarationdomain.StatusRejected, from, to).
		Count(&count).Error
	return int(count), err
}

func (r *repo) RevenueBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (float64, error) {
	var total *float64
	err := db.WithContext(ctx).
		Model(&declarationdomain.Declaration{}).
		Select("SUM(payment_amount)").
		Where("payment_status = ? AND payment_date >= ? AND payment_date < ?",
			declarationdomain.PaymentPaid, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repo) AverageFilingHours(ctx context.Context, db *gorm.DB, from, to time.Time) (*float64, error) {
	rows := []struct {
		PaymentDate    *time.Time
		FiledByAdminAt *time.Time
	}{}
	err := db.WithContext(ctx).
		Model(&declarationdomain.Declaration{}).
		Select("payment_date, filed_by_admin_at").
		Where("filed_by_admin_at >= ? AND filed_by_admin_at < ? AND payment_date IS NOT NULL",
			from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	total, n := 0.0, 0
	for _, row := range rows {
		if row.PaymentDate == nil || row.FiledByAdminAt == nil {
			continue
		}
		total += row.FiledByAdminAt.Sub(*row.PaymentDate).Hours()
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := total / float64(n)
	return &avg, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.QueueItem, int64, float64, error) {
	applyFilter := func(stmt *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			stmt = stmt.Where("declarations.status = ?", *filter.Status)
		}
		if filter.UserID != nil {
			stmt = stmt.Where("declarations.user_id = ?", *filter.UserID)
		}
		if filter.Year != nil {
			stmt = stmt.Where("declarations.year = ?", *filter.Year)
		}
		if filter.Month != nil {
			stmt = stmt.Where("declarations.month = ?", *filter.Month)
		}
		return stmt
	}

	var count int64
	if err := applyFilter(db.WithContext(ctx).Model(&declarationdomain.Declaration{}).Table("declarations")).
		Count(&count).Error; err != nil {
		return nil, 0, 0, err
	}

	var revenue *float64
	if err := applyFilter(db.WithContext(ctx).Model(&declarationdomain.Declaration{}).Table("declarations")).
		Select("SUM(payment_amount)").
		Where("declarations.payment_status = ?", declarationdomain.PaymentPaid).
		Scan(&revenue).Error; err != nil {
		return nil, 0, 0, err
	}

	var items []domain.QueueItem
	stmt := applyFilter(queueQuery(ctx, db)).
		Order("declarations.year desc, declarations.month desc")
	if err := filter.Pagination.Apply(stmt).Scan(&items).Error; err != nil {
		return nil, 0, 0, err
	}

	totalRevenue := 0.0
	if revenue != nil {
		totalRevenue = *revenue
	}
	return items, count, totalRevenue, nil
}

func (r *repo) ByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.QueueItem, error) {
	var items []domain.QueueItem
	err := queueQuery(ctx, db).
		Where("declarations.user_id = ?", userID).
		Order("declarations.year desc, declarations.month desc").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UserDirectory(ctx context.Context, db *gorm.DB) ([]domain.DirectoryUser, error) {
	var users []userdomain.User
	if err := db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}

	aggs := []struct {
		UserID snowflake.ID
		Total  int
		Filed  int
		Paid   float64
	}{}
	err := db.WithContext(ctx).
		Model(&declarationdomain.Declaration{}).
		Select("user_id, COUNT(*) AS total, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS filed, "+
			"SUM(CASE WHEN payment_status = ? THEN payment_amount ELSE 0 END) AS paid",
			declarationdomain.StatusFiledByAdmin, declarationdomain.PaymentPaid).
		Group("user_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}

	byUser := make(map[snowflake.ID]int, len(aggs))
	for i, agg := range aggs {
		byUser[agg.UserID] = i
	}

	out := make([]domain.DirectoryUser, 0, len(users))
	for _, u := range users {
		entry := domain.DirectoryUser{
			ID:         u.ID,
			Email:      u.Email,
			IsAdmin:    u.IsAdmin,
			AdminSince: u.AdminSince,
			CreatedAt:  u.CreatedAt,
		}
		if i, ok := byUser[u.ID]; ok {
			entry.TotalDeclarations = aggs[i].Total
			entry.TotalFiled = aggs[i].Filed
			entry.TotalPaid = aggs[i].Paid
		}
		out = append(out, entry)
	}
	return out, nil
}
