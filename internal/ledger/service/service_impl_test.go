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

	"github.com/tbilisoft/declara/internal/ledger/domain"
	ledgerrepo "github.com/tbilisoft/declara/internal/ledger/repository"
)

func setupLedger(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.IncomeRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  ledgerrepo.Provide(),
	})
	return svc, node
}

func TestRecordIncome(t *testing.T) {
	svc, node := setupLedger(t)
	userID := node.Generate()

	record, err := svc.Record(context.Background(), domain.RecordIncomeRequest{
		UserID:      userID,
		AmountGel:   1500.50,
		Category:    "  freelance  ",
		Description: "invoice #42",
		IncomeDate:  time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.NotZero(t, record.ID)
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, 1500.50, record.AmountGel)
	assert.Equal(t, "freelance", record.Category)
	assert.Equal(t, "invoice #42", record.Description)
}

func TestRecordIncomeValidation(t *testing.T) {
	svc, node := setupLedger(t)
	userID := node.Generate()
	date := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)

	_, err := svc.Record(context.Background(), domain.RecordIncomeRequest{
		AmountGel: 100, IncomeDate: date,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = svc.Record(context.Background(), domain.RecordIncomeRequest{
		UserID: userID, AmountGel: 0, IncomeDate: date,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Record(context.Background(), domain.RecordIncomeRequest{
		UserID: userID, AmountGel: -50, IncomeDate: date,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Record(context.Background(), domain.RecordIncomeRequest{
		UserID: userID, AmountGel: 100,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestListIncomeByRange(t *testing.T) {
	svc, node := setupLedger(t)
	ctx := context.Background()
	userID := node.Generate()
	other := node.Generate()

	dates := []time.Time{
		time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		_, err := svc.Record(ctx, domain.RecordIncomeRequest{
			UserID: userID, AmountGel: 1000, IncomeDate: d,
		})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, domain.RecordIncomeRequest{
		UserID: other, AmountGel: 9999, IncomeDate: dates[1],
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListIncomeRequest{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	from := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	october, err := svc.List(ctx, domain.ListIncomeRequest{UserID: userID, From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, october, 2)

	_, err = svc.List(ctx, domain.ListIncomeRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestSumAndList(t *testing.T) {
	svc, node := setupLedger(t)
	ctx := context.Background()
	userID := node.Generate()

	amounts := []float64{1200, 800.50, 3000}
	for i, amount := range amounts {
		_, err := svc.Record(ctx, domain.RecordIncomeRequest{
			UserID:     userID,
			AmountGel:  amount,
			IncomeDate: time.Date(2025, 10, 3+i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	// First instant of the next month is outside the half-open range.
	_, err := svc.Record(ctx, domain.RecordIncomeRequest{
		UserID:     userID,
		AmountGel:  500,
		IncomeDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	from := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	sum, err := svc.SumAndList(ctx, userID, from, to)
	require.NoError(t, err)

	assert.Equal(t, 5000.50, sum.TotalGel)
	assert.Equal(t, 3, sum.Count)
	assert.Len(t, sum.RecordIDs, 3)

	empty, err := svc.SumAndList(ctx, userID, to, to.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 500.0, empty.TotalGel)

	_, err = svc.SumAndList(ctx, 0, from, to)
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestTotal(t *testing.T) {
	svc, node := setupLedger(t)
	ctx := context.Background()
	userID := node.Generate()

	for _, amount := range []float64{1200, 800.50} {
		_, err := svc.Record(ctx, domain.RecordIncomeRequest{
			UserID:     userID,
			AmountGel:  amount,
			IncomeDate: time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	from := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	total, err := svc.Total(ctx, userID, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2000.50, total)

	// No rows in range still sums to zero.
	total, err = svc.Total(ctx, userID, to, to.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)

	_, err = svc.Total(ctx, 0, from, to)
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}
