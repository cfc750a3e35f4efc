package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// IncomeRecord is one settled income entry in the ledger. Amounts are
// already converted to GEL upstream; this core never touches exchange
// rates. The ledger is append-only.
type IncomeRecord struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"not null;index:idx_income_user_date" json:"user_id"`
	AmountGel   float64      `gorm:"not null" json:"amount_gel"`
	Category    string       `json:"category,omitempty"`
	Description string       `json:"description,omitempty"`
	IncomeDate  time.Time    `gorm:"not null;index:idx_income_user_date" json:"income_date"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (IncomeRecord) TableName() string {
	return "income_records"
}

// MonthlyIncome is the aggregate a declaration snapshot is built from.
type MonthlyIncome struct {
	TotalGel  float64
	Count     int
	RecordIDs []string
}
