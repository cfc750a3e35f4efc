package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is the read model this service keeps about account holders. Identity
// and credentials live upstream; we only need contact identity and the
// admin capability flag.
type User struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Email      string       `gorm:"not null;uniqueIndex" json:"email"`
	IsAdmin    bool         `gorm:"not null;default:false" json:"is_admin"`
	AdminSince *time.Time   `json:"admin_since,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

var ErrNotFound = errors.New("user_not_found")
