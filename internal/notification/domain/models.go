package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"

	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
)

type Kind string

const (
	KindDeadlineReminder Kind = "deadline_reminder"
	KindOverdueAlert     Kind = "overdue_alert"
	KindThresholdAlert   Kind = "threshold_alert"
)

type Notification struct {
	UserID    snowflake.ID `json:"user_id"`
	Kind      Kind         `json:"kind"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"created_at"`
}

// Sender delivers a notification over whatever channel is wired in.
// Delivery failure for one user must not stop a sweep.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

func DeadlineReminder(decl *declarationdomain.Declaration, daysLeft int, now time.Time) Notification {
	month := time.Date(decl.Year, time.Month(decl.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	title := fmt.Sprintf("Declaration Due in %d Days", daysLeft)
	if daysLeft <= 1 {
		title = "Declaration Due Tomorrow!"
	}
	return Notification{
		UserID: decl.UserID,
		Kind:   KindDeadlineReminder,
		Title:  title,
		Body: fmt.Sprintf("Your %s declaration is due on %s. Income: %.2f GEL, Tax: %.2f GEL",
			month, decl.FilingDeadline.Format("January 02"), decl.IncomeGel, decl.TaxDueGel),
		CreatedAt: now,
	}
}

func OverdueAlert(userID snowflake.ID, count int, now time.Time) Notification {
	return Notification{
		UserID: userID,
		Kind:   KindOverdueAlert,
		Title:  fmt.Sprintf("%d Overdue Declaration(s)", count),
		Body: fmt.Sprintf("You have %d overdue tax declaration(s). File immediately to avoid penalties.",
			count),
		CreatedAt: now,
	}
}

func ThresholdAlert(userID snowflake.ID, percentUsed, remainingGel float64, now time.Time) Notification {
	return Notification{
		UserID: userID,
		Kind:   KindThresholdAlert,
		Title:  "Annual Threshold Alert",
		Body: fmt.Sprintf("You've used %.1f%% of your annual limit. %.0f GEL remaining.",
			percentUsed, remainingGel),
		CreatedAt: now,
	}
}
