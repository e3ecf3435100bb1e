package models

import (
	"strings"
	"time"
)

// Account represents a registered user
type Account struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Password  string    `db:"password" json:"-"` // bcrypt digest; empty for Google-created accounts
	IsHost    bool      `db:"is_host" json:"isHost"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Event represents a published campus event
type Event struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	StartsAt    time.Time  `db:"starts_at" json:"startsAt"`
	EndsAt      *time.Time `db:"ends_at" json:"endsAt,omitempty"`
	Location    string     `db:"location" json:"location"`
	Description string     `db:"description" json:"description,omitempty"`
	HostLabel   string     `db:"host_label" json:"host,omitempty"` // display-only label, independent of the owner
	Tags        string     `db:"tags" json:"tags,omitempty"`       // comma-separated
	OwnerID     *int64     `db:"owner_id" json:"ownerId,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// ConcludedBefore reports whether the event is over at the given instant.
// Events without an end time conclude at their start time.
func (e *Event) ConcludedBefore(t time.Time) bool {
	end := e.StartsAt
	if e.EndsAt != nil {
		end = *e.EndsAt
	}
	return end.Before(t)
}

// TagList splits the comma-separated tag string into trimmed elements.
func (e *Event) TagList() []string {
	if e.Tags == "" {
		return nil
	}
	parts := strings.Split(e.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Favorite represents the relationship between an account and an event it saved
type Favorite struct {
	AccountID int64     `db:"account_id" json:"accountId"`
	EventID   int64     `db:"event_id" json:"eventId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
