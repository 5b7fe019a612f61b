package model

import "time"

// Group is a named, reusable audience. Membership lives in the
// group_subscribers join table; changing it does not affect campaigns that
// have already been dispatched.
type Group struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description,omitempty"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`

	// SubscriberCount is populated on list/get reads, not stored.
	SubscriberCount int `db:"-" json:"subscriber_count"`
}
