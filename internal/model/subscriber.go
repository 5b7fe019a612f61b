package model

import (
	"fmt"
	"strings"
	"time"
)

// SubscriberStatus is the delivery standing of a subscriber.
type SubscriberStatus string

const (
	SubscriberActive       SubscriberStatus = "ACTIVE"
	SubscriberUnsubscribed SubscriberStatus = "UNSUBSCRIBED"
	SubscriberBounced      SubscriberStatus = "BOUNCED"
)

// ParseSubscriberStatus normalizes an external status representation to the
// canonical enum.
func ParseSubscriberStatus(s string) (SubscriberStatus, error) {
	switch SubscriberStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case SubscriberActive:
		return SubscriberActive, nil
	case SubscriberUnsubscribed:
		return SubscriberUnsubscribed, nil
	case SubscriberBounced:
		return SubscriberBounced, nil
	}
	return "", fmt.Errorf("unknown subscriber status %q", s)
}

type Subscriber struct {
	ID            string           `db:"id" json:"id"`
	Email         string           `db:"email" json:"email"`
	Phone         string           `db:"phone" json:"phone,omitempty"`
	FirstName     string           `db:"first_name" json:"first_name,omitempty"`
	LastName      string           `db:"last_name" json:"last_name,omitempty"`
	Status        SubscriberStatus `db:"status" json:"status"`
	WhatsAppOptIn bool             `db:"whatsapp_opt_in" json:"whatsapp_opt_in"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time       `db:"updated_at" json:"updated_at,omitempty"`
}
