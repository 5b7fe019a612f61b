package model

import "time"

// EmailTemplate holds an HTML body plus a default subject line.
type EmailTemplate struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Subject   string     `db:"subject" json:"subject"`
	Content   string     `db:"content" json:"content"`
	CreatedBy string     `db:"created_by" json:"created_by"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// WhatsAppTemplate holds plain text with {{var}} placeholders.
type WhatsAppTemplate struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Content   string     `db:"content" json:"content"`
	CreatedBy string     `db:"created_by" json:"created_by"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
