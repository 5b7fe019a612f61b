package model

import (
	"fmt"
	"strings"
	"time"
)

// Channel is the delivery medium of a campaign.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelWhatsApp Channel = "WHATSAPP"
)

// ParseChannel normalizes an external channel representation ("email",
// "Whatsapp", ...) to the canonical enum. This is the single normalization
// point for channel values coming in over the wire.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToUpper(strings.TrimSpace(s))) {
	case ChannelEmail:
		return ChannelEmail, nil
	case ChannelWhatsApp:
		return ChannelWhatsApp, nil
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

// CampaignStatus is the campaign lifecycle state. Transitions are monotonic:
// DRAFT/SCHEDULED -> SENDING -> SENT|FAILED.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "DRAFT"
	CampaignScheduled CampaignStatus = "SCHEDULED"
	CampaignSending   CampaignStatus = "SENDING"
	CampaignSent      CampaignStatus = "SENT"
	CampaignFailed    CampaignStatus = "FAILED"
)

// Terminal reports whether no further status transition may occur.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignSent || s == CampaignFailed
}

// ParseCampaignStatus normalizes an external status representation to the
// canonical enum.
func ParseCampaignStatus(s string) (CampaignStatus, error) {
	switch CampaignStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case CampaignDraft:
		return CampaignDraft, nil
	case CampaignScheduled:
		return CampaignScheduled, nil
	case CampaignSending:
		return CampaignSending, nil
	case CampaignSent:
		return CampaignSent, nil
	case CampaignFailed:
		return CampaignFailed, nil
	}
	return "", fmt.Errorf("unknown campaign status %q", s)
}

type Campaign struct {
	ID                 string         `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	Channel            Channel        `db:"channel" json:"channel"`
	Subject            *string        `db:"subject" json:"subject,omitempty"`
	EmailTemplateID    *string        `db:"email_template_id" json:"email_template_id,omitempty"`
	WhatsAppTemplateID *string        `db:"whatsapp_template_id" json:"whatsapp_template_id,omitempty"`
	GroupID            string         `db:"group_id" json:"group_id"`
	Status             CampaignStatus `db:"status" json:"status"`
	ScheduledAt        *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
	SentAt             *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	LastError          string         `db:"last_error" json:"last_error,omitempty"`
	CreatedBy          string         `db:"created_by" json:"created_by"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// TemplateID returns the template reference for the campaign's channel.
func (c *Campaign) TemplateID() string {
	switch c.Channel {
	case ChannelEmail:
		if c.EmailTemplateID != nil {
			return *c.EmailTemplateID
		}
	case ChannelWhatsApp:
		if c.WhatsAppTemplateID != nil {
			return *c.WhatsAppTemplateID
		}
	}
	return ""
}
