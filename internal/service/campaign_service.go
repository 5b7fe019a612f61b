package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apexmark/campaign-console/internal/audience"
	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/events"
	"github.com/apexmark/campaign-console/internal/model"
	"github.com/apexmark/campaign-console/internal/provider"
	"github.com/apexmark/campaign-console/internal/render"
	"github.com/apexmark/campaign-console/internal/repository"
)

const (
	ScheduleNow   = "now"
	ScheduleLater = "later"
)

// CampaignService owns the campaign lifecycle. It validates creation input,
// persists rows, and orchestrates dispatch: audience resolution, rendering,
// the bulk provider call, and the terminal status write. Every dispatch ends
// in SENT or FAILED; errors are recorded on the row, never left as SENDING.
type CampaignService struct {
	Campaigns repository.CampaignRepositoryInterface
	Groups    repository.GroupRepositoryInterface
	Templates repository.TemplateRepositoryInterface
	Audience  *audience.Resolver
	Senders   map[model.Channel]provider.Sender
	Events    events.Publisher
	Logger    *zap.Logger
}

type CreateCampaignInput struct {
	Name               string `json:"name"`
	Channel            string `json:"type"`
	Subject            string `json:"subject"`
	EmailTemplateID    string `json:"template_id"`
	WhatsAppTemplateID string `json:"whatsapp_template_id"`
	GroupID            string `json:"group_id"`
	ScheduleType       string `json:"schedule_type"`
	ScheduledAt        string `json:"scheduled_at"`
	CreatedBy          string `json:"created_by"`
}

// Create validates the input, verifies the referenced group and template
// exist, persists the campaign, and for immediate campaigns dispatches
// synchronously before returning. Validation and existence checks run before
// any insert so a rejected request leaves no orphan row. The returned
// campaign carries the resolved status; a dispatch failure is recorded on the
// row rather than returned as an error.
func (s *CampaignService) Create(ctx context.Context, input CreateCampaignInput) (*model.Campaign, error) {
	c, err := s.buildCampaign(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.Groups.GetByID(ctx, c.GroupID); err != nil {
		return nil, err
	}
	if err := s.checkTemplate(ctx, c); err != nil {
		return nil, err
	}

	if err := s.Campaigns.Create(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Info("campaign created",
		zap.String("campaign_id", c.ID),
		zap.String("channel", string(c.Channel)),
		zap.String("status", string(c.Status)),
	)

	if c.Status == model.CampaignSending {
		dispatched, err := s.Dispatch(ctx, c.ID)
		if err != nil {
			s.Logger.Warn("immediate dispatch failed",
				zap.String("campaign_id", c.ID),
				zap.Error(err),
			)
		}
		if dispatched != nil {
			c = dispatched
		}
	}

	return c, nil
}

func (s *CampaignService) buildCampaign(input CreateCampaignInput) (*model.Campaign, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidation("campaign name is required")
	}

	channel, err := model.ParseChannel(input.Channel)
	if err != nil {
		return nil, apperrors.NewValidation("invalid campaign type: %v", err)
	}

	if input.GroupID == "" {
		return nil, apperrors.NewValidation("group_id is required")
	}

	c := &model.Campaign{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Channel:   channel,
		GroupID:   input.GroupID,
		CreatedBy: input.CreatedBy,
	}

	switch channel {
	case model.ChannelEmail:
		if input.Subject == "" {
			return nil, apperrors.NewValidation("subject is required for email campaigns")
		}
		if input.EmailTemplateID == "" {
			return nil, apperrors.NewValidation("template_id is required for email campaigns")
		}
		if input.WhatsAppTemplateID != "" {
			return nil, apperrors.NewValidation("whatsapp_template_id must not be set for email campaigns")
		}
		subject := input.Subject
		c.Subject = &subject
		c.EmailTemplateID = &input.EmailTemplateID
	case model.ChannelWhatsApp:
		if input.WhatsAppTemplateID == "" {
			return nil, apperrors.NewValidation("whatsapp_template_id is required for whatsapp campaigns")
		}
		if input.EmailTemplateID != "" {
			return nil, apperrors.NewValidation("template_id must not be set for whatsapp campaigns")
		}
		c.WhatsAppTemplateID = &input.WhatsAppTemplateID
	}

	scheduleType := input.ScheduleType
	if scheduleType == "" {
		scheduleType = ScheduleNow
	}

	switch scheduleType {
	case ScheduleNow:
		c.Status = model.CampaignSending
	case ScheduleLater:
		if input.ScheduledAt == "" {
			return nil, apperrors.NewValidation("scheduled_at is required when schedule_type is later")
		}
		t, err := time.Parse(time.RFC3339, input.ScheduledAt)
		if err != nil {
			return nil, apperrors.NewValidation("scheduled_at must be an RFC3339 timestamp: %v", err)
		}
		if !t.After(time.Now()) {
			return nil, apperrors.NewValidation("scheduled_at must be in the future")
		}
		c.Status = model.CampaignScheduled
		c.ScheduledAt = &t
	default:
		return nil, apperrors.NewValidation("schedule_type must be %q or %q", ScheduleNow, ScheduleLater)
	}

	return c, nil
}

func (s *CampaignService) checkTemplate(ctx context.Context, c *model.Campaign) error {
	switch c.Channel {
	case model.ChannelEmail:
		_, err := s.Templates.GetEmailByID(ctx, *c.EmailTemplateID)
		return err
	case model.ChannelWhatsApp:
		_, err := s.Templates.GetWhatsAppByID(ctx, *c.WhatsAppTemplateID)
		return err
	}
	return nil
}

// Dispatch runs one campaign to a terminal state. On any delivery failure the
// campaign is marked FAILED with the error detail before the error is
// returned, so the caller sees the failure but the row is never stuck in
// SENDING.
func (s *CampaignService) Dispatch(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := s.Campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status.Terminal() {
		return nil, apperrors.NewValidation("campaign %s is already %s", c.ID, c.Status)
	}

	if c.Status != model.CampaignSending {
		if err := s.Campaigns.UpdateStatus(ctx, c.ID, model.CampaignSending); err != nil {
			return nil, err
		}
		c.Status = model.CampaignSending
	}

	if err := s.deliver(ctx, c); err != nil {
		detail := err.Error()
		if markErr := s.Campaigns.MarkFailed(ctx, c.ID, detail); markErr != nil {
			s.Logger.Error("failed to record campaign failure",
				zap.String("campaign_id", c.ID),
				zap.Error(markErr),
			)
		}
		c.Status = model.CampaignFailed
		c.LastError = detail
		s.publish(c, detail)
		return c, err
	}

	sentAt := time.Now().UTC()
	if err := s.Campaigns.MarkSent(ctx, c.ID, sentAt); err != nil {
		return nil, err
	}
	c.Status = model.CampaignSent
	c.SentAt = &sentAt
	c.LastError = ""
	s.publish(c, "")

	s.Logger.Info("campaign dispatched", zap.String("campaign_id", c.ID))
	return c, nil
}

// deliver is the fallible middle of dispatch: resolve, render, send.
func (s *CampaignService) deliver(ctx context.Context, c *model.Campaign) error {
	recipients, err := s.Audience.Resolve(ctx, c.GroupID, c.Channel)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return &apperrors.NoEligibleRecipientsError{CampaignID: c.ID, Channel: string(c.Channel)}
	}

	body, subject, err := s.templateBody(ctx, c)
	if err != nil {
		return err
	}

	messages := make([]provider.Message, 0, len(recipients))
	for _, r := range recipients {
		vars := render.RecipientVars(r)
		to := r.Email
		if c.Channel == model.ChannelWhatsApp {
			to = r.Phone
		}
		messages = append(messages, provider.Message{
			To:      to,
			Subject: render.Render(subject, vars),
			Body:    render.Render(body, vars),
		})
	}

	sender, ok := s.Senders[c.Channel]
	if !ok {
		return &apperrors.ProviderError{
			Provider: string(c.Channel),
			Message:  "no sender configured for channel",
		}
	}

	result, err := sender.SendBulk(ctx, messages)
	if err != nil {
		return err
	}

	s.Logger.Info("bulk send accepted",
		zap.String("campaign_id", c.ID),
		zap.Int("recipients", result.Accepted),
		zap.String("request_id", result.RequestID),
	)
	return nil
}

func (s *CampaignService) templateBody(ctx context.Context, c *model.Campaign) (body, subject string, err error) {
	switch c.Channel {
	case model.ChannelEmail:
		t, err := s.Templates.GetEmailByID(ctx, *c.EmailTemplateID)
		if err != nil {
			return "", "", err
		}
		subject := t.Subject
		if c.Subject != nil && *c.Subject != "" {
			subject = *c.Subject
		}
		return t.Content, subject, nil
	case model.ChannelWhatsApp:
		t, err := s.Templates.GetWhatsAppByID(ctx, *c.WhatsAppTemplateID)
		if err != nil {
			return "", "", err
		}
		return t.Content, "", nil
	}
	return "", "", apperrors.NewValidation("unknown channel %q", c.Channel)
}

func (s *CampaignService) publish(c *model.Campaign, detail string) {
	event := events.CampaignEvent{
		CampaignID: c.ID,
		Status:     c.Status,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.Publish(event); err != nil {
		s.Logger.Warn("campaign event publish failed",
			zap.String("campaign_id", c.ID),
			zap.Error(err),
		)
	}
}

// List fetches campaigns with pagination and optional channel/status filters.
// Filters are normalized to the canonical enums; unknown values are rejected.
func (s *CampaignService) List(ctx context.Context, page, pageSize int, channel, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	if channel != "" {
		ch, err := model.ParseChannel(channel)
		if err != nil {
			return nil, nil, apperrors.NewValidation("invalid channel filter: %v", err)
		}
		channel = string(ch)
	}
	if status != "" {
		st, err := model.ParseCampaignStatus(status)
		if err != nil {
			return nil, nil, apperrors.NewValidation("invalid status filter: %v", err)
		}
		status = string(st)
	}

	campaigns, total, err := s.Campaigns.List(ctx, offset, pageSize, channel, status)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) Get(ctx context.Context, id string) (*model.Campaign, error) {
	return s.Campaigns.GetByID(ctx, id)
}

func (s *CampaignService) Delete(ctx context.Context, id string) error {
	return s.Campaigns.Delete(ctx, id)
}
