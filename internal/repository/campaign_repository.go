package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context, offset, limit int, channel, status string) ([]model.Campaign, int, error)
	UpdateStatus(ctx context.Context, id string, status model.CampaignStatus) error
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, detail string) error
	ClaimDue(ctx context.Context, now time.Time) ([]string, error)
	Delete(ctx context.Context, id string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, name, channel, subject, email_template_id, whatsapp_template_id,
       group_id, status, scheduled_at, sent_at, last_error, created_by, created_at, updated_at`

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	c.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO campaigns (id, name, channel, subject, email_template_id, whatsapp_template_id,
                               group_id, status, scheduled_at, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Name, c.Channel, c.Subject, c.EmailTemplateID, c.WhatsAppTemplateID,
		c.GroupID, c.Status, c.ScheduledAt, c.CreatedBy, c.CreatedAt,
	)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	var c model.Campaign
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Channel, &c.Subject, &c.EmailTemplateID, &c.WhatsAppTemplateID,
		&c.GroupID, &c.Status, &c.ScheduledAt, &c.SentAt, &c.LastError, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("campaign", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) List(ctx context.Context, offset, limit int, channel, status string) ([]model.Campaign, int, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []any{}
	argPos := 1

	if channel != "" {
		query += fmt.Sprintf(" AND channel=$%d", argPos)
		args = append(args, channel)
		argPos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Channel, &c.Subject, &c.EmailTemplateID, &c.WhatsAppTemplateID,
			&c.GroupID, &c.Status, &c.ScheduledAt, &c.SentAt, &c.LastError, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	countArgs := []any{}
	countPos := 1
	if channel != "" {
		countQuery += fmt.Sprintf(" AND channel=$%d", countPos)
		countArgs = append(countArgs, channel)
		countPos++
	}
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", countPos)
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id string, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.ExecContext(ctx, query, status, id)
	return err
}

// MarkSent is the terminal success write: status and sent_at in one
// statement, clearing any stale error detail.
func (r *CampaignRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE campaigns SET status=$1, sent_at=$2, last_error='', updated_at=NOW() WHERE id=$3`
	_, err := r.DB.ExecContext(ctx, query, model.CampaignSent, sentAt, id)
	return err
}

// MarkFailed is the terminal failure write; detail is the recorded dispatch
// error surfaced to callers.
func (r *CampaignRepository) MarkFailed(ctx context.Context, id string, detail string) error {
	query := `UPDATE campaigns SET status=$1, last_error=$2, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.ExecContext(ctx, query, model.CampaignFailed, detail, id)
	return err
}

// ClaimDue transitions due SCHEDULED campaigns to SENDING and returns their
// ids. The conditional WHERE makes the claim idempotent: two concurrent
// scheduler ticks can never both claim the same campaign.
func (r *CampaignRepository) ClaimDue(ctx context.Context, now time.Time) ([]string, error) {
	query := `
        UPDATE campaigns
        SET status=$1, updated_at=NOW()
        WHERE status=$2 AND scheduled_at IS NOT NULL AND scheduled_at <= $3
        RETURNING id
    `
	rows, err := r.DB.QueryContext(ctx, query, model.CampaignSending, model.CampaignScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound("campaign", id)
	}
	return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
