package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/model"
)

// SubscriberRepositoryInterface defines the subscriber reads and writes used
// by the handlers and the audience resolver.
type SubscriberRepositoryInterface interface {
	Create(ctx context.Context, s *model.Subscriber) error
	GetByID(ctx context.Context, id string) (*model.Subscriber, error)
	List(ctx context.Context) ([]model.Subscriber, error)
	Update(ctx context.Context, s *model.Subscriber) error
	Delete(ctx context.Context, id string) error
	ListByGroup(ctx context.Context, groupID string) ([]model.Subscriber, error)
}

type SubscriberRepository struct {
	DB *sql.DB
}

const subscriberColumns = `id, email, phone, first_name, last_name, status, whatsapp_opt_in, created_at, updated_at`

func (r *SubscriberRepository) Create(ctx context.Context, s *model.Subscriber) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = model.SubscriberActive
	}
	s.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO subscribers (id, email, phone, first_name, last_name, status, whatsapp_opt_in, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.ExecContext(ctx, query,
		s.ID, s.Email, s.Phone, s.FirstName, s.LastName, s.Status, s.WhatsAppOptIn, s.CreatedAt,
	)
	return err
}

func (r *SubscriberRepository) GetByID(ctx context.Context, id string) (*model.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1`

	var s model.Subscriber
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Email, &s.Phone, &s.FirstName, &s.LastName, &s.Status, &s.WhatsAppOptIn, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("subscriber", id)
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubscriberRepository) List(ctx context.Context) ([]model.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers ORDER BY created_at DESC`
	return r.querySubscribers(ctx, query)
}

func (r *SubscriberRepository) Update(ctx context.Context, s *model.Subscriber) error {
	query := `
        UPDATE subscribers
        SET email=$1, phone=$2, first_name=$3, last_name=$4, status=$5, whatsapp_opt_in=$6, updated_at=NOW()
        WHERE id=$7
    `
	res, err := r.DB.ExecContext(ctx, query,
		s.Email, s.Phone, s.FirstName, s.LastName, s.Status, s.WhatsAppOptIn, s.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound("subscriber", s.ID)
	}
	return nil
}

func (r *SubscriberRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM subscribers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound("subscriber", id)
	}
	return nil
}

// ListByGroup returns the current members of a group, any status. Channel
// eligibility filtering happens in the audience resolver.
func (r *SubscriberRepository) ListByGroup(ctx context.Context, groupID string) ([]model.Subscriber, error) {
	query := `
        SELECT s.id, s.email, s.phone, s.first_name, s.last_name, s.status, s.whatsapp_opt_in, s.created_at, s.updated_at
        FROM subscribers s
        JOIN group_subscribers gs ON gs.subscriber_id = s.id
        WHERE gs.group_id = $1
    `
	return r.querySubscribers(ctx, query, groupID)
}

func (r *SubscriberRepository) querySubscribers(ctx context.Context, query string, args ...any) ([]model.Subscriber, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []model.Subscriber{}
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(
			&s.ID, &s.Email, &s.Phone, &s.FirstName, &s.LastName, &s.Status, &s.WhatsAppOptIn, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
