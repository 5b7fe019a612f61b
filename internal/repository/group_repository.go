package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/model"
)

type GroupRepositoryInterface interface {
	Create(ctx context.Context, g *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	List(ctx context.Context) ([]model.Group, error)
	Delete(ctx context.Context, id string) error
	AddSubscriber(ctx context.Context, groupID, subscriberID string) error
	RemoveSubscriber(ctx context.Context, groupID, subscriberID string) error
}

type GroupRepository struct {
	DB *sql.DB
}

func (r *GroupRepository) Create(ctx context.Context, g *model.Group) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO user_groups (id, name, description, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.DB.ExecContext(ctx, query, g.ID, g.Name, g.Description, g.CreatedBy, g.CreatedAt)
	return err
}

func (r *GroupRepository) GetByID(ctx context.Context, id string) (*model.Group, error) {
	query := `
        SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at,
               (SELECT COUNT(*) FROM group_subscribers gs WHERE gs.group_id = g.id)
        FROM user_groups g
        WHERE g.id = $1
    `
	var g model.Group
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt, &g.SubscriberCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("group", id)
		}
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) List(ctx context.Context) ([]model.Group, error) {
	query := `
        SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at,
               (SELECT COUNT(*) FROM group_subscribers gs WHERE gs.group_id = g.id)
        FROM user_groups g
        ORDER BY g.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt, &g.SubscriberCount,
		); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM user_groups WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound("group", id)
	}
	return nil
}

// AddSubscriber is idempotent; the (group_id, subscriber_id) pair is unique.
func (r *GroupRepository) AddSubscriber(ctx context.Context, groupID, subscriberID string) error {
	query := `
        INSERT INTO group_subscribers (id, group_id, subscriber_id, created_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (group_id, subscriber_id) DO NOTHING
    `
	_, err := r.DB.ExecContext(ctx, query, uuid.NewString(), groupID, subscriberID)
	return err
}

func (r *GroupRepository) RemoveSubscriber(ctx context.Context, groupID, subscriberID string) error {
	query := `DELETE FROM group_subscribers WHERE group_id=$1 AND subscriber_id=$2`
	_, err := r.DB.ExecContext(ctx, query, groupID, subscriberID)
	return err
}

var _ GroupRepositoryInterface = (*GroupRepository)(nil)
