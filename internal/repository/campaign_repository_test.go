package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/model"
)

func newCampaignRepo(t *testing.T) (*CampaignRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &CampaignRepository{DB: db}, mock
}

func campaignRows(c model.Campaign) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "channel", "subject", "email_template_id", "whatsapp_template_id",
		"group_id", "status", "scheduled_at", "sent_at", "last_error", "created_by", "created_at", "updated_at",
	}).AddRow(
		c.ID, c.Name, c.Channel, c.Subject, c.EmailTemplateID, c.WhatsAppTemplateID,
		c.GroupID, c.Status, c.ScheduledAt, c.SentAt, c.LastError, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
}

func TestCampaignRepositoryCreate(t *testing.T) {
	repo, mock := newCampaignRepo(t)

	wt := "wt1"
	c := &model.Campaign{
		Name:               "Launch",
		Channel:            model.ChannelWhatsApp,
		WhatsAppTemplateID: &wt,
		GroupID:            "vip",
		Status:             model.CampaignSending,
	}

	mock.ExpectExec("INSERT INTO campaigns").
		WithArgs(sqlmock.AnyArg(), c.Name, c.Channel, nil, nil, &wt,
			c.GroupID, c.Status, nil, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	assert.NotEmpty(t, c.ID, "id assigned when absent")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryGetByID(t *testing.T) {
	repo, mock := newCampaignRepo(t)

	want := model.Campaign{
		ID: "c1", Name: "Launch", Channel: model.ChannelWhatsApp,
		GroupID: "vip", Status: model.CampaignSent, CreatedAt: time.Now().UTC(),
	}
	mock.ExpectQuery("SELECT (.+) FROM campaigns WHERE id").
		WithArgs("c1").
		WillReturnRows(campaignRows(want))

	got, err := repo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Status, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newCampaignRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM campaigns WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCampaignRepositoryListWithFilters(t *testing.T) {
	repo, mock := newCampaignRepo(t)

	row := model.Campaign{ID: "c1", Channel: model.ChannelEmail, Status: model.CampaignSent}
	mock.ExpectQuery("SELECT (.+) FROM campaigns WHERE 1=1 AND channel=(.+) AND status=(.+) ORDER BY created_at DESC").
		WithArgs("EMAIL", "SENT", 20, 0).
		WillReturnRows(campaignRows(row))
	mock.ExpectQuery("SELECT COUNT(.+) FROM campaigns WHERE 1=1 AND channel=(.+) AND status=").
		WithArgs("EMAIL", "SENT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	campaigns, total, err := repo.List(context.Background(), 0, 20, "EMAIL", "SENT")
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryMarkSent(t *testing.T) {
	repo, mock := newCampaignRepo(t)

	sentAt := time.Now().UTC()
	mock.ExpectExec("UPDATE campaigns SET status=(.+), sent_at=(.+), last_error=''").
		WithArgs(model.CampaignSent, sentAt, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkSent(context.Background(), "c1", sentAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryMarkFailed(t *testing.T) {
	repo, mock := newCampaignRepo(t)

	mock.ExpectExec("UPDATE campaigns SET status=(.+), last_error=").
		WithArgs(model.CampaignFailed, "provider down", "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "c1", "provider down"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryClaimDue(t *testing.T) {
	repo, mock := newCampaignRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("UPDATE campaigns(.+)WHERE status=(.+)scheduled_at <=(.+)RETURNING id").
		WithArgs(model.CampaignSending, model.CampaignScheduled, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1").AddRow("c2"))

	ids, err := repo.ClaimDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryDelete(t *testing.T) {
	repo, mock := newCampaignRepo(t)

	mock.ExpectExec("DELETE FROM campaigns WHERE id=").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "c1"))

	mock.ExpectExec("DELETE FROM campaigns WHERE id=").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
