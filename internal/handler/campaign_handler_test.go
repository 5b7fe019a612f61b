package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apexmark/campaign-console/internal/audience"
	apperrors "github.com/apexmark/campaign-console/internal/errors"
	"github.com/apexmark/campaign-console/internal/events"
	"github.com/apexmark/campaign-console/internal/model"
	"github.com/apexmark/campaign-console/internal/provider"
	"github.com/apexmark/campaign-console/internal/service"
)

// In-memory repositories backing the router under test.

type memSubscriberRepo struct {
	subscribers map[string]*model.Subscriber
	groups      map[string][]string // group id -> subscriber ids
}

func (r *memSubscriberRepo) Create(_ context.Context, s *model.Subscriber) error {
	if s.ID == "" {
		s.ID = "sub-" + s.Email
	}
	r.subscribers[s.ID] = s
	return nil
}

func (r *memSubscriberRepo) GetByID(_ context.Context, id string) (*model.Subscriber, error) {
	s, ok := r.subscribers[id]
	if !ok {
		return nil, apperrors.NewNotFound("subscriber", id)
	}
	return s, nil
}

func (r *memSubscriberRepo) List(_ context.Context) ([]model.Subscriber, error) {
	out := []model.Subscriber{}
	for _, s := range r.subscribers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memSubscriberRepo) Update(_ context.Context, s *model.Subscriber) error {
	if _, ok := r.subscribers[s.ID]; !ok {
		return apperrors.NewNotFound("subscriber", s.ID)
	}
	r.subscribers[s.ID] = s
	return nil
}

func (r *memSubscriberRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.subscribers[id]; !ok {
		return apperrors.NewNotFound("subscriber", id)
	}
	delete(r.subscribers, id)
	return nil
}

func (r *memSubscriberRepo) ListByGroup(_ context.Context, groupID string) ([]model.Subscriber, error) {
	out := []model.Subscriber{}
	for _, id := range r.groups[groupID] {
		if s, ok := r.subscribers[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memGroupRepo struct {
	groups  map[string]*model.Group
	members *memSubscriberRepo
}

func (r *memGroupRepo) Create(_ context.Context, g *model.Group) error {
	if g.ID == "" {
		g.ID = "grp-" + g.Name
	}
	r.groups[g.ID] = g
	return nil
}

func (r *memGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, apperrors.NewNotFound("group", id)
	}
	return g, nil
}

func (r *memGroupRepo) List(_ context.Context) ([]model.Group, error) {
	out := []model.Group{}
	for _, g := range r.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (r *memGroupRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.groups[id]; !ok {
		return apperrors.NewNotFound("group", id)
	}
	delete(r.groups, id)
	return nil
}

func (r *memGroupRepo) AddSubscriber(_ context.Context, groupID, subscriberID string) error {
	r.members.groups[groupID] = append(r.members.groups[groupID], subscriberID)
	return nil
}

func (r *memGroupRepo) RemoveSubscriber(_ context.Context, groupID, subscriberID string) error {
	kept := []string{}
	for _, id := range r.members.groups[groupID] {
		if id != subscriberID {
			kept = append(kept, id)
		}
	}
	r.members.groups[groupID] = kept
	return nil
}

type memTemplateRepo struct {
	email    map[string]*model.EmailTemplate
	whatsapp map[string]*model.WhatsAppTemplate
}

func (r *memTemplateRepo) CreateEmail(_ context.Context, t *model.EmailTemplate) error {
	if t.ID == "" {
		t.ID = "et-" + t.Name
	}
	r.email[t.ID] = t
	return nil
}

func (r *memTemplateRepo) GetEmailByID(_ context.Context, id string) (*model.EmailTemplate, error) {
	t, ok := r.email[id]
	if !ok {
		return nil, apperrors.NewNotFound("email template", id)
	}
	return t, nil
}

func (r *memTemplateRepo) ListEmail(_ context.Context) ([]model.EmailTemplate, error) {
	out := []model.EmailTemplate{}
	for _, t := range r.email {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTemplateRepo) DeleteEmail(_ context.Context, id string) error {
	if _, ok := r.email[id]; !ok {
		return apperrors.NewNotFound("email template", id)
	}
	delete(r.email, id)
	return nil
}

func (r *memTemplateRepo) CreateWhatsApp(_ context.Context, t *model.WhatsAppTemplate) error {
	if t.ID == "" {
		t.ID = "wt-" + t.Name
	}
	r.whatsapp[t.ID] = t
	return nil
}

func (r *memTemplateRepo) GetWhatsAppByID(_ context.Context, id string) (*model.WhatsAppTemplate, error) {
	t, ok := r.whatsapp[id]
	if !ok {
		return nil, apperrors.NewNotFound("whatsapp template", id)
	}
	return t, nil
}

func (r *memTemplateRepo) ListWhatsApp(_ context.Context) ([]model.WhatsAppTemplate, error) {
	out := []model.WhatsAppTemplate{}
	for _, t := range r.whatsapp {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTemplateRepo) DeleteWhatsApp(_ context.Context, id string) error {
	if _, ok := r.whatsapp[id]; !ok {
		return apperrors.NewNotFound("whatsapp template", id)
	}
	delete(r.whatsapp, id)
	return nil
}

type memCampaignRepo struct {
	campaigns map[string]*model.Campaign
	seq       int
}

func (r *memCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	r.seq++
	if c.ID == "" {
		c.ID = "camp-" + string(rune('0'+r.seq))
	}
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *memCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, apperrors.NewNotFound("campaign", id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCampaignRepo) List(_ context.Context, offset, limit int, channel, status string) ([]model.Campaign, int, error) {
	out := []model.Campaign{}
	for _, c := range r.campaigns {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *memCampaignRepo) UpdateStatus(_ context.Context, id string, status model.CampaignStatus) error {
	c, ok := r.campaigns[id]
	if !ok {
		return apperrors.NewNotFound("campaign", id)
	}
	c.Status = status
	return nil
}

func (r *memCampaignRepo) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	c := r.campaigns[id]
	c.Status = model.CampaignSent
	c.SentAt = &sentAt
	c.LastError = ""
	return nil
}

func (r *memCampaignRepo) MarkFailed(_ context.Context, id string, detail string) error {
	c := r.campaigns[id]
	c.Status = model.CampaignFailed
	c.LastError = detail
	return nil
}

func (r *memCampaignRepo) ClaimDue(_ context.Context, now time.Time) ([]string, error) {
	return nil, nil
}

func (r *memCampaignRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.campaigns[id]; !ok {
		return apperrors.NewNotFound("campaign", id)
	}
	delete(r.campaigns, id)
	return nil
}

type stubSender struct {
	calls int
	err   error
}

func (s *stubSender) SendBulk(_ context.Context, messages []provider.Message) (*provider.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &provider.Result{Accepted: len(messages)}, nil
}

type testEnv struct {
	router      chi.Router
	subscribers *memSubscriberRepo
	groups      *memGroupRepo
	templates   *memTemplateRepo
	campaigns   *memCampaignRepo
	whatsapp    *stubSender
	email       *stubSender
}

func newTestEnv() *testEnv {
	subscribers := &memSubscriberRepo{
		subscribers: map[string]*model.Subscriber{},
		groups:      map[string][]string{},
	}
	env := &testEnv{
		subscribers: subscribers,
		groups:      &memGroupRepo{groups: map[string]*model.Group{}, members: subscribers},
		templates: &memTemplateRepo{
			email:    map[string]*model.EmailTemplate{},
			whatsapp: map[string]*model.WhatsAppTemplate{},
		},
		campaigns: &memCampaignRepo{campaigns: map[string]*model.Campaign{}},
		whatsapp:  &stubSender{},
		email:     &stubSender{},
	}

	svc := &service.CampaignService{
		Campaigns: env.campaigns,
		Groups:    env.groups,
		Templates: env.templates,
		Audience:  audience.NewResolver(env.subscribers),
		Senders: map[model.Channel]provider.Sender{
			model.ChannelWhatsApp: env.whatsapp,
			model.ChannelEmail:    env.email,
		},
		Events: events.NopPublisher{},
		Logger: zap.NewNop(),
	}

	env.router = NewRouter(svc, env.subscribers, env.groups, env.templates)
	return env
}

func (e *testEnv) seedWhatsAppCampaignFixtures(t *testing.T) {
	t.Helper()
	e.groups.groups["vip"] = &model.Group{ID: "vip", Name: "VIP"}
	e.templates.whatsapp["wt1"] = &model.WhatsAppTemplate{ID: "wt1", Name: "welcome", Content: "Hi {{name}}"}
	e.subscribers.subscribers["s1"] = &model.Subscriber{
		ID: "s1", Email: "a@x.com", Phone: "+1555",
		Status: model.SubscriberActive, WhatsAppOptIn: true,
	}
	e.subscribers.groups["vip"] = []string{"s1"}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateCampaignEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedWhatsAppCampaignFixtures(t)

	rec := env.do(t, http.MethodPost, "/campaigns", map[string]any{
		"name":                 "Launch",
		"type":                 "whatsapp",
		"whatsapp_template_id": "wt1",
		"group_id":             "vip",
		"schedule_type":        "now",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "SENT", body["status"])
	assert.Equal(t, 1, env.whatsapp.calls)
}

func TestCreateCampaignEndpointValidation(t *testing.T) {
	env := newTestEnv()
	env.seedWhatsAppCampaignFixtures(t)

	rec := env.do(t, http.MethodPost, "/campaigns", map[string]any{
		"type":                 "whatsapp",
		"whatsapp_template_id": "wt1",
		"group_id":             "vip",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "name")
	assert.Empty(t, env.campaigns.campaigns)
}

func TestCreateCampaignEndpointUnknownGroup(t *testing.T) {
	env := newTestEnv()
	env.seedWhatsAppCampaignFixtures(t)

	rec := env.do(t, http.MethodPost, "/campaigns", map[string]any{
		"name":                 "Launch",
		"type":                 "whatsapp",
		"whatsapp_template_id": "wt1",
		"group_id":             "ghost",
		"schedule_type":        "now",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendCampaignEndpoint(t *testing.T) {
	env := newTestEnv()
	env.seedWhatsAppCampaignFixtures(t)
	wt := "wt1"
	env.campaigns.campaigns["c1"] = &model.Campaign{
		ID: "c1", Channel: model.ChannelWhatsApp, WhatsAppTemplateID: &wt,
		GroupID: "vip", Status: model.CampaignDraft,
	}

	rec := env.do(t, http.MethodPost, "/campaigns/c1/send", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "SENT", body["status"])
}

func TestSendCampaignEndpointMissing(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/campaigns/ghost/send", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendCampaignEndpointProviderFailure(t *testing.T) {
	env := newTestEnv()
	env.seedWhatsAppCampaignFixtures(t)
	env.whatsapp.err = &apperrors.ProviderError{Provider: "msg91", StatusCode: 503, Message: "unavailable"}
	wt := "wt1"
	env.campaigns.campaigns["c1"] = &model.Campaign{
		ID: "c1", Channel: model.ChannelWhatsApp, WhatsAppTemplateID: &wt,
		GroupID: "vip", Status: model.CampaignDraft,
	}

	rec := env.do(t, http.MethodPost, "/campaigns/c1/send", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "FAILED", body["status"])
	assert.Contains(t, body["error"], "msg91")
	assert.Equal(t, model.CampaignFailed, env.campaigns.campaigns["c1"].Status)
}

func TestListCampaignsEndpoint(t *testing.T) {
	env := newTestEnv()
	env.campaigns.campaigns["c1"] = &model.Campaign{ID: "c1", Status: model.CampaignSent}

	rec := env.do(t, http.MethodGet, "/campaigns?page=1&page_size=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["data"], 1)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["total_count"])
}

func TestDeleteCampaignEndpoint(t *testing.T) {
	env := newTestEnv()
	env.campaigns.campaigns["c1"] = &model.Campaign{ID: "c1"}

	rec := env.do(t, http.MethodDelete, "/campaigns/c1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/campaigns/c1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
