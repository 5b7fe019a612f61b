package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/apexmark/campaign-console/internal/repository"
	"github.com/apexmark/campaign-console/internal/service"
)

// NewRouter wires every handler onto one chi router.
func NewRouter(
	campaignService *service.CampaignService,
	subscribers repository.SubscriberRepositoryInterface,
	groups repository.GroupRepositoryInterface,
	templates repository.TemplateRepositoryInterface,
) chi.Router {
	campaignHandler := &CampaignHandler{Service: campaignService}
	subscriberHandler := &SubscriberHandler{Repo: subscribers}
	groupHandler := &GroupHandler{Groups: groups, Subscribers: subscribers}
	templateHandler := &TemplateHandler{Repo: templates}

	r := chi.NewRouter()

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", campaignHandler.Create)
		r.Get("/", campaignHandler.List)
		r.Get("/{id}", campaignHandler.Get)
		r.Delete("/{id}", campaignHandler.Delete)
		r.Post("/{id}/send", campaignHandler.Send)
	})

	r.Route("/subscribers", func(r chi.Router) {
		r.Post("/", subscriberHandler.Create)
		r.Get("/", subscriberHandler.List)
		r.Get("/{id}", subscriberHandler.Get)
		r.Put("/{id}", subscriberHandler.Update)
		r.Delete("/{id}", subscriberHandler.Delete)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Post("/", groupHandler.Create)
		r.Get("/", groupHandler.List)
		r.Get("/{id}", groupHandler.Get)
		r.Delete("/{id}", groupHandler.Delete)
		r.Post("/{id}/subscribers/{subscriberID}", groupHandler.AddSubscriber)
		r.Delete("/{id}/subscribers/{subscriberID}", groupHandler.RemoveSubscriber)
	})

	r.Route("/email_templates", func(r chi.Router) {
		r.Post("/", templateHandler.CreateEmail)
		r.Get("/", templateHandler.ListEmail)
		r.Get("/{id}", templateHandler.GetEmail)
		r.Delete("/{id}", templateHandler.DeleteEmail)
	})

	r.Route("/whatsapp_templates", func(r chi.Router) {
		r.Post("/", templateHandler.CreateWhatsApp)
		r.Get("/", templateHandler.ListWhatsApp)
		r.Get("/{id}", templateHandler.GetWhatsApp)
		r.Delete("/{id}", templateHandler.DeleteWhatsApp)
	})

	return r
}
