// The scheduler fires due SCHEDULED campaigns. It polls on an interval and
// claims candidates with a conditional update, so running more than one
// instance cannot double-send a campaign.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/apexmark/campaign-console/internal/audience"
	"github.com/apexmark/campaign-console/internal/config"
	"github.com/apexmark/campaign-console/internal/db"
	"github.com/apexmark/campaign-console/internal/events"
	"github.com/apexmark/campaign-console/internal/logger"
	"github.com/apexmark/campaign-console/internal/model"
	"github.com/apexmark/campaign-console/internal/provider"
	"github.com/apexmark/campaign-console/internal/repository"
	"github.com/apexmark/campaign-console/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer conn.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}
	subscriberRepo := &repository.SubscriberRepository{DB: conn}
	groupRepo := &repository.GroupRepository{DB: conn}
	templateRepo := &repository.TemplateRepository{DB: conn}

	whatsappSender, err := provider.NewMSG91Client(cfg.MSG91, log)
	if err != nil {
		log.Fatal("msg91 adapter init failed", zap.Error(err))
	}
	emailSender, err := provider.NewSMTPSender(cfg.SMTP, log)
	if err != nil {
		log.Fatal("smtp adapter init failed", zap.Error(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, log)
		if err != nil {
			log.Fatal("amqp connect failed", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	campaignService := &service.CampaignService{
		Campaigns: campaignRepo,
		Groups:    groupRepo,
		Templates: templateRepo,
		Audience:  audience.NewResolver(subscriberRepo),
		Senders: map[model.Channel]provider.Sender{
			model.ChannelWhatsApp: whatsappSender,
			model.ChannelEmail:    emailSender,
		},
		Events: publisher,
		Logger: log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	interval := cfg.Scheduler.Interval()
	log.Info("scheduler running", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		case <-ticker.C:
			claimed, err := campaignService.DispatchDue(ctx, time.Now().UTC())
			if err != nil {
				log.Error("claim due campaigns failed", zap.Error(err))
				continue
			}
			if claimed > 0 {
				log.Info("dispatched due campaigns", zap.Int("count", claimed))
			}
		}
	}
}
