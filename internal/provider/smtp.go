package provider

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/apexmark/campaign-console/internal/config"
	apperrors "github.com/apexmark/campaign-console/internal/errors"
)

// SMTPSender delivers email campaigns over a single SMTP relay. The relay
// accepts the whole batch or the dispatch fails; the first rejected message
// aborts the batch, matching the bulk-call-as-atomic-outcome contract.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger

	// sendMail is swapped in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.SMTPConfig, log *zap.Logger) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp: host and from address are required")
	}
	return &SMTPSender{cfg: cfg, logger: log, sendMail: smtp.SendMail}, nil
}

func (s *SMTPSender) SendBulk(ctx context.Context, messages []Message) (*Result, error) {
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	for i, m := range messages {
		if err := ctx.Err(); err != nil {
			return nil, &apperrors.ProviderError{Provider: "smtp", Message: err.Error()}
		}
		if err := s.sendMail(s.cfg.Addr(), auth, s.cfg.From, []string{m.To}, buildMIMEMessage(s.cfg.From, m)); err != nil {
			return nil, &apperrors.ProviderError{
				Provider: "smtp",
				Message:  fmt.Sprintf("message %d/%d to %s: %v", i+1, len(messages), m.To, err),
			}
		}
	}

	s.logger.Info("smtp batch delivered", zap.Int("messages", len(messages)))
	return &Result{Accepted: len(messages)}, nil
}

// buildMIMEMessage assembles an HTML email; template bodies are stored as
// HTML strings.
func buildMIMEMessage(from string, m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	return []byte(b.String())
}
