package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/apexmark/campaign-console/internal/config"
	apperrors "github.com/apexmark/campaign-console/internal/errors"
)

const bulkWhatsAppPath = "/whatsapp/whatsapp-outbound-message/bulk/"

// MSG91Client sends WhatsApp messages through the MSG91 bulk outbound API.
type MSG91Client struct {
	baseURL          string
	apiKey           string
	integratedNumber string
	httpClient       *http.Client
	logger           *zap.Logger
}

// NewMSG91Client builds the WhatsApp adapter. A missing API key fails here,
// at construction, not silently at send time.
func NewMSG91Client(cfg config.MSG91Config, log *zap.Logger) (*MSG91Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("msg91: api key is required")
	}
	if cfg.IntegratedNumber == "" {
		return nil, fmt.Errorf("msg91: integrated number is required")
	}
	return &MSG91Client{
		baseURL:          cfg.BaseURL,
		apiKey:           cfg.APIKey,
		integratedNumber: cfg.IntegratedNumber,
		httpClient:       &http.Client{Timeout: cfg.Timeout()},
		logger:           log,
	}, nil
}

type msg91Payload struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type msg91BulkRequest struct {
	IntegratedNumber string         `json:"integrated_number"`
	ContentType      string         `json:"content_type"`
	Payload          []msg91Payload `json:"payload"`
}

type msg91BulkResponse struct {
	RequestID string `json:"request_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// SendBulk posts all messages in one request. Non-2xx responses and
// transport failures come back as *apperrors.ProviderError.
func (c *MSG91Client) SendBulk(ctx context.Context, messages []Message) (*Result, error) {
	reqBody := msg91BulkRequest{
		IntegratedNumber: c.integratedNumber,
		ContentType:      "template",
		Payload:          make([]msg91Payload, 0, len(messages)),
	}
	for _, m := range messages {
		reqBody.Payload = append(reqBody.Payload, msg91Payload{
			To:   m.To,
			Type: "text",
			Text: m.Body,
		})
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("msg91: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+bulkWhatsAppPath, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("msg91: build request: %w", err)
	}
	req.Header.Set("Authkey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperrors.ProviderError{Provider: "msg91", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.ProviderError{
			Provider:   "msg91",
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var parsed msg91BulkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Acceptance is implied by the 2xx; response body shape varies.
		c.logger.Warn("msg91 response not parseable", zap.Error(err))
	}

	c.logger.Info("msg91 bulk send accepted",
		zap.Int("messages", len(messages)),
		zap.String("request_id", parsed.RequestID),
	)

	return &Result{RequestID: parsed.RequestID, Accepted: len(messages)}, nil
}
