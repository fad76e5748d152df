package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"relaybot/internal/config"
	"relaybot/internal/domain"
)

const senderHTTPTimeout = 30 * time.Second

// Sender delivers text messages through Evolution API's sendText endpoint.
// Single attempt per call, no retries; the remote error propagates unchanged
// as *domain.DeliveryError.
type Sender struct {
	cfg    config.EvolutionConfig
	client *http.Client
	logger *slog.Logger
}

func NewSender(cfg config.EvolutionConfig, logger *slog.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: senderHTTPTimeout},
		logger: logger,
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// Send posts one message to the gateway. The decoration suffix is stripped
// here, exactly once, so recipientID may be a raw or an already-clean JID.
func (s *Sender) Send(ctx context.Context, recipientID string, text string) error {
	if s.cfg.BaseURL == "" || s.cfg.APIKey == "" || s.cfg.Instance == "" {
		return &domain.DeliveryError{Status: 0, Body: "gateway credentials not configured"}
	}

	number := StripJID(recipientID)

	body, err := json.Marshal(sendTextRequest{Number: number, Text: text})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", s.cfg.BaseURL, s.cfg.Instance)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return &domain.DeliveryError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.DeliveryError{Status: resp.StatusCode, Body: string(respBody)}
	}

	s.logger.Info("message delivered", "to", number, "text_len", len(text))
	return nil
}
