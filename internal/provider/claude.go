package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"relaybot/internal/config"
	"relaybot/internal/domain"
)

const (
	messagesPath       = "/v1/messages"
	claudeAPIVersion   = "2023-06-01"
	defaultHTTPTimeout = 120 * time.Second
)

// Claude calls the Anthropic Messages API for single-turn completions.
// When a knowledge-base reference (project) is configured, the scoped backend
// is tried first and any failure other than missing configuration falls back
// exactly once to the plain backend.
type Claude struct {
	cfg      config.ClaudeConfig
	system   string
	client   *http.Client
	logger   *slog.Logger
	backends []backend
}

func NewClaude(cfg config.ClaudeConfig, systemPrompt string, logger *slog.Logger) *Claude {
	c := &Claude{
		cfg:    cfg,
		system: systemPrompt,
		client: &http.Client{Timeout: defaultHTTPTimeout},
		logger: logger,
	}
	if cfg.ProjectID != "" {
		c.backends = append(c.backends, scopedBackend{project: cfg.ProjectID})
	}
	c.backends = append(c.backends, plainBackend{})
	return c
}

// backend is one strategy for assembling the completion request body.
type backend interface {
	name() string
	build(system, prompt string) claudeRequest
}

// plainBackend inlines the instructions and the question into a single user
// turn.
type plainBackend struct{}

func (plainBackend) name() string { return "plain" }

func (plainBackend) build(system, prompt string) claudeRequest {
	content := prompt
	if system != "" {
		content = fmt.Sprintf("%s\n\nCONSULTA DEL VECINO: %s\n\nResponde de manera útil y amigable:", system, prompt)
	}
	return claudeRequest{
		Messages: []claudeMsg{{Role: "user", Content: content}},
	}
}

// scopedBackend addresses a named knowledge-base resource and keeps the
// instructions in the separate system field.
type scopedBackend struct {
	project string
}

func (b scopedBackend) name() string { return "scoped" }

func (b scopedBackend) build(system, prompt string) claudeRequest {
	return claudeRequest{
		System:    system,
		ProjectID: b.project,
		Messages:  []claudeMsg{{Role: "user", Content: prompt}},
	}
}

type claudeRequest struct {
	Model     string      `json:"model"`
	MaxTokens int         `json:"max_tokens"`
	System    string      `json:"system,omitempty"`
	ProjectID string      `json:"project_id,omitempty"`
	Messages  []claudeMsg `json:"messages"`
}

type claudeMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete produces reply text for the prompt. Configuration problems fail
// fast with ConfigMissing before any network call.
func (c *Claude) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &domain.CompletionError{Kind: domain.ErrConfigMissing, Msg: "CLAUDE_API_KEY is not set"}
	}
	if c.cfg.RequireProject && c.cfg.ProjectID == "" {
		return "", &domain.CompletionError{Kind: domain.ErrConfigMissing, Msg: "CLAUDE_PROJECT_ID is required but not set"}
	}

	var lastErr error
	for i, b := range c.backends {
		text, err := c.do(ctx, b.build(c.system, prompt))
		if err == nil {
			if i > 0 {
				c.logger.Info("completion fell back to plain request", "backend", b.name())
			}
			return text, nil
		}
		lastErr = err
		if i < len(c.backends)-1 {
			c.logger.Warn("completion backend failed, trying next",
				"backend", b.name(), "err", err)
		}
	}
	return "", lastErr
}

func (c *Claude) do(ctx context.Context, req claudeRequest) (string, error) {
	req.Model = c.cfg.Model
	req.MaxTokens = c.cfg.MaxTokens

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+messagesPath, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &domain.CompletionError{Kind: domain.ErrUnknown, Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &domain.CompletionError{
			Kind:   classifyStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Msg:    string(respBody),
		}
	}

	var claudeResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&claudeResp); err != nil {
		return "", &domain.CompletionError{Kind: domain.ErrUnknown, Msg: fmt.Sprintf("decode: %v", err)}
	}

	var textParts []string
	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	text := strings.Join(textParts, "")
	if text == "" {
		return "", &domain.CompletionError{Kind: domain.ErrUnknown, Msg: "response contained no text content"}
	}
	return text, nil
}

func classifyStatus(status int) domain.ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthFailed
	case http.StatusNotFound:
		return domain.ErrResourceNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case http.StatusBadRequest:
		return domain.ErrBadRequest
	default:
		return domain.ErrUnknown
	}
}
