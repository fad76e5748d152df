package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"relaybot/internal/channel"
	"relaybot/internal/domain"
)

const maxBodyBytes = 1 << 20 // 1MB

// webhookEnvelope is the body Evolution API posts: the event sits under "data".
type webhookEnvelope struct {
	Data *channel.MessageEvent `json:"data"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	s.received.Inc()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"status": "error", "message": "cannot read body",
		})
		return
	}
	defer r.Body.Close()

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Malformed payloads are application-level disinterest, not errors:
		// a 4xx/5xx would teach the gateway to retry.
		s.logger.Warn("webhook payload not parseable", "err", err)
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ignored", "timestamp": now(),
		})
		return
	}

	outcome := s.controller.Handle(r.Context(), envelope.Data)

	switch outcome.Status {
	case domain.OutcomeIgnored:
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ignored", "timestamp": now(),
		})
	case domain.OutcomeDelivered:
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "success", "timestamp": now(),
		})
	default:
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"status":    "error",
			"message":   outcome.Err.Error(),
			"stage":     string(outcome.Stage),
			"timestamp": now(),
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": now(),
		"config": map[string]any{
			"claudeConfigured":  s.cfg.HasClaudeKey(),
			"projectConfigured": s.cfg.HasProject(),
			"gatewayConfigured": s.cfg.CanSend(),
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"uptime_seconds":   int64(s.collector.Uptime().Seconds()),
		"gateway":          s.cfg.Evolution.BaseURL,
		"instance":         s.cfg.Evolution.Instance,
		"model":            s.cfg.Claude.Model,
		"claudeConfigured": s.cfg.HasClaudeKey(),
		"timestamp":        now(),
	})
}

// handleConfig reports configuration presence. Booleans only, never the
// secret values themselves.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"gateway": map[string]any{
			"baseURL":   s.cfg.Evolution.BaseURL,
			"instance":  s.cfg.Evolution.Instance,
			"hasApiKey": s.cfg.Evolution.APIKey != "",
		},
		"claude": map[string]any{
			"model":        s.cfg.Claude.Model,
			"maxTokens":    s.cfg.Claude.MaxTokens,
			"hasApiKey":    s.cfg.HasClaudeKey(),
			"hasProjectId": s.cfg.HasProject(),
		},
		"server": map[string]any{
			"port": s.cfg.Server.Port,
		},
	})
}

func (s *Server) handleTestClaude(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Message == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "message is required"})
		return
	}

	reply, err := s.completer.Complete(r.Context(), req.Message)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(), "kind": string(domain.KindOf(err)), "timestamp": now(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true, "reply": reply, "timestamp": now(),
	})
}

// handleTestQuery runs a fixed greeting through the completion client, handy
// for checking credentials from a browser.
func (s *Server) handleTestQuery(w http.ResponseWriter, r *http.Request) {
	reply, err := s.completer.Complete(r.Context(), "Hola, ¿cómo estás?")
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(), "kind": string(domain.KindOf(err)), "timestamp": now(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true, "reply": reply, "timestamp": now(),
	})
}

func (s *Server) handleTestWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number  string `json:"number"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Number == "" || req.Message == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "number and message are required"})
		return
	}

	if err := s.sender.Send(r.Context(), req.Number, req.Message); err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(), "timestamp": now(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true, "timestamp": now(),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
