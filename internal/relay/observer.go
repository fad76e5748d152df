package relay

import (
	"log/slog"

	"relaybot/internal/domain"
)

// MultiObserver fans a stage record out to several observers.
type MultiObserver []domain.StageObserver

func (m MultiObserver) Observe(rec domain.StageRecord) {
	for _, o := range m {
		o.Observe(rec)
	}
}

// SlogObserver writes one structured log record per pipeline stage.
type SlogObserver struct {
	logger *slog.Logger
}

func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) Observe(rec domain.StageRecord) {
	attrs := []any{
		"event_id", rec.EventID,
		"stage", string(rec.Stage),
		"outcome", rec.Outcome,
		"duration_ms", rec.Duration.Milliseconds(),
	}
	if rec.Sender != "" {
		attrs = append(attrs, "sender", rec.Sender)
	}
	if rec.Err != nil {
		attrs = append(attrs, "err", rec.Err.Error())
		o.logger.Warn("relay stage", attrs...)
		return
	}
	o.logger.Info("relay stage", attrs...)
}
