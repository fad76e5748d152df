package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"relaybot/internal/channel"
	"relaybot/internal/config"
	"relaybot/internal/domain"
)

// Controller sequences the relay pipeline for one inbound event:
// normalize → complete → deliver. It holds no state across invocations.
//
// A completion failure does not abort the pipeline: the matching apology
// text is substituted and delivery still happens, so the person on the other
// end always gets a reply. A delivery failure is terminal.
type Controller struct {
	completer domain.Completer
	sender    domain.Sender
	replies   config.Replies
	observer  domain.StageObserver
	logger    *slog.Logger
}

type ControllerConfig struct {
	Completer domain.Completer
	Sender    domain.Sender
	Replies   config.Replies
	Observer  domain.StageObserver
	Logger    *slog.Logger
}

func NewController(cfg ControllerConfig) *Controller {
	obs := cfg.Observer
	if obs == nil {
		obs = NewSlogObserver(cfg.Logger)
	}
	return &Controller{
		completer: cfg.Completer,
		sender:    cfg.Sender,
		replies:   cfg.Replies,
		observer:  obs,
		logger:    cfg.Logger,
	}
}

// Handle runs the pipeline for one raw webhook event.
func (c *Controller) Handle(ctx context.Context, raw *channel.MessageEvent) domain.RelayOutcome {
	eventID := uuid.NewString()

	start := time.Now()
	msg, ok := channel.Normalize(raw)
	if !ok {
		c.observe(domain.StageRecord{
			EventID: eventID, Stage: domain.StageNormalize,
			Outcome: "ignored", Duration: time.Since(start),
		})
		return domain.RelayOutcome{Status: domain.OutcomeIgnored}
	}
	c.observe(domain.StageRecord{
		EventID: eventID, Sender: msg.SenderID, Stage: domain.StageNormalize,
		Outcome: "accepted", Duration: time.Since(start),
	})

	start = time.Now()
	reply, err := c.completer.Complete(ctx, msg.Text)
	if err != nil {
		kind := domain.KindOf(err)
		reply = c.apology(kind)
		c.observe(domain.StageRecord{
			EventID: eventID, Sender: msg.SenderID, Stage: domain.StageComplete,
			Outcome: string(kind), Err: err, Duration: time.Since(start),
		})
	} else {
		c.observe(domain.StageRecord{
			EventID: eventID, Sender: msg.SenderID, Stage: domain.StageComplete,
			Outcome: "ok", Duration: time.Since(start),
		})
	}

	start = time.Now()
	if err := c.sender.Send(ctx, msg.SenderID, reply); err != nil {
		c.observe(domain.StageRecord{
			EventID: eventID, Sender: msg.SenderID, Stage: domain.StageDeliver,
			Outcome: "failed", Err: err, Duration: time.Since(start),
		})
		return domain.RelayOutcome{Status: domain.OutcomeDeliveryFailed, Stage: domain.StageDeliver, Err: err}
	}
	c.observe(domain.StageRecord{
		EventID: eventID, Sender: msg.SenderID, Stage: domain.StageDeliver,
		Outcome: "ok", Duration: time.Since(start),
	})

	return domain.RelayOutcome{Status: domain.OutcomeDelivered}
}

func (c *Controller) observe(rec domain.StageRecord) {
	if c.observer != nil {
		c.observer.Observe(rec)
	}
}

// apology maps a completion error kind to the fixed user-facing text.
func (c *Controller) apology(kind domain.ErrorKind) string {
	switch kind {
	case domain.ErrConfigMissing:
		return c.replies.ApologyConfig
	case domain.ErrAuthFailed:
		return c.replies.ApologyAuth
	case domain.ErrResourceNotFound:
		return c.replies.ApologyNotFound
	case domain.ErrRateLimited:
		return c.replies.ApologyRateLimited
	case domain.ErrBadRequest:
		return c.replies.ApologyBadRequest
	default:
		return c.replies.ApologyUnknown
	}
}
