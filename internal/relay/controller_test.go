package relay

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"relaybot/internal/channel"
	"relaybot/internal/config"
	"relaybot/internal/domain"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeSender struct {
	err       error
	calls     int
	recipient string
	text      string
}

func (f *fakeSender) Send(ctx context.Context, recipientID, text string) error {
	f.calls++
	f.recipient = recipientID
	f.text = text
	return f.err
}

type recordingObserver struct {
	records []domain.StageRecord
}

func (r *recordingObserver) Observe(rec domain.StageRecord) {
	r.records = append(r.records, rec)
}

func testControllerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func validEvent() *channel.MessageEvent {
	return &channel.MessageEvent{
		Key:         &channel.MessageKey{RemoteJID: "573001234567@s.whatsapp.net"},
		MessageType: channel.TypeConversation,
		Message:     &channel.Message{Conversation: "¿Cuál es el horario de silencio?"},
	}
}

func newTestController(c *fakeCompleter, s *fakeSender, obs domain.StageObserver) *Controller {
	return NewController(ControllerConfig{
		Completer: c,
		Sender:    s,
		Replies:   config.DefaultReplies(),
		Observer:  obs,
		Logger:    testControllerLogger(),
	})
}

func TestHandle_Delivered(t *testing.T) {
	completer := &fakeCompleter{reply: "El horario de silencio es de 10pm a 7am."}
	sender := &fakeSender{}
	ctrl := newTestController(completer, sender, nil)

	outcome := ctrl.Handle(context.Background(), validEvent())
	if outcome.Status != domain.OutcomeDelivered {
		t.Fatalf("expected delivered, got %s", outcome.Status)
	}
	if sender.recipient != "573001234567@s.whatsapp.net" {
		t.Errorf("unexpected recipient: %q", sender.recipient)
	}
	if sender.text != "El horario de silencio es de 10pm a 7am." {
		t.Errorf("unexpected reply text: %q", sender.text)
	}
}

func TestHandle_IgnoredSkipsEverything(t *testing.T) {
	completer := &fakeCompleter{}
	sender := &fakeSender{}
	ctrl := newTestController(completer, sender, nil)

	ev := validEvent()
	ev.Key.FromMe = true
	outcome := ctrl.Handle(context.Background(), ev)
	if outcome.Status != domain.OutcomeIgnored {
		t.Fatalf("expected ignored, got %s", outcome.Status)
	}
	if completer.calls != 0 {
		t.Error("completer must not be called for ignored events")
	}
	if sender.calls != 0 {
		t.Error("sender must not be called for ignored events")
	}
}

func TestHandle_CompletionFailureStillDelivers(t *testing.T) {
	replies := config.DefaultReplies()
	cases := []struct {
		kind    domain.ErrorKind
		apology string
	}{
		{domain.ErrConfigMissing, replies.ApologyConfig},
		{domain.ErrAuthFailed, replies.ApologyAuth},
		{domain.ErrResourceNotFound, replies.ApologyNotFound},
		{domain.ErrRateLimited, replies.ApologyRateLimited},
		{domain.ErrBadRequest, replies.ApologyBadRequest},
		{domain.ErrUnknown, replies.ApologyUnknown},
	}

	for _, tc := range cases {
		completer := &fakeCompleter{err: &domain.CompletionError{Kind: tc.kind, Msg: "boom"}}
		sender := &fakeSender{}
		ctrl := newTestController(completer, sender, nil)

		outcome := ctrl.Handle(context.Background(), validEvent())
		if outcome.Status != domain.OutcomeDelivered {
			t.Fatalf("%s: completion failure must not fail the pipeline, got %s", tc.kind, outcome.Status)
		}
		if sender.calls != 1 {
			t.Errorf("%s: expected one delivery, got %d", tc.kind, sender.calls)
		}
		if sender.text != tc.apology {
			t.Errorf("%s: expected apology %q, got %q", tc.kind, tc.apology, sender.text)
		}
	}
}

func TestHandle_DeliveryFailureIsTerminal(t *testing.T) {
	completer := &fakeCompleter{reply: "hola"}
	sender := &fakeSender{err: &domain.DeliveryError{Status: 500, Body: "offline"}}
	ctrl := newTestController(completer, sender, nil)

	outcome := ctrl.Handle(context.Background(), validEvent())
	if outcome.Status != domain.OutcomeDeliveryFailed {
		t.Fatalf("expected delivery_failed, got %s", outcome.Status)
	}
	if outcome.Stage != domain.StageDeliver {
		t.Errorf("expected deliver stage, got %s", outcome.Stage)
	}
	if outcome.Err == nil {
		t.Error("expected error on outcome")
	}
}

func TestHandle_EmitsStageRecords(t *testing.T) {
	obs := &recordingObserver{}
	completer := &fakeCompleter{reply: "hola"}
	sender := &fakeSender{}
	ctrl := newTestController(completer, sender, obs)

	ctrl.Handle(context.Background(), validEvent())

	if len(obs.records) != 3 {
		t.Fatalf("expected 3 stage records, got %d", len(obs.records))
	}
	stages := []domain.Stage{domain.StageNormalize, domain.StageComplete, domain.StageDeliver}
	for i, want := range stages {
		if obs.records[i].Stage != want {
			t.Errorf("record %d: expected stage %s, got %s", i, want, obs.records[i].Stage)
		}
		if obs.records[i].EventID == "" {
			t.Errorf("record %d: missing event id", i)
		}
	}
	if obs.records[0].EventID != obs.records[2].EventID {
		t.Error("all records of one invocation must share an event id")
	}
}

func TestHandle_IgnoredEmitsSingleRecord(t *testing.T) {
	obs := &recordingObserver{}
	ctrl := newTestController(&fakeCompleter{}, &fakeSender{}, obs)

	ev := validEvent()
	ev.MessageType = "stickerMessage"
	ctrl.Handle(context.Background(), ev)

	if len(obs.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(obs.records))
	}
	if obs.records[0].Outcome != "ignored" {
		t.Errorf("expected ignored outcome, got %q", obs.records[0].Outcome)
	}
}
