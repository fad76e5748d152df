package domain

import "time"

// NormalizedMessage is an inbound chat message that passed validation.
type NormalizedMessage struct {
	SenderID string // raw JID, decoration suffix included
	PushName string
	Text     string // non-empty after trimming
}

// CompletionRequest describes a single-turn completion call. Model and
// MaxTokens come from configuration, never from the inbound message.
type CompletionRequest struct {
	Prompt        string
	System        string
	KnowledgeBase string
	Model         string
	MaxTokens     int
}

// Stage identifies a step of the relay pipeline.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageComplete  Stage = "complete"
	StageDeliver   Stage = "deliver"
)

// OutcomeStatus is the terminal state of one relay invocation.
type OutcomeStatus string

const (
	OutcomeIgnored        OutcomeStatus = "ignored"
	OutcomeDelivered      OutcomeStatus = "delivered"
	OutcomeDeliveryFailed OutcomeStatus = "delivery_failed"
)

// RelayOutcome reports how a single webhook event ended. Stage and Err are
// set only for failures.
type RelayOutcome struct {
	Status OutcomeStatus
	Stage  Stage
	Err    error
}

// StageRecord is one observability record per pipeline stage.
type StageRecord struct {
	EventID  string
	Sender   string
	Stage    Stage
	Outcome  string
	Err      error
	Duration time.Duration
}
