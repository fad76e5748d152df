package domain

import "context"

// Completer produces reply text for a prompt. Failures are *CompletionError;
// the caller owns translating them into user-facing text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Sender delivers text to a chat address. Exactly one outbound call per
// invocation, no retries. Failures are *DeliveryError.
type Sender interface {
	Send(ctx context.Context, recipientID string, text string) error
}

// StageObserver receives one record per pipeline stage.
type StageObserver interface {
	Observe(rec StageRecord)
}
