package channel

import (
	"strings"

	"relaybot/internal/domain"
)

// Message types Evolution API marks as text-bearing, in extraction priority
// order: plain conversation, legacy text message, extended text message.
const (
	TypeConversation = "conversation"
	TypeTextMessage  = "textMessage"
	TypeExtendedText = "extendedTextMessage"
)

// jidSuffix is the decoration WhatsApp appends to individual chat addresses.
const jidSuffix = "@s.whatsapp.net"

// MessageEvent is the inbound webhook payload from Evolution API.
type MessageEvent struct {
	Key         *MessageKey `json:"key"`
	PushName    string      `json:"pushName"`
	MessageType string      `json:"messageType"`
	Message     *Message    `json:"message"`
}

type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

type Message struct {
	Conversation string    `json:"conversation"`
	TextMessage  *TextBody `json:"textMessage"`
	ExtendedText *TextBody `json:"extendedTextMessage"`
}

type TextBody struct {
	Text string `json:"text"`
}

// Normalize validates an inbound event and extracts the sender and text.
// It returns false for anything that should be ignored: self-sent messages,
// unrecognized message types, and events with no usable text. Pure function,
// no side effects; the sender JID is returned as-is, decoration included.
func Normalize(raw *MessageEvent) (domain.NormalizedMessage, bool) {
	if raw == nil || raw.Key == nil || raw.Key.RemoteJID == "" {
		return domain.NormalizedMessage{}, false
	}
	if raw.Key.FromMe {
		return domain.NormalizedMessage{}, false
	}

	switch raw.MessageType {
	case TypeConversation, TypeTextMessage, TypeExtendedText:
	default:
		return domain.NormalizedMessage{}, false
	}

	text := extractText(raw.Message)
	if text == "" {
		return domain.NormalizedMessage{}, false
	}

	return domain.NormalizedMessage{
		SenderID: raw.Key.RemoteJID,
		PushName: raw.PushName,
		Text:     text,
	}, true
}

// extractText tries the text fields in fixed priority order and returns the
// first one that is non-empty after trimming.
func extractText(msg *Message) string {
	if msg == nil {
		return ""
	}
	if t := strings.TrimSpace(msg.Conversation); t != "" {
		return t
	}
	if msg.TextMessage != nil {
		if t := strings.TrimSpace(msg.TextMessage.Text); t != "" {
			return t
		}
	}
	if msg.ExtendedText != nil {
		if t := strings.TrimSpace(msg.ExtendedText.Text); t != "" {
			return t
		}
	}
	return ""
}

// StripJID removes the WhatsApp decoration suffix from a chat address.
// Idempotent: an address without the suffix comes back unchanged.
func StripJID(jid string) string {
	return strings.TrimSuffix(jid, jidSuffix)
}
