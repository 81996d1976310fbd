// Package notify delivers short status messages to users through the
// Telegram Bot API. Delivery is best-effort everywhere: pairing state
// must never depend on Telegram being reachable, so callers log and
// discard errors instead of propagating them.
package notify

import "context"

// Notifier sends a plain-text message to the chat identified by the
// user's Telegram ID.
type Notifier interface {
	Send(ctx context.Context, tgID int64, text string) error
}

// Noop discards every message. Used in tests and when no bot token is
// configured.
type Noop struct{}

func (Noop) Send(context.Context, int64, string) error { return nil }
