package notify

import "context"

// Notifier delivers formatted report text to a chat channel.
type Notifier interface {
	// Send posts one message and returns the provider's message identifier.
	Send(ctx context.Context, text string) (string, error)

	// NotifyFailure posts a best-effort error notice for a failed delivery.
	// It never returns an error; its own failures are logged and swallowed.
	NotifyFailure(ctx context.Context, cause error)
}

// OutboundMessage is the message handed to the chat provider. It is
// constructed and discarded within a single request.
type OutboundMessage struct {
	Channel   string
	Text      string
	Username  string
	IconEmoji string
}
