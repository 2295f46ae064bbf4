package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slack-go/slack"
)

const failureNoticeLayout = "2006-01-02 15:04:05 MST"

// SlackNotifier posts messages to a single Slack channel via
// chat.postMessage with fixed display metadata.
type SlackNotifier struct {
	client    *slack.Client
	channel   string
	username  string
	iconEmoji string
}

// NewSlackNotifier creates a notifier for the given channel. Extra slack
// options (e.g. a custom API URL) are passed through to the client.
func NewSlackNotifier(token, channel, username, iconEmoji string, opts ...slack.Option) *SlackNotifier {
	return &SlackNotifier{
		client:    slack.New(token, opts...),
		channel:   channel,
		username:  username,
		iconEmoji: iconEmoji,
	}
}

// Channel returns the target channel name.
func (n *SlackNotifier) Channel() string {
	return n.channel
}

// Send posts one message. A provider response with ok:false is an error
// even when the transport call succeeded; both cases surface wrapped as a
// Slack error.
func (n *SlackNotifier) Send(ctx context.Context, text string) (string, error) {
	msg := OutboundMessage{
		Channel:   n.channel,
		Text:      text,
		Username:  n.username,
		IconEmoji: n.iconEmoji,
	}

	opts := []slack.MsgOption{
		slack.MsgOptionText(msg.Text, false),
		slack.MsgOptionUsername(msg.Username),
		slack.MsgOptionIconEmoji(msg.IconEmoji),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	}

	_, messageTS, err := n.client.PostMessageContext(ctx, msg.Channel, opts...)
	if err != nil {
		return "", fmt.Errorf("Slack error: %w", err)
	}
	return messageTS, nil
}

// NotifyFailure posts a fixed-format error notice to the same channel.
// Failure of the notice itself is logged, never propagated.
func (n *SlackNotifier) NotifyFailure(ctx context.Context, cause error) {
	notice := fmt.Sprintf(":warning: Report delivery failed: %v (at %s)",
		cause, time.Now().UTC().Format(failureNoticeLayout))

	if _, err := n.Send(ctx, notice); err != nil {
		slog.Warn("failure notice not delivered", "channel", n.channel, "error", err)
	}
}
