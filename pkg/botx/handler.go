package botx

import (
	"context"
	"strings"
)

// Handler handles requests.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// Response is a message to send.
type Response struct {
	ReplyToMessageID string
	ChatID           string
	Text             string
	// ImageURL makes the message a photo with Text as its caption.
	ImageURL string
}

// Request is a message received by the bot.
type Request struct {
	MessageID string
	Chat      Chat
	Text      string
}

// Command returns the command of the request, i.e. the first word
// of the text without the bot mention, if the text starts with a slash.
func (r Request) Command() string {
	if !strings.HasPrefix(r.Text, "/") {
		return ""
	}

	cmd, _, _ := strings.Cut(strings.TrimSpace(r.Text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

// Args returns the words of the text following the command.
func (r Request) Args() []string {
	fields := strings.Fields(r.Text)
	if len(fields) == 0 || r.Command() == "" {
		return nil
	}
	return fields[1:]
}

// Chat contains chat information.
type Chat struct {
	ID       string
	Username string
}

// NotFound is a default handler for not found commands.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{{
		ChatID: req.Chat.ID,
		Text:   "command not found",
	}}, nil
}
