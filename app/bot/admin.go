package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Semior001/headlines/app/render"
	"github.com/Semior001/headlines/app/store"
	"github.com/Semior001/headlines/pkg/botx"
)

func (c *Ctrl) users(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	users, err := c.Store.List(ctx, store.ListRequest{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	sb := &strings.Builder{}
	_, _ = sb.WriteString("Users:\n")
	for _, u := range users {
		_, _ = sb.WriteString(fmt.Sprintf("id: %s, username: %s, authorized: %t, registered: %s\n",
			u.ChatID, render.EscapeMarkdown(u.Username), u.Authorized, u.RegisteredAt.Format("2006-01-02")))
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   sb.String(),
	}}, nil
}

func (c *Ctrl) delete(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	args := req.Args()
	if len(args) != 1 {
		return nil, errors.New("invalid command")
	}

	chatID := args[0]
	if err := c.Store.Delete(ctx, chatID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []botx.Response{{
				ChatID: req.Chat.ID,
				Text:   fmt.Sprintf("User with id %s not found.", chatID),
			}}, nil
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}
	c.Sessions.End(chatID)

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   fmt.Sprintf("User with id %s was deleted.", chatID),
	}}, nil
}

func (c *Ctrl) sessions(_ context.Context, req botx.Request) ([]botx.Response, error) {
	stats := c.Sessions.Stat()
	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text: fmt.Sprintf("active: %d, hits: %d, misses: %d, evictions: %d, added: %d\n",
			c.Sessions.Len(), stats.Hits, stats.Misses, stats.Evicted, stats.Added),
	}}, nil
}
