// Package bot contains routers and controllers for bots.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Semior001/headlines/app/render"
	"github.com/Semior001/headlines/app/store"
	"github.com/Semior001/headlines/pkg/botx"
	"github.com/Semior001/headlines/pkg/botx/botmw"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_digester.go . Digester

// Digester makes a digest of an article page.
type Digester interface {
	Digest(ctx context.Context, url string) (store.Digest, error)
}

// Ctrl provides routes and controllers for bot updates.
type Ctrl struct {
	Logger   *slog.Logger
	Store    store.Interface
	Sessions *Sessions
	API      botx.API
	// Digester is optional, /read is disabled without it.
	Digester       Digester
	AdminIDs       []string
	AuthToken      string
	HandlerTimeout time.Duration
	Location       *time.Location
}

// Routes returns a multiplexer for bot controllers.
func (c *Ctrl) Routes() *botx.Router {
	rtr := botx.NewRouter()

	rtr.Use(
		botmw.RequestID(),
		botmw.AppendRequestIDOnError(),
		botmw.Recover(c.Logger),
		botmw.Logger(c.Logger),
		botmw.Timeout(c.HandlerTimeout),
		c.ensureAuthorized,
	)

	rtr.NotFound(c.help)
	rtr.Add("/start", c.start)
	rtr.Add("/stop", c.stop)
	rtr.Add("/shuffle", c.shuffle)
	rtr.Add("/read", c.read)

	rtr.Group(func(rtr *botx.Router) {
		rtr.Use(c.ensureAdmin)

		rtr.Add("/users", c.users)
		rtr.Add("/delete", c.delete)
		rtr.Add("/sessions", c.sessions)
	})

	return rtr
}

const helpText = "Send /shuffle to get three random headlines.\n" +
	"Send /read <number> to get a short digest of one of them.\n" +
	"Send /stop to end the session."

func (c *Ctrl) help(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return []botx.Response{{ChatID: req.Chat.ID, Text: helpText}}, nil
}

func (c *Ctrl) ensureAdmin(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if !lo.Contains(c.AdminIDs, req.Chat.ID) {
			return c.help(ctx, req)
		}

		return h(ctx, req)
	}
}

func (c *Ctrl) ensureAuthorized(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		u, err := c.Store.Get(ctx, req.Chat.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if u, err = c.register(ctx, req); err != nil {
				return nil, fmt.Errorf("register user: %w", err)
			}

			if !u.Authorized {
				return []botx.Response{{
					ChatID: req.Chat.ID,
					Text: "Hello! In order to read the news, you need to provide a token,\n" +
						"please ask admin for it and then send it to me.",
				}}, nil
			}
		case err != nil:
			return nil, fmt.Errorf("get user: %w", err)
		}

		if u.Authorized || c.AuthToken == "" {
			return h(ctx, req)
		}

		if req.Text != c.AuthToken {
			return []botx.Response{{
				ChatID: req.Chat.ID,
				Text:   "You are not authorized, please provide a token.",
			}}, nil
		}

		u.Authorized = true
		if err := c.Store.Put(ctx, u); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		return []botx.Response{{
			ChatID: req.Chat.ID,
			Text:   "You are now authorized.\n" + helpText,
		}}, nil
	}
}

func (c *Ctrl) register(ctx context.Context, req botx.Request) (store.User, error) {
	u := store.User{
		ChatID:       req.Chat.ID,
		Username:     req.Chat.Username,
		Authorized:   c.AuthToken == "",
		RegisteredAt: time.Now(),
	}

	if err := c.Store.Put(ctx, u); err != nil {
		return store.User{}, fmt.Errorf("put user: %w", err)
	}

	if err := c.NotifyAdmins(ctx, fmt.Sprintf("new user: %s", render.EscapeMarkdown(req.Chat.Username))); err != nil {
		c.Logger.WarnCtx(ctx, "notify admins about registered user", slog.Any("err", err))
	}

	return u, nil
}

// NotifyAdmins sends a message to all admins.
func (c *Ctrl) NotifyAdmins(ctx context.Context, msg string) error {
	for _, adminID := range c.AdminIDs {
		if err := c.API.SendMessage(ctx, botx.Response{
			ChatID: adminID,
			Text:   msg,
		}); err != nil {
			return fmt.Errorf("send message to admin: %w", err)
		}
	}

	return nil
}
