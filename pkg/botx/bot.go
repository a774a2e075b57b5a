// Package botx provides interfaces and types to handle bot updates,
// with a chi-like router.
package botx

import (
	"context"
	"sync"

	"github.com/Semior001/headlines/pkg/logx"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_api.go . API

// API is a chat transport. Updates is closed when the transport stops
// listening, SendMessage delivers a single response.
type API interface {
	Updates() <-chan Request
	SendMessage(ctx context.Context, resp Response) error
}

// Bot dispatches updates of the API to the handler over a pool of workers.
type Bot struct {
	h   Handler
	api API
	Options
}

// NewBot makes a bot with a single worker and no logging, unless
// options say otherwise.
func NewBot(h Handler, api API, opts ...Option) *Bot {
	b := &Bot{
		h:       h,
		api:     api,
		Options: Options{Workers: 1, Logger: slog.New(logx.NoOp())},
	}

	for _, opt := range opts {
		opt(&b.Options)
	}

	return b
}

// Run blocks until the context is done or the updates channel is closed.
// Updates already taken by workers are handled to the end, the rest
// of the channel is left unread.
func (b *Bot) Run(ctx context.Context) {
	updates := b.api.Updates()

	wg := &sync.WaitGroup{}
	for i := 0; i < b.Workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			b.work(ctx, idx, updates)
		}(i)
	}

	wg.Wait()
}

func (b *Bot) work(ctx context.Context, idx int, updates <-chan Request) {
	lg := b.Logger.With(slog.Int("worker", idx))

	lg.DebugCtx(ctx, "worker started")
	defer lg.DebugCtx(ctx, "worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, lg, req)
		}
	}
}

// dispatch sends every response the handler made, even if it failed.
func (b *Bot) dispatch(ctx context.Context, lg *slog.Logger, req Request) {
	resps, err := b.h(ctx, req)
	if err != nil {
		lg.ErrorCtx(ctx, "handler failed",
			slog.String("chat_id", req.Chat.ID),
			slog.String("command", req.Command()),
			slog.Any("err", err))
	}

	for _, resp := range resps {
		if err := b.api.SendMessage(ctx, resp); err != nil {
			lg.WarnCtx(ctx, "failed to send response",
				slog.String("chat_id", resp.ChatID), slog.Any("err", err))
		}
	}
}
