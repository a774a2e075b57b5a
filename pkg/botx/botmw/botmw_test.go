package botmw

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Semior001/headlines/pkg/botx"
	"github.com/Semior001/headlines/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestRequestID(t *testing.T) {
	h := RequestID()(func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		id, ok := logx.RequestIDFromContext(ctx)
		require.True(t, ok)
		assert.Len(t, id, 36)
		return nil, nil
	})

	_, err := h(context.Background(), botx.Request{})
	require.NoError(t, err)
}

func TestAppendRequestIDOnError(t *testing.T) {
	ctx := logx.ContextWithRequestID(context.Background(), "req-1")
	req := botx.Request{Chat: botx.Chat{ID: "1"}}

	t.Run("no error", func(t *testing.T) {
		h := AppendRequestIDOnError()(func(context.Context, botx.Request) ([]botx.Response, error) {
			return []botx.Response{{ChatID: "1", Text: "ok"}}, nil
		})
		resps, err := h(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []botx.Response{{ChatID: "1", Text: "ok"}}, resps)
	})

	t.Run("error with response", func(t *testing.T) {
		h := AppendRequestIDOnError()(func(context.Context, botx.Request) ([]botx.Response, error) {
			return []botx.Response{{ChatID: "1", Text: "partial"}}, errors.New("oops")
		})
		resps, err := h(ctx, req)
		require.Error(t, err)
		assert.Equal(t, []botx.Response{{ChatID: "1", Text: "partial\n\nRequest ID: `req-1`"}}, resps)
	})

	t.Run("error with response to another chat", func(t *testing.T) {
		h := AppendRequestIDOnError()(func(context.Context, botx.Request) ([]botx.Response, error) {
			return []botx.Response{{ChatID: "admin", Text: "alert"}}, errors.New("oops")
		})
		resps, err := h(ctx, req)
		require.Error(t, err)
		assert.Equal(t, []botx.Response{
			{ChatID: "admin", Text: "alert"},
			{ChatID: "1", Text: "Something went wrong. Please, ask admin for help.\n\nRequest ID: `req-1`"},
		}, resps)
	})

	t.Run("error without response", func(t *testing.T) {
		h := AppendRequestIDOnError()(func(context.Context, botx.Request) ([]botx.Response, error) {
			return nil, errors.New("oops")
		})
		resps, err := h(ctx, req)
		require.Error(t, err)
		require.Len(t, resps, 1)
		assert.Equal(t, "1", resps[0].ChatID)
		assert.Contains(t, resps[0].Text, "Something went wrong.")
		assert.Contains(t, resps[0].Text, "req-1")
	})
}

func TestRecover(t *testing.T) {
	h := Recover(slog.New(logx.NoOp()))(func(context.Context, botx.Request) ([]botx.Response, error) {
		panic("boom")
	})

	resps, err := h(context.Background(), botx.Request{})
	assert.Empty(t, resps)
	assert.EqualError(t, err, "panic: boom")
}

func TestTimeout(t *testing.T) {
	t.Run("in time", func(t *testing.T) {
		h := Timeout(time.Second)(func(context.Context, botx.Request) ([]botx.Response, error) {
			return []botx.Response{{Text: "ok"}}, nil
		})
		resps, err := h(context.Background(), botx.Request{})
		require.NoError(t, err)
		assert.Equal(t, []botx.Response{{Text: "ok"}}, resps)
	})

	t.Run("timed out", func(t *testing.T) {
		h := Timeout(10 * time.Millisecond)(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
			time.Sleep(100 * time.Millisecond)
			return []botx.Response{{Text: "late"}}, nil
		})
		resps, err := h(context.Background(), botx.Request{})
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Empty(t, resps)
	})
}

func TestLogger(t *testing.T) {
	h := Logger(slog.New(logx.NoOp()))(func(context.Context, botx.Request) ([]botx.Response, error) {
		return []botx.Response{{ChatID: "1", Text: "ok"}}, nil
	})

	resps, err := h(context.Background(), botx.Request{Chat: botx.Chat{ID: "1"}, Text: "/start"})
	require.NoError(t, err)
	assert.Equal(t, []botx.Response{{ChatID: "1", Text: "ok"}}, resps)
}
