package botx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Command(t *testing.T) {
	tbl := []struct {
		text string
		cmd  string
		args []string
	}{
		{text: "/start", cmd: "/start", args: []string{}},
		{text: "/read 2", cmd: "/read", args: []string{"2"}},
		{text: "/shuffle@headlines_bot", cmd: "/shuffle", args: []string{}},
		{text: "  /delete   42 ", cmd: "", args: nil},
		{text: "hello there", cmd: "", args: nil},
	}

	for _, tt := range tbl {
		t.Run(tt.text, func(t *testing.T) {
			req := Request{Text: tt.text}
			assert.Equal(t, tt.cmd, req.Command())
			assert.Equal(t, tt.args, req.Args())
		})
	}
}

func respond(text string) Handler {
	return func(_ context.Context, req Request) ([]Response, error) {
		return []Response{{ChatID: req.Chat.ID, Text: text}}, nil
	}
}

func suffix(s string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) ([]Response, error) {
			resps, err := next(ctx, req)
			for i := range resps {
				resps[i].Text += s
			}
			return resps, err
		}
	}
}

func TestRouter_Handle(t *testing.T) {
	rtr := NewRouter()
	rtr.Use(suffix("!"))
	rtr.Add("/start", respond("start"))
	rtr.Add("/s", respond("s"))
	rtr.Group(func(rtr *Router) {
		rtr.Use(suffix("?"))
		rtr.Add("/admin", respond("admin"))
	})

	tbl := []struct {
		text string
		want string
	}{
		{text: "/start", want: "start!"},
		{text: "/s", want: "s!"},
		{text: "/admin", want: "admin?!"},
		{text: "/unknown", want: "command not found!"},
		{text: "plain text", want: "command not found!"},
	}

	for _, tt := range tbl {
		t.Run(tt.text, func(t *testing.T) {
			resps, err := rtr.Handle(context.Background(), Request{Chat: Chat{ID: "1"}, Text: tt.text})
			require.NoError(t, err)
			require.Len(t, resps, 1)
			assert.Equal(t, Response{ChatID: "1", Text: tt.want}, resps[0])
		})
	}

	resps, err := rtr.Handle(context.Background(), Request{Chat: Chat{ID: "1"}})
	require.NoError(t, err)
	assert.Empty(t, resps)
}

func TestRouter_With(t *testing.T) {
	rtr := NewRouter()
	rtr.NotFound(respond("help"))
	rtr.Add("/a", respond("a"))

	cloned := rtr.With(suffix("+"))

	resps, err := cloned.Handle(context.Background(), Request{Text: "/a"})
	require.NoError(t, err)
	assert.Equal(t, "a+", resps[0].Text)

	resps, err = cloned.Handle(context.Background(), Request{Text: "/b"})
	require.NoError(t, err)
	assert.Equal(t, "help+", resps[0].Text)

	resps, err = rtr.Handle(context.Background(), Request{Text: "/a"})
	require.NoError(t, err)
	assert.Equal(t, "a", resps[0].Text)
}

func TestBot_Run(t *testing.T) {
	updates := make(chan Request, 3)
	updates <- Request{Chat: Chat{ID: "1"}, Text: "/a"}
	updates <- Request{Chat: Chat{ID: "2"}, Text: "/fail"}
	updates <- Request{Chat: Chat{ID: "3"}, Text: "/a"}
	close(updates)

	mu := sync.Mutex{}
	var sent []Response

	api := &APIMock{
		UpdatesFunc: func() <-chan Request { return updates },
		SendMessageFunc: func(_ context.Context, resp Response) error {
			mu.Lock()
			defer mu.Unlock()
			sent = append(sent, resp)
			return nil
		},
	}

	rtr := NewRouter()
	rtr.Add("/a", respond("a"))
	rtr.Add("/fail", func(_ context.Context, req Request) ([]Response, error) {
		return []Response{{ChatID: req.Chat.ID, Text: "failed"}}, errors.New("oops")
	})

	NewBot(rtr.Handle, api, WithWorkers(2)).Run(context.Background())

	assert.ElementsMatch(t, []Response{
		{ChatID: "1", Text: "a"},
		{ChatID: "2", Text: "failed"},
		{ChatID: "3", Text: "a"},
	}, sent)
}

func TestBot_Run_ContextDone(t *testing.T) {
	api := &APIMock{UpdatesFunc: func() <-chan Request { return make(chan Request) }}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewBot(NotFound, api, WithWorkers(0)).Run(ctx)
	assert.Len(t, api.UpdatesCalls(), 1)
}
