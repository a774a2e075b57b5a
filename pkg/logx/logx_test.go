package logx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-pkgz/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestChain_RequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(&Chain{
		Middleware: []Middleware{RequestID},
		Handler:    slog.HandlerOptions{}.NewTextHandler(buf),
	})

	lg.InfoCtx(ContextWithRequestID(context.Background(), "req-1"), "hello")
	assert.Contains(t, buf.String(), "request_id=req-1")

	buf.Reset()
	lg.With(slog.String("prefix", "test")).InfoCtx(context.Background(), "no id")
	assert.NotContains(t, buf.String(), "request_id")
	assert.Contains(t, buf.String(), "prefix=test")
}

func TestNoOp(t *testing.T) {
	h := NoOp()
	assert.False(t, h.Enabled(context.Background(), slog.LevelError))
	assert.Equal(t, h, h.WithGroup("g"))
}

func TestLoggingRoundTripper(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "token", r.Header.Get("Authorization"))
		w.Header().Set("X-Test", "value")
		_, err := w.Write([]byte(`{"ok":true}`))
		require.NoError(t, err)
	}))
	defer ts.Close()

	buf := &bytes.Buffer{}
	lg := slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewTextHandler(buf))

	rq := requester.New(http.Client{}, LoggingRoundTripper(lg, RoundTripperOpts{
		Level:         slog.LevelDebug,
		SecretHeaders: []string{"Authorization"},
		SecretQuery:   []string{"apikey"},
	}))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/path?apikey=secret-key&lang=en", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Authorization", "token")

	resp, err := rq.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := &bytes.Buffer{}
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, body.String())

	out := buf.String()
	assert.NotContains(t, out, "secret-key")
	assert.NotContains(t, out, "Authorization:token")
	assert.Contains(t, out, "request sent")
	assert.Contains(t, out, "response received")
	assert.Contains(t, out, "lang=en")
}

func TestCopyAndTrim(t *testing.T) {
	long := bytes.Repeat([]byte("a"), trimBodyAt+10)
	rd, res := copyAndTrim(&closer{rd: bytes.NewReader(long), closeFn: func() error { return nil }})
	assert.Equal(t, trimBodyAt+3, len(res))

	full := &bytes.Buffer{}
	_, err := full.ReadFrom(rd)
	require.NoError(t, err)
	assert.Equal(t, long, full.Bytes())
}
