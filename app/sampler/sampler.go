// Package sampler fetches a list of headlines and draws a random sample
// of them, exposing the outcome as a State.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/Semior001/headlines/app/gnews"
	"github.com/Semior001/headlines/app/store"
	"github.com/Semior001/headlines/pkg/logx"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_source.go . Source

// Source lists headlines.
type Source interface {
	TopHeadlines(ctx context.Context, q gnews.Query) ([]store.Article, error)
}

// KeyFunc returns the API key of the source, empty if it is not configured.
type KeyFunc func() string

// Options defines options for Sampler.
type Options struct {
	Logger *slog.Logger
	Size   int
	Query  gnews.Query
	Rand   *rand.Rand
	// Observer is called with every new state, under the sampler's lock,
	// thus it must not call the sampler back.
	Observer func(State)
}

// Option defines a function that configures Sampler.
type Option func(*Options)

// WithLogger sets the logger to use.
func WithLogger(lg *slog.Logger) Option {
	return func(o *Options) { o.Logger = lg }
}

// WithSize sets the number of articles to draw.
func WithSize(size int) Option {
	return func(o *Options) { o.Size = size }
}

// WithQuery sets the query to list headlines with.
// APIKey of the query is ignored, the key is always taken from KeyFunc.
func WithQuery(q gnews.Query) Option {
	return func(o *Options) { o.Query = q }
}

// WithRand sets the source of randomness.
func WithRand(rnd *rand.Rand) Option {
	return func(o *Options) { o.Rand = rnd }
}

// WithObserver sets the function to call on every state transition.
func WithObserver(fn func(State)) Option {
	return func(o *Options) { o.Observer = fn }
}

// Sampler draws a handful of random headlines from the source.
// It is safe for concurrent use. When refreshes overlap, only the latest
// one settles the state, results of the superseded ones are dropped.
type Sampler struct {
	src Source
	key KeyFunc
	Options

	mu    sync.Mutex
	state State
	token uint64
}

// New makes a new Sampler in the idle state.
func New(src Source, key KeyFunc, opts ...Option) *Sampler {
	options := Options{
		Logger: slog.New(logx.NoOp()),
		Size:   3,
		Query:  gnews.DefaultQuery(),
		Rand:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // not a security context
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &Sampler{
		src:     src,
		key:     key,
		Options: options,
		state:   State{Phase: PhaseIdle},
	}
}

// State returns the current state.
func (s *Sampler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.Articles != nil {
		st.Articles = append([]store.Article(nil), st.Articles...)
	}

	return st
}

// Refresh lists headlines and draws a new sample from them.
// It moves the sampler to the loading state, dropping the previous
// sample and error, and blocks until the state is settled.
// Failures are never returned, they are reported through the state.
func (s *Sampler) Refresh(ctx context.Context) {
	token := s.begin()
	items, err := s.fetch(ctx)
	s.settle(ctx, token, items, err)
}

func (s *Sampler) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.transit(loading())
	return s.token
}

func (s *Sampler) fetch(ctx context.Context) (items []store.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while listing headlines: %v", r)
		}
	}()

	key := s.key()
	if key == "" {
		return nil, ErrMissingCredential
	}

	q := s.Query
	q.APIKey = key

	if items, err = s.src.TopHeadlines(ctx, q); err != nil {
		return nil, err
	}

	if len(items) < s.Size {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientData, len(items), s.Size)
	}

	return items, nil
}

func (s *Sampler) settle(ctx context.Context, token uint64, items []store.Article, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		s.Logger.DebugCtx(ctx, "dropping result of superseded refresh",
			slog.Uint64("token", token), slog.Uint64("latest", s.token))
		return
	}

	if err != nil {
		st := classify(err)
		s.Logger.WarnCtx(ctx, "failed to refresh headlines",
			slog.String("kind", st.Kind.String()), slog.Any("err", err))
		s.transit(st)
		return
	}

	picked := Pick(s.Rand, items, s.Size)
	s.Logger.InfoCtx(ctx, "refreshed headlines",
		slog.Int("listed", len(items)), slog.Int("picked", len(picked)))
	s.transit(ready(picked))
}

// transit must be called under the lock.
func (s *Sampler) transit(st State) {
	s.state = st
	if s.Observer != nil {
		s.Observer(st)
	}
}

func classify(err error) State {
	var se *gnews.StatusError

	switch {
	case errors.Is(err, ErrMissingCredential):
		return failed(KindMissingCredential, MsgMissingCredential, err)
	case errors.As(err, &se):
		return failed(KindHTTP, se.Error(), err)
	case errors.Is(err, ErrInsufficientData):
		return failed(KindInsufficientData, MsgInsufficientData, err)
	default:
		return failed(KindUnknown, failureText(err), err)
	}
}

// failureText returns the message of the failure itself. For transport
// errors it drops the request URL, as it carries the API key.
func failureText(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}
