// Package revisor contains services for reading and shortening the
// articles behind the headlines.
package revisor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Semior001/headlines/app/store"
	"github.com/go-pkgz/requester"
	"golang.org/x/exp/slog"
)

// Service makes digests of article pages.
type Service struct {
	log       *slog.Logger
	rq        *requester.Requester
	chatGPT   *ChatGPT
	extractor Extractor
}

// NewService creates new service.
func NewService(lg *slog.Logger, rq *requester.Requester, chatGPT *ChatGPT, extractor Extractor) *Service {
	return &Service{
		log:       lg,
		rq:        rq,
		chatGPT:   chatGPT,
		extractor: extractor,
	}
}

// Digest downloads the article page and shortens it to bullet points.
func (s *Service) Digest(ctx context.Context, u string) (store.Digest, error) {
	s.log.DebugCtx(ctx, "making digest of article", slog.String("url", u))

	pageURL, err := url.Parse(u)
	if err != nil {
		return store.Digest{}, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return store.Digest{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.rq.Do(req)
	if err != nil {
		return store.Digest{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return store.Digest{}, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	digest, err := s.extractor.Extract(resp.Body, pageURL)
	if err != nil {
		return store.Digest{}, fmt.Errorf("extract article: %w", err)
	}
	digest.URL = u

	if digest.BulletPoints, err = s.chatGPT.BulletPoints(ctx, digest); err != nil {
		return store.Digest{}, fmt.Errorf("get bullet points: %w", err)
	}

	return digest, nil
}
