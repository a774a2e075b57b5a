// Package gnews implements a client of the GNews top-headlines endpoint.
package gnews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Semior001/headlines/app/store"
	"github.com/Semior001/headlines/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
)

// DefaultEndpoint is the top-headlines endpoint of GNews.
const DefaultEndpoint = "https://gnews.io/api/v4/top-headlines"

// maxBodySize limits the size of the response body to read.
const maxBodySize = 4 << 20

// secretQuery lists query parameters that never leave the client unmasked.
var secretQuery = []string{"apikey"}

// Query specifies parameters of the top-headlines request.
type Query struct {
	APIKey   string
	Category string
	Lang     string
	Country  string
	Max      int
}

// DefaultQuery returns the query for general english headlines in the US.
func DefaultQuery() Query {
	return Query{Category: "general", Lang: "en", Country: "us", Max: 10}
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("category", q.Category)
	v.Set("lang", q.Lang)
	v.Set("country", q.Country)
	v.Set("max", strconv.Itoa(q.Max))
	v.Set("apikey", q.APIKey)
	return v
}

// StatusError is returned when the endpoint responds with non-2xx status.
type StatusError struct {
	Code int
}

// Error returns the status in form of "HTTP <code>".
func (e *StatusError) Error() string { return fmt.Sprintf("HTTP %d", e.Code) }

// Client makes requests to the top-headlines endpoint.
type Client struct {
	log      *slog.Logger
	rq       *requester.Requester
	endpoint string
}

// NewClient makes a new Client. Empty endpoint means DefaultEndpoint.
func NewClient(lg *slog.Logger, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		log:      lg,
		endpoint: endpoint,
		rq: requester.New(
			http.Client{Timeout: timeout},
			middleware.Header("Accept", "application/json"),
			logx.LoggingRoundTripper(lg, logx.RoundTripperOpts{
				Level:       slog.LevelDebug,
				SecretQuery: secretQuery,
			}),
		),
	}
}

type topHeadlinesResponse struct {
	TotalArticles int             `json:"totalArticles"`
	Articles      json.RawMessage `json:"articles"`
}

// TopHeadlines returns the headlines listed by the endpoint, in the order
// the endpoint returned them.
// Missing or malformed "articles" field results in an empty list, articles
// that can't be decoded are skipped.
// Transport errors are *url.Error with the API key masked in the URL.
func (c *Client) TopHeadlines(ctx context.Context, q Query) ([]store.Article, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint url: %w", err)
	}
	u.RawQuery = q.values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.rq.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = logx.MaskQuery(u, secretQuery)
		}
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var raw topHeadlinesResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := c.decodeArticles(ctx, raw.Articles)

	c.log.DebugCtx(ctx, "received top headlines",
		slog.Int("articles", len(articles)),
		slog.Int("total", raw.TotalArticles))

	return articles, nil
}

func (c *Client) decodeArticles(ctx context.Context, data json.RawMessage) []store.Article {
	articles := []store.Article{}
	if len(data) == 0 {
		return articles
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		c.log.WarnCtx(ctx, "articles field is not a list, treating as empty", slog.Any("err", err))
		return articles
	}

	for idx, item := range items {
		if string(item) == "null" {
			continue
		}

		var a store.Article
		if err := json.Unmarshal(item, &a); err != nil {
			c.log.WarnCtx(ctx, "skipping malformed article", slog.Int("idx", idx), slog.Any("err", err))
			continue
		}
		articles = append(articles, a)
	}

	return articles
}
