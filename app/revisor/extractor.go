package revisor

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/Semior001/headlines/app/store"
	"github.com/go-shiori/go-readability"
)

// Extractor extracts article from HTML page.
type Extractor struct {
	parser readability.Parser
}

// NewExtractor creates new Extractor.
func NewExtractor(debug bool) Extractor {
	svc := Extractor{parser: readability.NewParser()}
	svc.parser.Debug = debug

	return svc
}

// Extract extracts article from an HTML page located at pageURL.
func (e Extractor) Extract(rd io.Reader, pageURL *url.URL) (store.Digest, error) {
	doc, err := e.parser.Parse(rd, pageURL)
	if err != nil {
		return store.Digest{}, fmt.Errorf("parse html: %w", err)
	}

	return store.Digest{
		Title:    doc.Title,
		Excerpt:  doc.Excerpt,
		Content:  sanitize(doc.TextContent),
		Author:   doc.Byline,
		ImageURL: doc.Image,
	}, nil
}

var spaces = regexp.MustCompile(`\s+`)

func sanitize(s string) string {
	// nbsp
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
