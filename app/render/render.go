// Package render turns the sampler state into cards, ready to be shown
// in a chat or in a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/Semior001/headlines/app/sampler"
	"github.com/Semior001/headlines/app/store"
	"github.com/samber/lo"
)

// Placeholders for missing data.
const (
	NoDescription = "No description available."
	NoImage       = "No image"
	NoArticles    = "No articles to display."
	Loading       = "Loading…"
)

const dateLayout = "Jan 2, 2006, 15:04 MST"

// Card is a displayable article.
type Card struct {
	Title       string
	Source      string // empty if the feed didn't name the source
	Description string
	Image       string // empty if the article has no image
	Published   string
	URL         string
}

// NewCard makes a card from the article, with dates in the given location.
func NewCard(a store.Article, loc *time.Location) Card {
	c := Card{
		Title:       a.Title,
		Source:      a.Source.Name,
		Description: lo.Ternary(strings.TrimSpace(a.Description) == "", NoDescription, a.Description),
		Image:       a.Image,
		Published:   a.PublishedAt,
		URL:         a.URL,
	}

	if ts, ok := a.Published(); ok {
		if loc == nil {
			loc = time.Local
		}
		c.Published = ts.In(loc).Format(dateLayout)
	}

	return c
}

// Page is everything to show for a single state of the sampler.
type Page struct {
	Loading bool
	Error   string
	Cards   []Card
}

// NewPage makes a page for the given state.
func NewPage(st sampler.State, loc *time.Location) Page {
	return Page{
		Loading: st.Loading(),
		Error:   lo.Ternary(st.Failed(), st.Message, ""),
		Cards: lo.Map(st.Articles, func(a store.Article, _ int) Card {
			return NewCard(a, loc)
		}),
	}
}

// Empty returns true if there is nothing to show besides the error.
func (p Page) Empty() bool { return !p.Loading && len(p.Cards) == 0 }

var funcs = template.FuncMap{
	"md":         EscapeMarkdown,
	"link":       EscapeLink,
	"inc":        func(i int) int { return i + 1 },
	"noImage":    func() string { return NoImage },
	"noArticles": func() string { return NoArticles },
	"loading":    func() string { return Loading },
}

var cardMarkdownTmpl = template.Must(template.New("cardMarkdown").Funcs(funcs).Parse(
	`*{{md .Title}}*{{if .Source}} · _{{md .Source}}_{{end}}

{{md .Description}}
{{- if not .Image}}

_{{md noImage}}_
{{- end}}

{{md .Published}}
[Read ↗]({{link .URL}})`))

// Markdown renders the card in telegram's markdown.
func Markdown(c Card) (string, error) {
	sb := &strings.Builder{}
	if err := cardMarkdownTmpl.Execute(sb, c); err != nil {
		return "", fmt.Errorf("execute card template: %w", err)
	}
	return sb.String(), nil
}

var pageTextTmpl = template.Must(template.New("pageText").Funcs(funcs).Parse(`News App
{{- if .Loading}}
{{loading}}
{{- end}}
{{- if .Error}}
! {{.Error}}
{{- end}}
{{- if .Empty}}
{{noArticles}}
{{- end}}
{{- range $i, $c := .Cards}}

{{inc $i}}. {{$c.Title}}{{if $c.Source}} [{{$c.Source}}]{{end}}
   {{$c.Description}}
   {{if $c.Image}}image: {{$c.Image}}{{else}}{{noImage}}{{end}}
   {{$c.Published}} · Read ↗ {{$c.URL}}
{{- end}}
`))

// WriteText writes the page as plain text.
func WriteText(w io.Writer, p Page) error {
	if err := pageTextTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	return nil
}

var mdEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown escapes characters reserved by telegram's markdown.
func EscapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

// linkEscaper percent-encodes characters that end a link target in
// telegram's markdown, which has no escaping inside of it.
var linkEscaper = strings.NewReplacer(
	"(", "%28",
	")", "%29",
	" ", "%20",
)

// EscapeLink makes the url safe to put into a markdown link target.
func EscapeLink(u string) string {
	return linkEscaper.Replace(u)
}
