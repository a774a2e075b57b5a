package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Semior001/headlines/app/sampler"
	"github.com/Semior001/headlines/app/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	t.Run("full article", func(t *testing.T) {
		c := NewCard(store.Article{
			Title:       "Title",
			Description: "Description",
			URL:         "https://example.com/a",
			Image:       "https://example.com/a.jpg",
			PublishedAt: "2024-05-01T10:20:30Z",
			Source:      store.Source{Name: "Example"},
		}, time.UTC)

		assert.Equal(t, Card{
			Title:       "Title",
			Source:      "Example",
			Description: "Description",
			Image:       "https://example.com/a.jpg",
			Published:   "May 1, 2024, 10:20 UTC",
			URL:         "https://example.com/a",
		}, c)
	})

	t.Run("fallbacks", func(t *testing.T) {
		c := NewCard(store.Article{
			Title:       "Title",
			Description: "  ",
			URL:         "https://example.com/a",
			PublishedAt: "sometime yesterday",
		}, time.UTC)

		assert.Equal(t, Card{
			Title:       "Title",
			Description: NoDescription,
			Published:   "sometime yesterday",
			URL:         "https://example.com/a",
		}, c)
	})

	t.Run("location", func(t *testing.T) {
		loc := time.FixedZone("X", 3*60*60)
		c := NewCard(store.Article{PublishedAt: "2024-05-01T10:20:30Z"}, loc)
		assert.Equal(t, "May 1, 2024, 13:20 X", c.Published)
	})
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Loading: true, Cards: []Card{}}, NewPage(sampler.State{Phase: sampler.PhaseLoading}, time.UTC))

	p := NewPage(sampler.State{
		Phase:   sampler.PhaseError,
		Kind:    sampler.KindHTTP,
		Message: "HTTP 500",
	}, time.UTC)
	assert.Equal(t, "HTTP 500", p.Error)
	assert.True(t, p.Empty())
	assert.False(t, p.Loading)

	p = NewPage(sampler.State{
		Phase:    sampler.PhaseReady,
		Articles: []store.Article{{Title: "A"}, {Title: "B"}, {Title: "C"}},
	}, time.UTC)
	assert.Empty(t, p.Error)
	assert.False(t, p.Empty())
	require.Len(t, p.Cards, 3)
	assert.Equal(t, "B", p.Cards[1].Title)

	assert.True(t, NewPage(sampler.State{Phase: sampler.PhaseIdle}, time.UTC).Empty())
}

func TestMarkdown(t *testing.T) {
	card := Card{
		Title:       "A_1 *breaking*",
		Source:      "Src",
		Description: "desc",
		Published:   "May 1, 2024, 10:20 UTC",
		URL:         "https://example.com/a",
	}

	md, err := Markdown(card)
	require.NoError(t, err)
	assert.Equal(t, "*A\\_1 \\*breaking\\** · _Src_\n\ndesc\n\n_No image_\n\n"+
		"May 1, 2024, 10:20 UTC\n[Read ↗](https://example.com/a)", md)

	card.Image = "https://example.com/a.jpg"
	card.Source = ""
	md, err = Markdown(card)
	require.NoError(t, err)
	assert.Equal(t, "*A\\_1 \\*breaking\\**\n\ndesc\n\n"+
		"May 1, 2024, 10:20 UTC\n[Read ↗](https://example.com/a)", md)
}

func TestMarkdown_LinkWithParentheses(t *testing.T) {
	md, err := Markdown(Card{
		Title:       "Title",
		Description: "desc",
		Image:       "https://example.com/a.jpg",
		Published:   "p",
		URL:         "https://en.wikipedia.org/wiki/Go_(programming_language)",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(md,
		"[Read ↗](https://en.wikipedia.org/wiki/Go_%28programming_language%29)"), md)
}

func TestEscapeLink(t *testing.T) {
	assert.Equal(t, "https://example.com/a%20b%28c%29?q=1", EscapeLink("https://example.com/a b(c)?q=1"))
	assert.Equal(t, "https://example.com/a", EscapeLink("https://example.com/a"))
}

func TestWriteText(t *testing.T) {
	tbl := []struct {
		name string
		page Page
		want string
	}{
		{
			name: "loading",
			page: Page{Loading: true},
			want: "News App\nLoading…\n",
		},
		{
			name: "error",
			page: Page{Error: "HTTP 500"},
			want: "News App\n! HTTP 500\nNo articles to display.\n",
		},
		{
			name: "cards",
			page: Page{Cards: []Card{
				{Title: "A", Source: "Src", Description: "d1", Image: "https://i", Published: "p1", URL: "https://a"},
				{Title: "B", Description: NoDescription, Published: "p2", URL: "https://b"},
			}},
			want: "News App\n\n" +
				"1. A [Src]\n   d1\n   image: https://i\n   p1 · Read ↗ https://a\n\n" +
				"2. B\n   No description available.\n   No image\n   p2 · Read ↗ https://b\n",
		},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, WriteText(buf, tt.page))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "\\_a\\* \\[b] \\`c\\`", EscapeMarkdown("_a* [b] `c`"))
}
