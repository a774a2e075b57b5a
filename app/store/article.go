package store

import "time"

// Article is a single headline as received from the feed provider.
// Every field besides Title and URL may be empty.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      Source `json:"source"`
}

// Source describes the publisher of the article.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Published parses PublishedAt, expected to be in RFC 3339.
func (a Article) Published() (time.Time, bool) {
	if a.PublishedAt == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Digest is an article page, extracted and shortened to bullet points.
type Digest struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Excerpt      string `json:"excerpt"`
	Content      string `json:"content"`
	Author       string `json:"author"`
	ImageURL     string `json:"image_url"`
	BulletPoints string `json:"bullet_points"`
}
