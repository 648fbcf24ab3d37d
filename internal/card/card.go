// Package card turns one article into the values a news card displays.
package card

import (
	"strings"

	"github.com/bryan-buckman/newsfront/internal/model"
)

// Presentation constants.
const (
	ExcerptLength   = 300
	Ellipsis        = "..."
	BylineSeparator = " • "
	LinkTarget      = "_blank"
	LinkRel         = "noopener noreferrer"
)

// Card is the rendered form of one article.
type Card struct {
	Key      int // position in the response
	Headline string
	URL      string
	Target   string
	Rel      string
	Byline   string
	Excerpt  string
}

// New builds the card for the article at position key.
func New(key int, a model.Article) Card {
	return Card{
		Key:      key,
		Headline: a.Headline,
		URL:      a.URL,
		Target:   LinkTarget,
		Rel:      LinkRel,
		Byline:   Byline(a),
		Excerpt:  Excerpt(a.Content),
	}
}

// FromArticles builds one card per article, preserving order.
func FromArticles(articles []model.Article) []Card {
	cards := make([]Card, 0, len(articles))
	for i, a := range articles {
		cards = append(cards, New(i, a))
	}
	return cards
}

// Byline joins author, location and publish date.
func Byline(a model.Article) string {
	return strings.Join([]string{a.Author, a.Location, a.PublishedAt}, BylineSeparator)
}

// Excerpt returns the first ExcerptLength characters of content followed by
// Ellipsis. The ellipsis is appended even when content is shorter.
func Excerpt(content string) string {
	n := 0
	for i := range content {
		if n == ExcerptLength {
			return content[:i] + Ellipsis
		}
		n++
	}
	return content + Ellipsis
}
