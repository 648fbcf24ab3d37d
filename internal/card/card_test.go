package card

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/bryan-buckman/newsfront/internal/model"
)

func TestExcerpt_Lengths(t *testing.T) {
	for _, l := range []int{0, 1, 299, 300, 301, 1000} {
		content := strings.Repeat("a", l)
		got := Excerpt(content)

		want := l
		if want > ExcerptLength {
			want = ExcerptLength
		}
		assert.Equal(t, content[:want]+Ellipsis, got, "length %d", l)
	}
}

func TestExcerpt_ShortContentStillGetsEllipsis(t *testing.T) {
	assert.Equal(t, "short...", Excerpt("short"))
	assert.Equal(t, "...", Excerpt(""))
}

func TestExcerpt_CountsRunesNotBytes(t *testing.T) {
	// Bengali letters are three bytes each in UTF-8.
	content := strings.Repeat("ক", 350)
	got := Excerpt(content)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, ExcerptLength, utf8.RuneCountInString(strings.TrimSuffix(got, Ellipsis)))
}

func TestByline(t *testing.T) {
	a := model.Article{Author: "Staff", Location: "Dhaka", PublishedAt: "2025-06-01 10:00"}
	assert.Equal(t, "Staff • Dhaka • 2025-06-01 10:00", Byline(a))
}

func TestNew_LinkAttributes(t *testing.T) {
	for _, u := range []string{"https://example.com/a", "", "javascript:alert(1)", "/relative"} {
		c := New(0, model.Article{URL: u})
		assert.Equal(t, "_blank", c.Target)
		assert.Equal(t, "noopener noreferrer", c.Rel)
		assert.Equal(t, u, c.URL)
	}
}

func TestFromArticles_PreservesOrder(t *testing.T) {
	articles := []model.Article{
		{Headline: "first"},
		{Headline: "second"},
		{Headline: "third"},
	}
	cards := FromArticles(articles)

	assert.Len(t, cards, 3)
	for i, c := range cards {
		assert.Equal(t, i, c.Key)
		assert.Equal(t, articles[i].Headline, c.Headline)
	}
}

func TestFromArticles_Empty(t *testing.T) {
	assert.Empty(t, FromArticles(nil))
}
