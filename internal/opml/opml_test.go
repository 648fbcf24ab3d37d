package opml

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/newsfront/internal/model"
)

const sample = `<?xml version="1.0"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline text="Top" xmlUrl="https://example.com/top.xml"/>
    <outline text="news">
      <outline text="politics">
        <outline text="Politics" title="Politics Desk" xmlUrl="https://example.com/politics.xml"/>
      </outline>
      <outline text="Sport" xmlUrl="https://example.com/sport.xml"/>
    </outline>
    <outline text="empty folder"/>
  </body>
</opml>`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Category: "", Title: "Top", URL: "https://example.com/top.xml"},
		{Category: "news/politics", Title: "Politics Desk", URL: "https://example.com/politics.xml"},
		{Category: "news", Title: "Sport", URL: "https://example.com/sport.xml"},
	}, entries)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(strings.NewReader("<opml"))
	assert.Error(t, err)
}

func TestExport_RoundTripsCategories(t *testing.T) {
	sources := []model.Source{
		{Title: "Top", URL: "https://example.com/top.xml"},
		{Title: "Sport", URL: "https://example.com/sport.xml", Category: "sport"},
		{Title: "Politics", URL: "https://example.com/politics.xml", Category: "politics"},
	}
	out, err := Export("newsfront sources", sources, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<title>newsfront sources</title>")

	entries, err := Parse(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Category: "", Title: "Top", URL: "https://example.com/top.xml"},
		{Category: "politics", Title: "Politics", URL: "https://example.com/politics.xml"},
		{Category: "sport", Title: "Sport", URL: "https://example.com/sport.xml"},
	}, entries)
}
