package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/newsfront/internal/database"
	"github.com/bryan-buckman/newsfront/internal/metrics"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Politics Desk</title>
  <link>https://news.example.com/politics</link>
  <item>
    <title>First story</title>
    <link>https://news.example.com/politics/1</link>
    <dc:creator>Staff Reporter</dc:creator>
    <pubDate>Sun, 01 Jun 2025 10:00:00 GMT</pubDate>
    <description><![CDATA[<p>Hello <b>world</b></p><script>track()</script>]]></description>
  </item>
  <item>
    <title>Second story</title>
    <link>https://news.example.com/politics/2</link>
    <pubDate>Sun, 01 Jun 2025 12:00:00 GMT</pubDate>
    <description>plain   text body</description>
  </item>
  <item>
    <title>No link</title>
    <description>skipped</description>
  </item>
</channel>
</rss>`

func newTestStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestFetcher(db database.Store) *Fetcher {
	f := NewFetcher(db, nil)
	f.hosts = newHostLimiter(0)
	f.now = func() time.Time { return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) }
	return f
}

func feedServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchSource_StoresArticles(t *testing.T) {
	db := newTestStore(t)
	srv := feedServer(t, testFeed, http.StatusOK)

	id, _, err := db.GetOrCreateSource(srv.URL, srv.URL, "politics", "Dhaka")
	require.NoError(t, err)
	src, err := db.GetSourceByID(id)
	require.NoError(t, err)

	ingested := metrics.IngestedTotal.WithLabelValues(strconv.FormatInt(id, 10))
	before := testutil.ToFloat64(ingested)

	f := newTestFetcher(db)
	n, err := f.FetchSource(context.Background(), *src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, before+2, testutil.ToFloat64(ingested))

	articles, err := db.LatestArticles(10)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "Second story", articles[0].Headline)
	assert.Equal(t, "plain text body", articles[0].Content)
	assert.Equal(t, 3, articles[0].WordCount)

	assert.Equal(t, "First story", articles[1].Headline)
	assert.Equal(t, "Hello world", articles[1].Content)
	assert.Equal(t, "Staff Reporter", articles[1].Author)
	assert.Equal(t, "Dhaka", articles[1].Location)
	assert.Equal(t, "2025-06-01 10:00", articles[1].PublishedAt)

	// The feed title replaces a URL-only source title.
	src, err = db.GetSourceByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Politics Desk", src.Title)
	assert.False(t, src.LastFetched.IsZero())

	// A second pass finds nothing new.
	n, err = f.FetchSource(context.Background(), *src)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFetchSource_RecordsError(t *testing.T) {
	db := newTestStore(t)
	srv := feedServer(t, "nope", http.StatusInternalServerError)

	id, _, err := db.GetOrCreateSource("Broken", srv.URL, "", "")
	require.NoError(t, err)
	src, err := db.GetSourceByID(id)
	require.NoError(t, err)

	failures := metrics.IngestErrors.WithLabelValues(strconv.FormatInt(id, 10))
	before := testutil.ToFloat64(failures)

	_, err = newTestFetcher(db).FetchSource(context.Background(), *src)
	require.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(failures))

	src, err = db.GetSourceByID(id)
	require.NoError(t, err)
	assert.NotEmpty(t, src.LastError)
}

func TestFetchAll_SkipsFailingSources(t *testing.T) {
	db := newTestStore(t)
	good := feedServer(t, testFeed, http.StatusOK)
	bad := feedServer(t, "nope", http.StatusNotFound)

	goodID, _, err := db.GetOrCreateSource("Good", good.URL, "", "")
	require.NoError(t, err)
	_, _, err = db.GetOrCreateSource("Bad", bad.URL, "", "")
	require.NoError(t, err)

	results, err := newTestFetcher(db).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{goodID: 2}, results)
}

func TestFetchAll_NoSources(t *testing.T) {
	db := newTestStore(t)
	results, err := newTestFetcher(db).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "a b", PlainText("  a \n b "))
	assert.Equal(t, "Tom & Jerry", PlainText("<p>Tom &amp; Jerry</p>"))
	assert.Equal(t, "কথা", PlainText("<div><style>p{}</style>কথা</div>"))
	assert.Equal(t, "", PlainText(""))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "example.com", hostOf("https://example.com/feed.xml"))
	assert.Equal(t, "127.0.0.1:8080", hostOf("http://127.0.0.1:8080/rss"))
	assert.Equal(t, "not a url", hostOf("not a url"))
}

func TestHostLimiter(t *testing.T) {
	hl := newHostLimiter(time.Hour)
	require.NoError(t, hl.wait(context.Background(), "example.com"))

	// The next slot is an hour away; a short deadline cannot be met.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, hl.wait(ctx, "example.com"))

	// Other hosts are not affected.
	require.NoError(t, hl.wait(context.Background(), "other.example"))

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	assert.ErrorIs(t, hl.wait(cancelled, "example.com"), context.Canceled)
}
