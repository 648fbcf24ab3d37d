package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/newsfront/internal/database"
	"github.com/bryan-buckman/newsfront/internal/model"
)

func newTestStore(t *testing.T, n int) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sid, _, err := db.GetOrCreateSource("Politics", "https://example.com/rss", "politics", "Dhaka")
	require.NoError(t, err)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, _, err := db.AddArticle(&model.StoredArticle{
			Article: model.Article{
				Headline: "story " + string(rune('a'+i)),
				URL:      "https://example.com/" + string(rune('a'+i)),
				Author:   "Staff",
				Location: "Dhaka",
				Content:  "body",
			},
			SourceID:    sid,
			Published:   base.Add(time.Duration(i) * time.Hour),
			FetchedTime: base,
		})
		require.NoError(t, err)
	}
	return db
}

type failingStore struct {
	database.Store
}

func (failingStore) LatestArticles(int) ([]model.Article, error) {
	return nil, errors.New("index unavailable")
}

func (failingStore) CountArticles() (int64, error) {
	return 0, errors.New("index unavailable")
}

func (failingStore) DatabaseType() string { return "broken" }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleNews_NewestFirstCapped(t *testing.T) {
	s := New(newTestStore(t, 5), Options{PageSize: 3, RateLimitRPS: 100, RateLimitBurst: 100}, nil)

	rec := get(t, s, "/api/news/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var articles []model.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 3)
	assert.Equal(t, "story e", articles[0].Headline)
	assert.Equal(t, "story d", articles[1].Headline)
	assert.Equal(t, "story c", articles[2].Headline)
}

func TestHandleNews_EmptyIsArray(t *testing.T) {
	s := New(newTestStore(t, 0), Options{RateLimitRPS: 100, RateLimitBurst: 100}, nil)

	rec := get(t, s, "/api/news/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleNews_StoreError(t *testing.T) {
	s := New(failingStore{}, Options{RateLimitRPS: 100, RateLimitBurst: 100}, nil)

	rec := get(t, s, "/api/news/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"index unavailable"}`, rec.Body.String())
}

func TestHandleNews_RateLimited(t *testing.T) {
	s := New(newTestStore(t, 1), Options{RateLimitRPS: 1, RateLimitBurst: 1}, nil)

	assert.Equal(t, http.StatusOK, get(t, s, "/api/news/").Code)
	rec := get(t, s, "/api/news/")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestHealth(t *testing.T) {
	s := New(newTestStore(t, 2), Options{RateLimitRPS: 1, RateLimitBurst: 1}, nil)
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"SQLite","articles":2}`, rec.Body.String())

	broken := New(failingStore{}, Options{RateLimitRPS: 1, RateLimitBurst: 1}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, broken, "/healthz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(newTestStore(t, 0), Options{RateLimitRPS: 1, RateLimitBurst: 1}, nil)
	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "newsapi_articles_served_total")
}
