package backend

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bryan-buckman/newsfront/internal/metrics"
	"github.com/bryan-buckman/newsfront/internal/model"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 100
	statsTop          = 10
)

// dateLayout is the format of the from/to query parameters.
const dateLayout = "2006-01-02"

// SearchResponse is one page of search results.
type SearchResponse struct {
	Articles   []model.Article `json:"articles"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalPages int             `json:"total_pages"`
}

// handleSearch filters stored articles:
//
//	GET /api/news/search?q=&author=&location=&from=2025-06-01&to=2025-06-30&min_words=&max_words=&page=1&size=10
//
// from and to are inclusive dates (UTC).
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, page, size, err := parseSearch(q)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	articles, total, err := s.db.SearchArticles(f)
	if err != nil {
		s.logger.Error("search articles", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	metrics.ArticlesServed.Add(float64(len(articles)))
	writeJSON(w, http.StatusOK, SearchResponse{
		Articles:   articles,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	})
}

func parseSearch(q url.Values) (model.ArticleFilter, int, int, error) {
	f := model.ArticleFilter{
		Query:    q.Get("q"),
		Author:   q.Get("author"),
		Location: q.Get("location"),
	}

	page, err := intParam(q, "page", 1)
	if err != nil || page < 1 {
		return f, 0, 0, fmt.Errorf("page must be a positive integer")
	}
	size, err := intParam(q, "size", defaultSearchSize)
	if err != nil || size < 1 || size > maxSearchSize {
		return f, 0, 0, fmt.Errorf("size must be between 1 and %d", maxSearchSize)
	}
	if f.MinWords, err = intParam(q, "min_words", 0); err != nil {
		return f, 0, 0, err
	}
	if f.MaxWords, err = intParam(q, "max_words", 0); err != nil {
		return f, 0, 0, err
	}
	if v := q.Get("from"); v != "" {
		if f.From, err = time.Parse(dateLayout, v); err != nil {
			return f, 0, 0, fmt.Errorf("from must be YYYY-MM-DD")
		}
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, 0, 0, fmt.Errorf("to must be YYYY-MM-DD")
		}
		f.To = to.AddDate(0, 0, 1)
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, 0, 0, fmt.Errorf("from must not be after to")
	}

	f.Limit = size
	f.Offset = (page - 1) * size
	return f, page, size, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// handleStats summarises the stored articles.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.db.ArticleStats(statsTop)
	if err != nil {
		s.logger.Error("article stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}
