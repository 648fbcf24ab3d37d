package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bryan-buckman/newsfront/internal/model"
)

const articleColumns = "headline, url, author, location, content, published_at, scraped_at, word_count"

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// filterClause turns f into a WHERE clause (empty when f matches all) and
// its arguments.
func filterClause(f model.ArticleFilter) (string, []any) {
	var conds []string
	var args []any
	if q := strings.TrimSpace(f.Query); q != "" {
		conds = append(conds, `(LOWER(headline) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`)
		args = append(args, containsPattern(q), containsPattern(q))
	}
	if a := strings.TrimSpace(f.Author); a != "" {
		conds = append(conds, `LOWER(author) LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(a))
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		conds = append(conds, "location = ?")
		args = append(args, l)
	}
	if !f.From.IsZero() {
		conds = append(conds, "published_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "published_at < ?")
		args = append(args, f.To.UTC())
	}
	if f.MinWords > 0 {
		conds = append(conds, "word_count >= ?")
		args = append(args, f.MinWords)
	}
	if f.MaxWords > 0 {
		conds = append(conds, "word_count <= ?")
		args = append(args, f.MaxWords)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ArticleExists reports whether an article with url is stored.
func (db *DB) ArticleExists(url string) (bool, error) {
	var one int
	err := db.queryRow("SELECT 1 FROM articles WHERE url = ?", url).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// SearchArticles returns one page of articles matching f, newest published
// first, and the total number of matches.
func (db *DB) SearchArticles(f model.ArticleFilter) ([]model.Article, int64, error) {
	where, args := filterClause(f)

	var total int64
	if err := db.queryRow("SELECT COUNT(*) FROM articles"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	pageArgs := append(append([]any{}, args...), limit, max(f.Offset, 0))
	rows, err := db.query("SELECT "+articleColumns+" FROM articles"+where+
		" ORDER BY published_at DESC NULLS LAST, id DESC LIMIT ? OFFSET ?", pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// ArticleStats summarises the stored articles, listing up to top authors
// and locations by article count.
func (db *DB) ArticleStats(top int) (*model.Stats, error) {
	st := &model.Stats{
		TopAuthors:   []model.AuthorCount{},
		TopLocations: []model.LocationCount{},
	}

	err := db.queryRow(`SELECT COUNT(*), COALESCE(AVG(word_count), 0), COALESCE(MIN(word_count), 0),
		COALESCE(MAX(word_count), 0), COALESCE(SUM(word_count), 0) FROM articles`).
		Scan(&st.TotalArticles, &st.WordCount.Average, &st.WordCount.Min, &st.WordCount.Max, &st.WordCount.Total)
	if err != nil {
		return nil, fmt.Errorf("word count stats: %w", err)
	}
	st.WordCount.Average = float64(int64(st.WordCount.Average*100+0.5)) / 100

	if err := db.queryRow("SELECT COUNT(DISTINCT " + db.d.publishDay + ") FROM articles").Scan(&st.ActiveDays); err != nil {
		return nil, fmt.Errorf("count active days: %w", err)
	}

	if err := db.topCounts("author", top, func(name string, n int64) {
		st.TopAuthors = append(st.TopAuthors, model.AuthorCount{Author: name, Count: n})
	}); err != nil {
		return nil, err
	}
	if err := db.topCounts("location", top, func(name string, n int64) {
		st.TopLocations = append(st.TopLocations, model.LocationCount{Location: name, Count: n})
	}); err != nil {
		return nil, err
	}
	return st, nil
}

// topCounts groups articles by column (a fixed identifier, never user input).
func (db *DB) topCounts(column string, limit int, add func(string, int64)) error {
	rows, err := db.query(fmt.Sprintf(
		"SELECT %[1]s, COUNT(*) AS n FROM articles WHERE %[1]s <> '' GROUP BY %[1]s ORDER BY n DESC, %[1]s LIMIT ?", column), limit)
	if err != nil {
		return fmt.Errorf("top %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return err
		}
		add(name, n)
	}
	return rows.Err()
}
