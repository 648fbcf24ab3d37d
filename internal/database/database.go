package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bryan-buckman/newsfront/internal/model"
	_ "modernc.org/sqlite"
)

// dialect holds what differs between the SQL backends.
type dialect struct {
	name       string
	concurrent bool
	numbered   bool   // $1, $2, ... placeholders instead of ?
	publishDay string // expression for published_at's UTC date as YYYY-MM-DD
}

// modernc stores times as text beginning with the date; all writes are UTC,
// so the first ten bytes are the UTC date.
var sqliteDialect = dialect{name: "SQLite", publishDay: "substr(published_at, 1, 10)"}

// DB is a Store over database/sql. Queries are written with ? placeholders
// and rebound for the backend.
type DB struct {
	conn *sql.DB
	d    dialect
}

// Ensure DB implements Store interface.
var _ Store = (*DB)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	url TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	last_fetched DATETIME,
	last_error TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id INTEGER NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
	url TEXT NOT NULL UNIQUE,
	headline TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	published_at DATETIME,
	scraped_at DATETIME NOT NULL,
	word_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC);
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; WAL lets readers proceed meanwhile.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	db := &DB{conn: conn, d: sqliteDialect}
	if err := db.migrate(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) migrate(schema string) error {
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	_, err := db.exec("INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING",
		model.SettingPollingInterval, strconv.Itoa(MinPollingIntervalMinutes))
	return err
}

// rebind rewrites ? placeholders for backends that number them.
func (db *DB) rebind(query string) string {
	if !db.d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(db.rebind(query), args...)
}

func (db *DB) query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(db.rebind(query), args...)
}

func (db *DB) queryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(db.rebind(query), args...)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseType returns the database backend name.
func (db *DB) DatabaseType() string {
	return db.d.name
}

// SupportsHighConcurrency reports whether concurrent writers are safe.
// SQLite serialises them.
func (db *DB) SupportsHighConcurrency() bool {
	return db.d.concurrent
}

// --- Sources ---

const sourceColumns = "id, title, url, category, location, last_fetched, last_error"

// GetSources returns all sources ordered by title.
func (db *DB) GetSources() ([]model.Source, error) {
	rows, err := db.query("SELECT " + sourceColumns + " FROM sources ORDER BY title, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSources(rows)
}

// GetSourceByID returns one source, or sql.ErrNoRows.
func (db *DB) GetSourceByID(sourceID int64) (*model.Source, error) {
	rows, err := db.query("SELECT "+sourceColumns+" FROM sources WHERE id = ?", sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sources, err := scanSources(rows)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, sql.ErrNoRows
	}
	return &sources[0], nil
}

// GetOrCreateSource finds a source by URL, or creates it. The bool reports
// whether it was created.
func (db *DB) GetOrCreateSource(title, url, category, location string) (int64, bool, error) {
	var id int64
	err := db.queryRow("SELECT id FROM sources WHERE url = ?", url).Scan(&id)
	if !errors.Is(err, sql.ErrNoRows) {
		return id, false, err
	}
	err = db.queryRow("INSERT INTO sources (title, url, category, location) VALUES (?, ?, ?, ?) RETURNING id",
		title, url, category, location).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("insert source: %w", err)
	}
	return id, true, nil
}

// UpdateSourceLastFetched records a successful fetch and clears the last error.
func (db *DB) UpdateSourceLastFetched(sourceID int64, t time.Time) error {
	_, err := db.exec("UPDATE sources SET last_fetched = ?, last_error = '' WHERE id = ?", t.UTC(), sourceID)
	return err
}

// UpdateSourceTitle renames a source.
func (db *DB) UpdateSourceTitle(sourceID int64, title string) error {
	_, err := db.exec("UPDATE sources SET title = ? WHERE id = ?", title, sourceID)
	return err
}

// UpdateSourceError records the last fetch error for a source.
func (db *DB) UpdateSourceError(sourceID int64, errMsg string) error {
	_, err := db.exec("UPDATE sources SET last_error = ? WHERE id = ?", errMsg, sourceID)
	return err
}

// DeleteSource removes a source and its articles.
func (db *DB) DeleteSource(sourceID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// SQLite leaves foreign keys unenforced by default, so no cascade.
	if _, err := tx.Exec(db.rebind("DELETE FROM articles WHERE source_id = ?"), sourceID); err != nil {
		return err
	}
	if _, err := tx.Exec(db.rebind("DELETE FROM sources WHERE id = ?"), sourceID); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Articles ---

// AddArticle inserts an article unless its URL is already stored.
// Returns the ID and whether it was new.
func (db *DB) AddArticle(a *model.StoredArticle) (int64, bool, error) {
	var id int64
	err := db.queryRow(`
		INSERT INTO articles (source_id, url, headline, author, location, content, published_at, scraped_at, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING
		RETURNING id`,
		a.SourceID, a.URL, a.Headline, a.Author, a.Location, a.Content,
		a.Published.UTC(), a.FetchedTime.UTC(), a.WordCount).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// LatestArticles returns up to limit articles, newest published first.
func (db *DB) LatestArticles(limit int) ([]model.Article, error) {
	rows, err := db.query(`
		SELECT `+articleColumns+`
		FROM articles ORDER BY published_at DESC NULLS LAST, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// CountArticles returns the number of stored articles.
func (db *DB) CountArticles() (int64, error) {
	var n int64
	err := db.queryRow("SELECT COUNT(*) FROM articles").Scan(&n)
	return n, err
}

// DeleteArticlesBefore removes articles published before t.
func (db *DB) DeleteArticlesBefore(t time.Time) (int64, error) {
	res, err := db.exec("DELETE FROM articles WHERE published_at < ?", t.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Settings ---

// GetSetting retrieves a setting value.
func (db *DB) GetSetting(key string) (string, error) {
	var val string
	err := db.queryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	return val, err
}

// SetSetting saves a setting.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.exec("INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value", key, value)
	return err
}

// GetPollingInterval returns the polling interval in minutes, with a minimum of 15.
func (db *DB) GetPollingInterval() (int, error) {
	return parsePollingInterval(db.GetSetting(model.SettingPollingInterval)), nil
}
