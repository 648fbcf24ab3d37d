// Package view holds the news list view: a one-shot asynchronous load of the
// article collection and the state it moves through.
package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bryan-buckman/newsfront/internal/model"
)

// State is the lifecycle state of a ListView.
type State int

const (
	Loading State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Source supplies the article collection.
type Source interface {
	FetchArticles(ctx context.Context) ([]model.Article, error)
}

// Snapshot is a point-in-time copy of a view's state.
type Snapshot struct {
	State    State
	Articles []model.Article
	Err      error
}

// ListView loads the article collection exactly once, starting when it is
// constructed. Only the loader goroutine writes state.
type ListView struct {
	logger *slog.Logger
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.RWMutex
	state    State
	articles []model.Article
	err      error
	closed   bool
}

// New creates a view and starts its load. The load is bound to ctx and to the
// view's own lifetime; Close cancels it.
func New(ctx context.Context, src Source, logger *slog.Logger) *ListView {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	v := &ListView{
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  Loading,
	}
	go v.load(ctx, src)
	return v
}

func (v *ListView) load(ctx context.Context, src Source) {
	defer close(v.done)

	articles, err := src.FetchArticles(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		// Torn down while the request was in flight; nobody reads this view.
		v.logger.Debug("discarding news response for closed view")
		return
	}
	if err != nil {
		v.state = Failed
		v.articles = nil
		v.err = err
		v.logger.Error("Error fetching news", "error", err)
		return
	}
	v.state = Loaded
	v.articles = articles
}

// Snapshot returns the current state without blocking on the load.
func (v *ListView) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s := Snapshot{State: v.state, Err: v.err}
	if v.articles != nil {
		s.Articles = make([]model.Article, len(v.articles))
		copy(s.Articles, v.articles)
	}
	return s
}

// Done is closed once the load has finished.
func (v *ListView) Done() <-chan struct{} {
	return v.done
}

// Wait blocks until the load finishes or ctx is done, then returns a snapshot.
func (v *ListView) Wait(ctx context.Context) Snapshot {
	select {
	case <-v.done:
	case <-ctx.Done():
	}
	return v.Snapshot()
}

// Close tears the view down: an in-flight request is cancelled and its
// result dropped. Close waits for the loader to exit and is idempotent.
func (v *ListView) Close() {
	if v.shutdown() {
		<-v.done
	}
}

// shutdown marks the view closed and cancels its load without waiting.
// It reports whether this call closed the view.
func (v *ListView) shutdown() bool {
	v.mu.Lock()
	wasClosed := v.closed
	v.closed = true
	v.mu.Unlock()

	v.cancel()
	return !wasClosed
}
