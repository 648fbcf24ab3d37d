package view

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bryan-buckman/newsfront/internal/metrics"
)

// Registry keeps live views addressable by ID so a page can be rendered
// again without a new fetch. Evicted views are cancelled; their loaders exit
// in the background.
type Registry struct {
	src    Source
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	views  *expirable.LRU[string, *ListView]
}

// NewRegistry creates a registry holding at most size views (0 = unbounded),
// each for at most ttl (0 = no expiry).
func NewRegistry(src Source, logger *slog.Logger, size int, ttl time.Duration) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		src:    src,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	r.views = expirable.NewLRU[string, *ListView](size, r.evict, ttl)
	return r
}

// evict runs under the LRU's lock, so it must not wait for the loader.
func (r *Registry) evict(id string, v *ListView) {
	v.shutdown()
	metrics.ViewsActive.Dec()
	r.logger.Debug("view closed", "view_id", id)
}

// Mount creates a view, which starts loading immediately, and registers it.
func (r *Registry) Mount() (string, *ListView) {
	id := uuid.NewString()
	v := New(r.ctx, r.src, r.logger.With("view_id", id))
	metrics.ViewsActive.Inc()
	r.views.Add(id, v)
	return id, v
}

// Get returns a live view.
func (r *Registry) Get(id string) (*ListView, bool) {
	return r.views.Get(id)
}

// Remove cancels and forgets a view. It reports whether the view was live.
func (r *Registry) Remove(id string) bool {
	return r.views.Remove(id)
}

// Len returns the number of live views.
func (r *Registry) Len() int {
	return r.views.Len()
}

// Close tears down every view.
func (r *Registry) Close() {
	r.cancel()
	r.views.Purge()
}
