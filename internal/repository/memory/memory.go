// Package memory implements the in-memory registry that owns the short
// code to URL mapping. Records live for the lifetime of the process; expired
// records are kept so their statistics stay queryable.
package memory

import (
	"context"
	"sync"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

// URLRepository stores URL records keyed by short code. A single lock guards
// both the map and the mutable click fields of every record, so the click
// counter can never be observed apart from the click list it counts.
type URLRepository struct {
	mu   sync.RWMutex
	urls map[string]*entity.URL
}

// NewURLRepository returns an empty registry.
func NewURLRepository() *URLRepository {
	return &URLRepository{
		urls: make(map[string]*entity.URL),
	}
}

// Save inserts a new URL record. The existence check and the insert happen
// under one lock, so concurrent saves of the same short code have exactly one
// winner; the loser gets entity.ErrShortCodeExists.
func (r *URLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.urls[url.ShortCode]; exists {
		return nil, entity.ErrShortCodeExists
	}

	stored := url.Clone()
	r.urls[url.ShortCode] = stored

	return stored.Clone(), nil
}

// GetByShortCode retrieves a URL record by its short code. It returns a deep
// copy, so the caller cannot mutate registry state. Expired records are
// returned as-is; expiry policy belongs to the caller.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, exists := r.urls[shortCode]
	if !exists {
		return nil, entity.ErrURLNotFound
	}

	return url.Clone(), nil
}

// RecordClick appends a click event to the record's history and increments
// its counter as one atomic step. It returns entity.ErrURLNotFound if the
// record is gone by the time the click arrives.
func (r *URLRepository) RecordClick(ctx context.Context, shortCode string, click entity.ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	url, exists := r.urls[shortCode]
	if !exists {
		return entity.ErrURLNotFound
	}

	url.Clicks = append(url.Clicks, click)
	url.ClickCount++

	return nil
}
