package contacts

import (
	"context"
	"fmt"
	"time"

	"github.com/fastmailctl/fastmailctl/internal/carddav"
)

// Fetcher is the slice of the CardDAV client the manager needs.
type Fetcher interface {
	AllContacts(ctx context.Context) ([]carddav.Contact, error)
}

// Manager serves contact lists and searches from the cache, refreshing
// from CardDAV when the cache is empty, stale, or a refresh is forced.
type Manager struct {
	fetcher Fetcher
	cache   *Cache
	maxAge  time.Duration
}

// NewManager wires a CardDAV fetcher to a cache. maxAge of zero means
// the cache never goes stale on its own.
func NewManager(fetcher Fetcher, cache *Cache, maxAge time.Duration) *Manager {
	return &Manager{fetcher: fetcher, cache: cache, maxAge: maxAge}
}

// List returns all contacts, refreshing the cache first if needed.
func (m *Manager) List(ctx context.Context, refresh bool) ([]carddav.Contact, error) {
	if err := m.ensureFresh(ctx, refresh); err != nil {
		return nil, err
	}
	return m.cache.All(ctx)
}

// Search returns contacts matching the query, refreshing the cache
// first if needed.
func (m *Manager) Search(ctx context.Context, query string, refresh bool) ([]carddav.Contact, error) {
	if err := m.ensureFresh(ctx, refresh); err != nil {
		return nil, err
	}
	return m.cache.Search(ctx, query)
}

func (m *Manager) ensureFresh(ctx context.Context, refresh bool) error {
	if !refresh {
		syncedAt, err := m.cache.SyncedAt(ctx)
		if err != nil {
			return err
		}
		if !syncedAt.IsZero() && (m.maxAge == 0 || time.Since(syncedAt) < m.maxAge) {
			return nil
		}
	}

	contacts, err := m.fetcher.AllContacts(ctx)
	if err != nil {
		return fmt.Errorf("fetching contacts: %w", err)
	}
	if err := m.cache.Replace(ctx, contacts); err != nil {
		return fmt.Errorf("caching contacts: %w", err)
	}
	return nil
}
