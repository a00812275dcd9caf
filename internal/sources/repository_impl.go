package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Belphemur/MediaDownloader/internal/apperrors"
	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/models"
	"github.com/Belphemur/MediaDownloader/internal/store"
)

const keyPrefix = "source:"

// StoreRepository persists sources as JSON values in a store.Store, one key per URL.
// Every read-modify-write runs under a single mutex.
type StoreRepository struct {
	mu    sync.Mutex
	store store.Store
}

// NewRepository creates a repository backed by s
func NewRepository(s store.Store) *StoreRepository {
	return &StoreRepository{store: s}
}

func key(url string) string {
	return keyPrefix + url
}

// Insert adds item to the list
func (r *StoreRepository) Insert(ctx context.Context, item models.SourceItem) (*models.SourceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.URL == "" {
		return nil, fmt.Errorf("source URL is required")
	}
	if _, ok, err := r.store.Get(ctx, key(item.URL)); err != nil {
		return nil, fmt.Errorf("failed to check for existing source: %w", err)
	} else if ok {
		return nil, &apperrors.ErrDuplicateSource{URL: item.URL}
	}
	if item.Status == "" {
		item.Status = models.SourceStatusReady
	}
	if !item.Status.Valid() {
		return nil, fmt.Errorf("invalid source status %q", item.Status)
	}

	if err := r.save(ctx, &item); err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	logger.Debug().Str("url", item.URL).Str("title", item.Title).Msg("Source added")
	return &item, nil
}

// List returns every source ordered by creation time, newest first
func (r *StoreRepository) List(ctx context.Context) ([]models.SourceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys, err := r.store.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	items := make([]models.SourceItem, 0, len(keys))
	for _, k := range keys {
		raw, ok, err := r.store.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("failed to read source %s: %w", k, err)
		}
		if !ok {
			continue
		}
		var item models.SourceItem
		if err := json.Unmarshal(raw, &item); err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("key", k).Msg("Skipping unreadable source record")
			continue
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}

// Get returns the source for url, or an *apperrors.ErrNotFound
func (r *StoreRepository) Get(ctx context.Context, url string) (*models.SourceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, url)
}

// UpdateStatus applies a status transition. Transitions outside models.CanTransition
// return *apperrors.ErrInvalidTransition and leave the record untouched.
func (r *StoreRepository) UpdateStatus(ctx context.Context, url string, status models.SourceStatus) (*models.SourceItem, error) {
	return r.update(ctx, url, func(item *models.SourceItem) error {
		if !models.CanTransition(item.Status, status) {
			return &apperrors.ErrInvalidTransition{From: item.Status.String(), To: status.String()}
		}
		item.Status = status
		return nil
	})
}

// Restart starts a new lifecycle for a finished source. Only success and failed
// sources can be restarted; a downloading source must be reset through UpdateStatus.
func (r *StoreRepository) Restart(ctx context.Context, url string) (*models.SourceItem, error) {
	return r.update(ctx, url, func(item *models.SourceItem) error {
		if !item.Status.IsFinished() {
			return &apperrors.ErrInvalidTransition{From: item.Status.String(), To: models.SourceStatusReady.String()}
		}
		item.Status = models.SourceStatusReady
		return nil
	})
}

// UpdateTitle renames the source stored under url
func (r *StoreRepository) UpdateTitle(ctx context.Context, url, title string) (*models.SourceItem, error) {
	return r.update(ctx, url, func(item *models.SourceItem) error {
		item.Title = title
		return nil
	})
}

// UpdateURL re-keys a source. The new URL must not belong to another source.
func (r *StoreRepository) UpdateURL(ctx context.Context, url, newURL string) (*models.SourceItem, error) {
	if newURL == "" {
		return nil, fmt.Errorf("source URL is required")
	}
	if newURL == url {
		return r.Get(ctx, url)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := r.load(ctx, url)
	if err != nil {
		return nil, err
	}
	if _, ok, err := r.store.Get(ctx, key(newURL)); err != nil {
		return nil, fmt.Errorf("failed to check for existing source: %w", err)
	} else if ok {
		return nil, &apperrors.ErrDuplicateSource{URL: newURL}
	}

	item.URL = newURL
	if err := r.save(ctx, item); err != nil {
		return nil, err
	}
	if _, err := r.store.Delete(ctx, key(url)); err != nil {
		return nil, fmt.Errorf("failed to remove old source key: %w", err)
	}
	return item, nil
}

// Remove deletes the given URLs. Unknown URLs are ignored.
func (r *StoreRepository) Remove(ctx context.Context, urls ...string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, url := range urls {
		ok, err := r.store.Delete(ctx, key(url))
		if err != nil {
			return removed, fmt.Errorf("failed to remove source %s: %w", url, err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

func (r *StoreRepository) update(ctx context.Context, url string, mutate func(*models.SourceItem) error) (*models.SourceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := r.load(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := mutate(item); err != nil {
		return nil, err
	}
	if err := r.save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *StoreRepository) load(ctx context.Context, url string) (*models.SourceItem, error) {
	raw, ok, err := r.store.Get(ctx, key(url))
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if !ok {
		return nil, apperrors.NewSourceNotFoundError(url)
	}
	var item models.SourceItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to decode source %s: %w", url, err)
	}
	return &item, nil
}

func (r *StoreRepository) save(ctx context.Context, item *models.SourceItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode source: %w", err)
	}
	if err := r.store.Set(ctx, key(item.URL), raw); err != nil {
		return fmt.Errorf("failed to save source: %w", err)
	}
	return nil
}
