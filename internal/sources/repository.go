package sources

import (
	"context"

	"github.com/Belphemur/MediaDownloader/internal/models"
)

// Repository defines the interface for the persisted download list
type Repository interface {
	// Insert adds a new source. The URL must not already be in the list.
	Insert(ctx context.Context, item models.SourceItem) (*models.SourceItem, error)

	// List returns every source, newest first
	List(ctx context.Context) ([]models.SourceItem, error)

	// Get returns the source stored under url
	Get(ctx context.Context, url string) (*models.SourceItem, error)

	// UpdateStatus moves a source to a new status along an allowed transition
	UpdateStatus(ctx context.Context, url string, status models.SourceStatus) (*models.SourceItem, error)

	// Restart puts a finished source back to ready so it can be downloaded again
	Restart(ctx context.Context, url string) (*models.SourceItem, error)

	// UpdateTitle renames a source
	UpdateTitle(ctx context.Context, url, title string) (*models.SourceItem, error)

	// UpdateURL changes the URL a source is keyed by
	UpdateURL(ctx context.Context, url, newURL string) (*models.SourceItem, error)

	// Remove deletes the sources with the given URLs and returns how many were removed
	Remove(ctx context.Context, urls ...string) (int, error)
}
