package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
)

// TagRepository defines data access operations for tags
type TagRepository interface {
	// Create inserts a tag and fills in its ID and timestamps
	Create(ctx context.Context, tag *models.Tag) error

	// GetByID retrieves a tag by ID
	GetByID(ctx context.Context, id string) (*models.Tag, error)

	// GetByIDs retrieves the tags that exist among ids
	GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error)

	// Rename changes a tag's name
	Rename(ctx context.Context, id, name string) error

	// Delete removes a tag; website links cascade
	Delete(ctx context.Context, id string) error

	// FindByName returns the tag named name in scope, or nil when absent
	FindByName(ctx context.Context, scope models.TagScope, name string) (*models.Tag, error)

	// List resolves the filter (OR of the supplied keys) ordered by position
	List(ctx context.Context, filter models.TagFilter) ([]models.Tag, error)

	// ShiftPositions adds delta to every position >= from in scope
	ShiftPositions(ctx context.Context, scope models.TagScope, from, delta int) error

	// ListPositions returns (tag id, position) for every tag in scope
	ListPositions(ctx context.Context, scope models.TagScope) ([]models.PositionUpdate, error)

	// SetPositions writes absolute positions
	SetPositions(ctx context.Context, updates []models.PositionUpdate) error
}
