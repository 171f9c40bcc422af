package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a folder and fills in its ID and timestamps
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID (no owner scoping)
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update persists name and parent changes
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes a folder; descendants, memberships and folder tags cascade
	Delete(ctx context.Context, id string) error

	// ListByUser retrieves every folder owned by a user (flat list)
	ListByUser(ctx context.Context, userID string) ([]models.Folder, error)

	// ListChildren lists immediate child folders (parentID nil = top level)
	ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error)

	// GetSubtreeIDs returns the folder and all of its descendants
	GetSubtreeIDs(ctx context.Context, id string) ([]string, error)
}
