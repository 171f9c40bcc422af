package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
)

// TreeService defines operations for building the folder tree
type TreeService interface {
	// GetTree assembles the user's folders and websites into one rooted tree.
	// A user without folders gets an empty virtual root.
	GetTree(ctx context.Context, userID string) (*models.FolderNode, error)

	// Search matches folder names and website title/link/description
	Search(ctx context.Context, userID, query string) ([]models.SearchResult, error)
}
