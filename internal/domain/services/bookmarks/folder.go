package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
	"savesite/internal/httputil"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a folder under an owned parent or at top level
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves an owned folder
	GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error)

	// ListFolders lists every folder of the user (flat)
	ListFolders(ctx context.Context, userID string) ([]models.Folder, error)

	// UpdateFolder renames and/or re-parents a folder
	UpdateFolder(ctx context.Context, userID, folderID string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder deletes a folder with its whole subtree
	DeleteFolder(ctx context.Context, userID, folderID string) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	UserID   string  `json:"-"` // Set by handler from auth context, not from request body
	Name     string  `json:"name" validate:"required"`
	ParentID *string `json:"parent_id,omitempty"` // null, "" or "root" for top level
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name     *string                 `json:"name,omitempty"`      // rename
	ParentID httputil.OptionalString `json:"parent_id,omitempty"` // move; null or "root" = top level
}
