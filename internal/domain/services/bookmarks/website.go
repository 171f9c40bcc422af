package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
	"savesite/internal/httputil"
)

// WebsiteService handles website business logic, including ordinal
// position maintenance inside folders
type WebsiteService interface {
	// CreateWebsite creates a website at the head (position 0) of a folder
	CreateWebsite(ctx context.Context, req *CreateWebsiteRequest) (*models.Website, error)

	// GetWebsite retrieves an owned website
	GetWebsite(ctx context.Context, userID, websiteID string) (*models.Website, error)

	// UpdateWebsite applies a partial update; TagIDs replaces the tag set when present
	UpdateWebsite(ctx context.Context, userID, websiteID string, req *UpdateWebsiteRequest) (*models.Website, error)

	// DeleteWebsite deletes a website and closes the gap in every folder it was in
	DeleteWebsite(ctx context.Context, userID, websiteID string) error

	// MoveWebsite moves a website from one folder to the tail of another
	MoveWebsite(ctx context.Context, userID, websiteID string, req *MoveWebsiteRequest) (*models.Website, error)

	// AddToFolder adds a website to the tail of another folder
	AddToFolder(ctx context.Context, userID, websiteID, folderID string) (*models.Website, error)

	// RemoveFromFolder takes a website out of one of its folders (never the last)
	RemoveFromFolder(ctx context.Context, userID, websiteID, folderID string) (*models.Website, error)

	// SetStarred flips the starred flag
	SetStarred(ctx context.Context, userID, websiteID string, starred bool) error

	// ListStarred lists the user's starred websites
	ListStarred(ctx context.Context, userID string) ([]models.Website, error)

	// ListByFolder lists a folder's websites ordered by position
	ListByFolder(ctx context.Context, userID, folderID string) ([]models.Website, error)

	// ReorderWebsites applies an absolute-position batch inside one folder
	ReorderWebsites(ctx context.Context, userID, folderID string, updates []models.PositionUpdate) error
}

// CreateWebsiteRequest represents a website creation request
type CreateWebsiteRequest struct {
	OwnerID     string   `json:"-"` // Set by handler from auth context
	Title       string   `json:"title" validate:"required"`
	Link        string   `json:"link" validate:"required"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Icon        *string  `json:"icon,omitempty"`
	Color       *string  `json:"color,omitempty"`
	FolderID    string   `json:"folder_id" validate:"required"`
	TagIDs      []string `json:"tag_ids,omitempty"`
}

// UpdateWebsiteRequest represents a partial website update.
// Nullable fields are tri-state: absent keeps, null clears, value sets.
type UpdateWebsiteRequest struct {
	Title       *string                 `json:"title,omitempty"`
	Link        *string                 `json:"link,omitempty"`
	Description httputil.OptionalString `json:"description"`
	Image       httputil.OptionalString `json:"image"`
	Icon        httputil.OptionalString `json:"icon"`
	Color       httputil.OptionalString `json:"color"`
	TagIDs      *[]string               `json:"tag_ids,omitempty"`
}

// MoveWebsiteRequest represents a move between folders.
// FromFolderID may be omitted when the website is in exactly one folder.
type MoveWebsiteRequest struct {
	FromFolderID *string `json:"from_folder_id,omitempty"`
	ToFolderID   string  `json:"to_folder_id" validate:"required"`
}
