package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
)

// TagService resolves and mutates tags with two-tier (global/folder) scoping
type TagService interface {
	// ListTags resolves the tags applicable to a context
	ListTags(ctx context.Context, userID string, query *TagQuery) ([]models.Tag, error)

	// GetTag retrieves one tag the user can see
	GetTag(ctx context.Context, userID, tagID string) (*models.Tag, error)

	// CreateTag creates a tag at the head (position 0) of its scope
	CreateTag(ctx context.Context, userID string, req *CreateTagRequest) (*models.Tag, error)

	// RenameTag renames a tag, keeping names unique within its scope
	RenameTag(ctx context.Context, userID, tagID, name string) (*models.Tag, error)

	// DeleteTag deletes a tag and closes the gap in its scope
	DeleteTag(ctx context.Context, userID, tagID string) error

	// ReorderTags applies an absolute-position batch inside one scope
	ReorderTags(ctx context.Context, userID string, req *ReorderTagsRequest) error
}

// TagQuery selects which scope tiers to resolve
type TagQuery struct {
	Scope    models.TagQueryScope `json:"scope"`
	FolderID *string              `json:"folder_id,omitempty"`
}

// CreateTagRequest represents a tag creation request.
// FolderID nil (or "root") creates a global tag for the acting user.
type CreateTagRequest struct {
	Name     string  `json:"name" validate:"required"`
	FolderID *string `json:"folder_id,omitempty"`
}

// ReorderTagsRequest carries a position batch for one scope
type ReorderTagsRequest struct {
	FolderID  *string                 `json:"folder_id,omitempty"` // nil = the user's global tags
	Positions []models.PositionUpdate `json:"positions" validate:"required,dive"`
}
