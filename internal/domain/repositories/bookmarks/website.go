package bookmarks

import (
	"context"

	models "savesite/internal/domain/models/bookmarks"
)

// WebsiteRepository defines data access operations for websites and their
// folder memberships. Position methods operate on a single folder scope.
type WebsiteRepository interface {
	// Create inserts the website row (memberships and tags are separate)
	Create(ctx context.Context, website *models.Website) error

	// GetByID retrieves a website with memberships and tags
	GetByID(ctx context.Context, id string) (*models.Website, error)

	// Update persists the editable fields
	Update(ctx context.Context, website *models.Website) error

	// SetStarred flips the starred flag
	SetStarred(ctx context.Context, id string, starred bool) error

	// Delete removes a website; memberships and tag links cascade
	Delete(ctx context.Context, id string) error

	// DeleteContainedIn deletes websites whose every membership is in folderIDs
	// and returns their ids
	DeleteContainedIn(ctx context.Context, ownerID string, folderIDs []string) ([]string, error)

	// ListByOwner retrieves every website of a user with memberships and tags
	ListByOwner(ctx context.Context, ownerID string) ([]models.Website, error)

	// ListByFolder retrieves a folder's websites ordered by position
	ListByFolder(ctx context.Context, folderID string) ([]models.Website, error)

	// ListStarred retrieves a user's starred websites ordered by position
	ListStarred(ctx context.Context, ownerID string) ([]models.Website, error)

	// AddMembership places a website in a folder at position
	AddMembership(ctx context.Context, websiteID, folderID string, position int) error

	// RemoveMembership takes a website out of a folder
	RemoveMembership(ctx context.Context, websiteID, folderID string) error

	// ShiftPositions adds delta to every position >= from in the folder
	ShiftPositions(ctx context.Context, folderID string, from, delta int) error

	// MaxPosition returns the highest position in the folder, or -1 if empty
	MaxPosition(ctx context.Context, folderID string) (int, error)

	// ListPositions returns (website id, position) for every member of the folder
	ListPositions(ctx context.Context, folderID string) ([]models.PositionUpdate, error)

	// SetPositions writes absolute positions for members of the folder
	SetPositions(ctx context.Context, folderID string, updates []models.PositionUpdate) error

	// SetTags replaces the website's tag set
	SetTags(ctx context.Context, websiteID string, tagIDs []string) error
}
