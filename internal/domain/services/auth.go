package services

import "context"

// ResourceAuthorizer checks if a user can act on a resource.
// Current implementation: ownership-based (folder.user_id / website.owner_id).
//
// Services call the authorizer before their first write. Missing resources
// return domain.ErrNotFound, resources owned by someone else domain.ErrForbidden.
type ResourceAuthorizer interface {
	// CanAccessFolder checks the user owns the folder
	CanAccessFolder(ctx context.Context, userID, folderID string) error

	// CanAccessWebsite checks the user owns the website
	CanAccessWebsite(ctx context.Context, userID, websiteID string) error

	// CanAccessTag checks the user owns the tag's scope (global tag or tag of an owned folder)
	CanAccessTag(ctx context.Context, userID, tagID string) error
}
