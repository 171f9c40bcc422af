package auth

import (
	"context"
	"fmt"

	"savesite/internal/domain"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	"savesite/internal/domain/services"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// Folders and websites carry their owner; a tag belongs to its user (global
// tags) or to the owner of its folder (folder tags).
type OwnerBasedAuthorizer struct {
	folderRepo  bookmarksRepo.FolderRepository
	websiteRepo bookmarksRepo.WebsiteRepository
	tagRepo     bookmarksRepo.TagRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	folderRepo bookmarksRepo.FolderRepository,
	websiteRepo bookmarksRepo.WebsiteRepository,
	tagRepo bookmarksRepo.TagRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		folderRepo:  folderRepo,
		websiteRepo: websiteRepo,
		tagRepo:     tagRepo,
	}
}

// CanAccessFolder checks if user owns the folder
func (a *OwnerBasedAuthorizer) CanAccessFolder(ctx context.Context, userID, folderID string) error {
	folder, err := a.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return fmt.Errorf("get folder for auth: %w", err)
	}
	if folder.UserID != userID {
		return domain.Forbidden("folder", folderID)
	}
	return nil
}

// CanAccessWebsite checks if user owns the website
func (a *OwnerBasedAuthorizer) CanAccessWebsite(ctx context.Context, userID, websiteID string) error {
	website, err := a.websiteRepo.GetByID(ctx, websiteID)
	if err != nil {
		return fmt.Errorf("get website for auth: %w", err)
	}
	if website.OwnerID != userID {
		return domain.Forbidden("website", websiteID)
	}
	return nil
}

// CanAccessTag checks if user owns the tag's scope
func (a *OwnerBasedAuthorizer) CanAccessTag(ctx context.Context, userID, tagID string) error {
	tag, err := a.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return fmt.Errorf("get tag for auth: %w", err)
	}

	if tag.FolderID != nil {
		if err := a.CanAccessFolder(ctx, userID, *tag.FolderID); err != nil {
			return err
		}
		return nil
	}

	if tag.UserID == nil || *tag.UserID != userID {
		return domain.Forbidden("tag", tagID)
	}
	return nil
}

var _ services.ResourceAuthorizer = (*OwnerBasedAuthorizer)(nil)
