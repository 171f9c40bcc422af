package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"savesite/internal/config"
	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	"savesite/internal/domain/repositories"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	"savesite/internal/domain/services"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
)

type websiteService struct {
	websiteRepo bookmarksRepo.WebsiteRepository
	tagRepo     bookmarksRepo.TagRepository
	txManager   repositories.TransactionManager
	locker      repositories.ScopeLocker
	authorizer  services.ResourceAuthorizer
	logger      *slog.Logger
}

// NewWebsiteService creates a new website service
func NewWebsiteService(
	websiteRepo bookmarksRepo.WebsiteRepository,
	tagRepo bookmarksRepo.TagRepository,
	txManager repositories.TransactionManager,
	locker repositories.ScopeLocker,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) bookmarksSvc.WebsiteService {
	return &websiteService{
		websiteRepo: websiteRepo,
		tagRepo:     tagRepo,
		txManager:   txManager,
		locker:      locker,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// CreateWebsite creates a website at the head of its folder: every existing
// member shifts down by one and the new website takes position 0.
func (s *websiteService) CreateWebsite(ctx context.Context, req *bookmarksSvc.CreateWebsiteRequest) (*models.Website, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Link = strings.TrimSpace(req.Link)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if models.IsRootRef(&req.FolderID) {
		return nil, domain.Invalid("a website must be saved inside a folder")
	}

	if err := s.authorizer.CanAccessFolder(ctx, req.OwnerID, req.FolderID); err != nil {
		return nil, err
	}
	if err := s.checkTags(ctx, req.OwnerID, req.TagIDs); err != nil {
		return nil, err
	}

	website := &models.Website{
		Title:       req.Title,
		Link:        req.Link,
		Description: req.Description,
		Image:       req.Image,
		Icon:        req.Icon,
		Color:       req.Color,
		OwnerID:     req.OwnerID,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockScope(txCtx, models.WebsiteScopeKey(req.FolderID)); err != nil {
			return err
		}
		if err := s.websiteRepo.ShiftPositions(txCtx, req.FolderID, 0, 1); err != nil {
			return err
		}
		if err := s.websiteRepo.Create(txCtx, website); err != nil {
			return err
		}
		if err := s.websiteRepo.AddMembership(txCtx, website.ID, req.FolderID, 0); err != nil {
			return err
		}
		if len(req.TagIDs) > 0 {
			return s.websiteRepo.SetTags(txCtx, website.ID, req.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("website created",
		"id", website.ID,
		"title", website.Title,
		"folder_id", req.FolderID,
		"owner_id", website.OwnerID,
	)

	return s.reload(ctx, website.ID, req.FolderID)
}

// GetWebsite retrieves a website
func (s *websiteService) GetWebsite(ctx context.Context, userID, websiteID string) (*models.Website, error) {
	if err := s.authorizer.CanAccessWebsite(ctx, userID, websiteID); err != nil {
		return nil, err
	}
	return s.websiteRepo.GetByID(ctx, websiteID)
}

// UpdateWebsite applies a partial update
func (s *websiteService) UpdateWebsite(ctx context.Context, userID, websiteID string, req *bookmarksSvc.UpdateWebsiteRequest) (*models.Website, error) {
	if err := s.authorizer.CanAccessWebsite(ctx, userID, websiteID); err != nil {
		return nil, err
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.TagIDs != nil {
		if err := s.checkTags(ctx, userID, *req.TagIDs); err != nil {
			return nil, err
		}
	}

	website, err := s.websiteRepo.GetByID(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		website.Title = strings.TrimSpace(*req.Title)
	}
	if req.Link != nil {
		website.Link = strings.TrimSpace(*req.Link)
	}
	req.Description.Apply(&website.Description)
	req.Image.Apply(&website.Image)
	req.Icon.Apply(&website.Icon)
	req.Color.Apply(&website.Color)

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.websiteRepo.Update(txCtx, website); err != nil {
			return err
		}
		if req.TagIDs != nil {
			return s.websiteRepo.SetTags(txCtx, websiteID, *req.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("website updated", "id", websiteID, "title", website.Title)

	return s.websiteRepo.GetByID(ctx, websiteID)
}

// DeleteWebsite deletes a website and closes the gap it leaves in every folder
func (s *websiteService) DeleteWebsite(ctx context.Context, userID, websiteID string) error {
	if err := s.authorizer.CanAccessWebsite(ctx, userID, websiteID); err != nil {
		return err
	}

	var memberships []models.Membership
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		website, err := s.lockMemberships(txCtx, websiteID)
		if err != nil {
			return err
		}
		memberships = website.Memberships

		if err := s.websiteRepo.Delete(txCtx, websiteID); err != nil {
			return err
		}
		for _, m := range memberships {
			if err := s.websiteRepo.ShiftPositions(txCtx, m.FolderID, m.Position+1, -1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("website deleted", "id", websiteID, "folder_count", len(memberships))
	return nil
}

// MoveWebsite moves a website from one folder to the tail of another.
// The source may be omitted when the website is filed in exactly one folder.
func (s *websiteService) MoveWebsite(ctx context.Context, userID, websiteID string, req *bookmarksSvc.MoveWebsiteRequest) (*models.Website, error) {
	if err := s.authorizer.CanAccessWebsite(ctx, userID, websiteID); err != nil {
		return nil, err
	}
	if models.IsRootRef(&req.ToFolderID) {
		return nil, domain.Invalid("a website must be moved into a folder")
	}
	if err := s.authorizer.CanAccessFolder(ctx, userID, req.ToFolderID); err != nil {
		return nil, err
	}

	var from string
	var newPos int
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		website, err := s.websiteRepo.GetByID(txCtx, websiteID)
		if err != nil {
			return err
		}

		from, err = sourceFolder(website, req.FromFolderID)
		if err != nil {
			return err
		}
		if website.InFolder(req.ToFolderID) {
			return domain.Invalid("website %s is already in folder %s", websiteID, req.ToFolderID)
		}

		if err := lockScopes(txCtx, s.locker,
			models.WebsiteScopeKey(from), models.WebsiteScopeKey(req.ToFolderID)); err != nil {
			return err
		}

		// Re-read under the locks; positions may have moved since
		website, err = s.websiteRepo.GetByID(txCtx, websiteID)
		if err != nil {
			return err
		}
		fromPos, ok := website.PositionIn(from)
		if !ok {
			return domain.Invalid("website %s is not in folder %s", websiteID, from)
		}

		if err := s.websiteRepo.RemoveMembership(txCtx, websiteID, from); err != nil {
			return err
		}
		if err := s.websiteRepo.ShiftPositions(txCtx, from, fromPos+1, -1); err != nil {
			return err
		}

		maxPos, err := s.websiteRepo.MaxPosition(txCtx, req.ToFolderID)
		if err != nil {
			return err
		}
		newPos = maxPos + 1
		return s.websiteRepo.AddMembership(txCtx, websiteID, req.ToFolderID, newPos)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("website moved",
		"id", websiteID,
		"from_folder_id", from,
		"to_folder_id", req.ToFolderID,
		"position", newPos,
	)

	return s.reload(ctx, websiteID, req.ToFolderID)
}

// AddToFolder files a website in another folder, at its tail
func (s *websiteService) AddToFolder(ctx context.Context, userID, websiteID, folderID string) (*models.Website, error) {
	if models.IsRootRef(&folderID) {
		return nil, domain.Invalid("a website must be added to a folder")
	}
	if err := s.authorizer.CanAccessWebsite(ctx, userID, websiteID); err != nil {
		return nil, err
	}
	if err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockScope(txCtx, models.WebsiteScopeKey(folderID)); err != nil {
			return err
		}
		website, err := s.websiteRepo.GetByID(txCtx, websiteID)
		if err != nil {
			return err
		}
		if website.InFolder(folderID) {
			return domain.Invalid("website %s is already in folder %s", websiteID, folderID)
		}
		maxPos, err := s.websiteRepo.MaxPosition(txCtx, folderID)
		if err != nil {
			return err
		}
		return s.websiteRepo.AddMembership(txCtx, websiteID, folderID, maxPos+1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("website added to folder", "id", websiteID, "folder_id", folderID)
	return s.reload(ctx, websiteID, folderID)
}

// RemoveFromFolder takes a website out of one folder and closes the gap.
// A website always keeps at least one folder.
func (s *websiteService) RemoveFromFolder(ctx context.Context, userID, websiteID, folderID string) (*models.Website, error) {
	if err := s.authorizer.CanAccessWebsite(ctx, userID, websiteID); err != nil {
		return nil, err
	}

	var remaining string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockScope(txCtx, models.WebsiteScopeKey(folderID)); err != nil {
			return err
		}
		website, err := s.websiteRepo.GetByID(txCtx, websiteID)
		if err != nil {
			return err
		}
		pos, ok := website.PositionIn(folderID)
		if !ok {
			return fmt.Errorf("website %s in folder %s: %w", websiteID, folderID, domain.ErrNotFound)
		}
		if len(website.Memberships) == 1 {
			return domain.Invalid("cannot remove website %s from its last folder", websiteID)
		}
		for _, m := range website.Memberships {
			if m.FolderID != folderID {
				remaining = m.FolderID
				break
			}
		}

		if err := s.websiteRepo.RemoveMembership(txCtx, websiteID, folderID); err != nil {
			return err
		}
		return s.websiteRepo.ShiftPositions(txCtx, folderID, pos+1, -1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("website removed from folder", "id", websiteID, "folder_id", folderID)
	return s.reload(ctx, websiteID, remaining)
}

// SetStarred flips the starred flag
func (s *websiteService) SetStarred(ctx context.Context, userID, websiteID string, starred bool) error {
	if err := s.authorizer.CanAccessWebsite(ctx, userID, websiteID); err != nil {
		return err
	}
	if err := s.websiteRepo.SetStarred(ctx, websiteID, starred); err != nil {
		return err
	}
	s.logger.Info("website starred", "id", websiteID, "starred", starred)
	return nil
}

// ListStarred lists the user's starred websites
func (s *websiteService) ListStarred(ctx context.Context, userID string) ([]models.Website, error) {
	return s.websiteRepo.ListStarred(ctx, userID)
}

// ListByFolder lists a folder's websites ordered by position
func (s *websiteService) ListByFolder(ctx context.Context, userID, folderID string) ([]models.Website, error) {
	if err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}
	return s.websiteRepo.ListByFolder(ctx, folderID)
}

// ReorderWebsites applies absolute positions inside one folder as a single
// batch. Every id must already be in the folder and the folder must stay
// contiguous afterwards, otherwise nothing is written.
func (s *websiteService) ReorderWebsites(ctx context.Context, userID, folderID string, updates []models.PositionUpdate) error {
	if models.IsRootRef(&folderID) {
		return domain.Invalid("the root has no websites to reorder")
	}
	if err := validateBatch(updates); err != nil {
		return err
	}
	if err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
		return err
	}

	scope := folderScopeName(folderID)
	var applied int
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockScope(txCtx, models.WebsiteScopeKey(folderID)); err != nil {
			return err
		}
		current, err := s.websiteRepo.ListPositions(txCtx, folderID)
		if err != nil {
			return err
		}
		if err := checkMembers(current, updates, "website", scope); err != nil {
			return err
		}

		pending := changed(current, updates)
		applied = len(pending)
		if applied == 0 {
			return nil
		}
		if err := s.websiteRepo.SetPositions(txCtx, folderID, pending); err != nil {
			return err
		}

		after, err := s.websiteRepo.ListPositions(txCtx, folderID)
		if err != nil {
			return err
		}
		return checkDense(after, scope)
	})
	if err != nil {
		return err
	}

	s.logger.Info("websites reordered", "folder_id", folderID, "changed", applied)
	return nil
}

// lockMemberships locks every folder the website is in and returns the
// website as read under those locks.
func (s *websiteService) lockMemberships(ctx context.Context, websiteID string) (*models.Website, error) {
	website, err := s.websiteRepo.GetByID(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(website.Memberships))
	for _, m := range website.Memberships {
		keys = append(keys, models.WebsiteScopeKey(m.FolderID))
	}
	if err := lockScopes(ctx, s.locker, keys...); err != nil {
		return nil, err
	}
	return s.websiteRepo.GetByID(ctx, websiteID)
}

// checkTags verifies every tag id exists and is visible to the user:
// a global tag of theirs or a tag of one of their folders.
func (s *websiteService) checkTags(ctx context.Context, userID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	tags, err := s.tagRepo.GetByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	found := make(map[string]models.Tag, len(tags))
	for _, t := range tags {
		found[t.ID] = t
	}

	checkedFolders := map[string]bool{}
	for _, id := range tagIDs {
		tag, ok := found[id]
		if !ok {
			return domain.NotFound("tag", id)
		}
		if tag.FolderID != nil {
			if checkedFolders[*tag.FolderID] {
				continue
			}
			if err := s.authorizer.CanAccessFolder(ctx, userID, *tag.FolderID); err != nil {
				if errors.Is(err, domain.ErrForbidden) {
					return domain.Forbidden("tag", id)
				}
				return err
			}
			checkedFolders[*tag.FolderID] = true
			continue
		}
		if tag.UserID == nil || *tag.UserID != userID {
			return domain.Forbidden("tag", id)
		}
	}
	return nil
}

// reload re-reads a website and ranks it inside folderID
func (s *websiteService) reload(ctx context.Context, websiteID, folderID string) (*models.Website, error) {
	website, err := s.websiteRepo.GetByID(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if pos, ok := website.PositionIn(folderID); ok {
		website.Position = pos
	}
	return website, nil
}

// sourceFolder resolves the folder a move starts from
func sourceFolder(website *models.Website, fromFolderID *string) (string, error) {
	if models.IsRootRef(fromFolderID) {
		if len(website.Memberships) != 1 {
			return "", domain.Invalid("from_folder_id is required: website %s is in %d folders",
				website.ID, len(website.Memberships))
		}
		return website.Memberships[0].FolderID, nil
	}
	if !website.InFolder(*fromFolderID) {
		return "", domain.Invalid("website %s is not in folder %s", website.ID, *fromFolderID)
	}
	return *fromFolderID, nil
}

// validateCreateRequest validates a website creation request
func (s *websiteService) validateCreateRequest(req *bookmarksSvc.CreateWebsiteRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxWebsiteTitleLength)),
		validation.Field(&req.Link, linkRules()...),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.FolderID, validation.Required),
	)
}

// validateUpdateRequest validates a partial website update
func (s *websiteService) validateUpdateRequest(req *bookmarksSvc.UpdateWebsiteRequest) error {
	if req.Title == nil && req.Link == nil && !req.Description.Present && !req.Image.Present &&
		!req.Icon.Present && !req.Color.Present && req.TagIDs == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
		rules = append(rules, validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxWebsiteTitleLength)))
	}
	if req.Link != nil {
		trimmed := strings.TrimSpace(*req.Link)
		req.Link = &trimmed
		rules = append(rules, validation.Field(&req.Link, linkRules()...))
	}
	if len(rules) == 0 {
		return nil
	}
	return validation.ValidateStruct(req, rules...)
}

// linkRules accepts absolute http(s) URLs only
func linkRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(1, config.MaxLinkLength),
		is.URL,
		validation.By(func(value any) error {
			var raw string
			switch v := value.(type) {
			case string:
				raw = v
			case *string:
				if v == nil {
					return nil
				}
				raw = *v
			}
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return errors.New("must be an absolute http or https URL")
			}
			return nil
		}),
	}
}
