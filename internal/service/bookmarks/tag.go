package bookmarks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"savesite/internal/config"
	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	"savesite/internal/domain/repositories"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	"savesite/internal/domain/services"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
)

type tagService struct {
	tagRepo    bookmarksRepo.TagRepository
	txManager  repositories.TransactionManager
	locker     repositories.ScopeLocker
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tagRepo bookmarksRepo.TagRepository,
	txManager repositories.TransactionManager,
	locker repositories.ScopeLocker,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) bookmarksSvc.TagService {
	return &tagService{
		tagRepo:    tagRepo,
		txManager:  txManager,
		locker:     locker,
		authorizer: authorizer,
		logger:     logger,
	}
}

// ListTags resolves tags for a context:
//   - global: the user's folder-less tags
//   - folder: the tags attached to one folder
//   - all: both of the above (the folder branch only when a folder is given)
//
// An empty scope means all.
func (s *tagService) ListTags(ctx context.Context, userID string, query *bookmarksSvc.TagQuery) ([]models.Tag, error) {
	var folderID *string
	if !models.IsRootRef(query.FolderID) {
		folderID = query.FolderID
	}

	filter := models.TagFilter{}
	switch query.Scope {
	case models.TagQueryGlobal:
		filter.UserID = &userID
	case models.TagQueryFolder:
		if folderID == nil {
			return nil, domain.Invalid("folder_id is required for folder scope")
		}
		filter.FolderID = folderID
	case models.TagQueryAll, "":
		filter.UserID = &userID
		filter.FolderID = folderID
	default:
		return nil, domain.Invalid("unknown tag scope %q", query.Scope)
	}

	if filter.FolderID != nil {
		if err := s.authorizer.CanAccessFolder(ctx, userID, *filter.FolderID); err != nil {
			return nil, err
		}
	}

	return s.tagRepo.List(ctx, filter)
}

// GetTag retrieves a tag
func (s *tagService) GetTag(ctx context.Context, userID, tagID string) (*models.Tag, error) {
	if err := s.authorizer.CanAccessTag(ctx, userID, tagID); err != nil {
		return nil, err
	}
	return s.tagRepo.GetByID(ctx, tagID)
}

// CreateTag creates a tag at the head (position 0) of its scope.
// Names are unique per scope after trimming.
func (s *tagService) CreateTag(ctx context.Context, userID string, req *bookmarksSvc.CreateTagRequest) (*models.Tag, error) {
	name, err := validateTagName(req.Name)
	if err != nil {
		return nil, err
	}

	scope, err := s.resolveScope(ctx, userID, req.FolderID)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{
		Name:     name,
		Position: 0,
		UserID:   scope.UserID,
		FolderID: scope.FolderID,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockScope(txCtx, scope.Key()); err != nil {
			return err
		}
		if err := s.checkNameFree(txCtx, scope, name, ""); err != nil {
			return err
		}
		if err := s.tagRepo.ShiftPositions(txCtx, scope, 0, 1); err != nil {
			return err
		}
		return s.tagRepo.Create(txCtx, tag)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag created",
		"id", tag.ID,
		"name", tag.Name,
		"scope", scope.Key(),
	)

	return tag, nil
}

// RenameTag renames a tag inside its own scope
func (s *tagService) RenameTag(ctx context.Context, userID, tagID, name string) (*models.Tag, error) {
	if err := s.authorizer.CanAccessTag(ctx, userID, tagID); err != nil {
		return nil, err
	}
	name, err := validateTagName(name)
	if err != nil {
		return nil, err
	}

	var tag *models.Tag
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		tag, err = s.tagRepo.GetByID(txCtx, tagID)
		if err != nil {
			return err
		}
		if tag.Name == name {
			return nil
		}
		if err := s.locker.LockScope(txCtx, tag.Scope().Key()); err != nil {
			return err
		}
		if err := s.checkNameFree(txCtx, tag.Scope(), name, tag.ID); err != nil {
			return err
		}
		if err := s.tagRepo.Rename(txCtx, tagID, name); err != nil {
			return err
		}
		tag.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag renamed", "id", tagID, "name", name)
	return tag, nil
}

// DeleteTag deletes a tag; website links cascade and the scope's gap is closed
func (s *tagService) DeleteTag(ctx context.Context, userID, tagID string) error {
	if err := s.authorizer.CanAccessTag(ctx, userID, tagID); err != nil {
		return err
	}

	var scopeKey string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		tag, err := s.tagRepo.GetByID(txCtx, tagID)
		if err != nil {
			return err
		}
		scope := tag.Scope()
		scopeKey = scope.Key()
		if err := s.locker.LockScope(txCtx, scopeKey); err != nil {
			return err
		}

		// Re-read under the lock
		tag, err = s.tagRepo.GetByID(txCtx, tagID)
		if err != nil {
			return err
		}
		if err := s.tagRepo.Delete(txCtx, tagID); err != nil {
			return err
		}
		return s.tagRepo.ShiftPositions(txCtx, scope, tag.Position+1, -1)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tag deleted", "id", tagID, "scope", scopeKey)
	return nil
}

// ReorderTags applies absolute positions inside one scope as a single batch
func (s *tagService) ReorderTags(ctx context.Context, userID string, req *bookmarksSvc.ReorderTagsRequest) error {
	if err := validateBatch(req.Positions); err != nil {
		return err
	}
	scope, err := s.resolveScope(ctx, userID, req.FolderID)
	if err != nil {
		return err
	}

	var applied int
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockScope(txCtx, scope.Key()); err != nil {
			return err
		}
		current, err := s.tagRepo.ListPositions(txCtx, scope)
		if err != nil {
			return err
		}
		if err := checkMembers(current, req.Positions, "tag", scope.Key()); err != nil {
			return err
		}

		pending := changed(current, req.Positions)
		applied = len(pending)
		if applied == 0 {
			return nil
		}
		if err := s.tagRepo.SetPositions(txCtx, pending); err != nil {
			return err
		}

		after, err := s.tagRepo.ListPositions(txCtx, scope)
		if err != nil {
			return err
		}
		return checkDense(after, scope.Key())
	})
	if err != nil {
		return err
	}

	s.logger.Info("tags reordered", "scope", scope.Key(), "changed", applied)
	return nil
}

// resolveScope maps an optional folder to a tag scope, checking ownership
func (s *tagService) resolveScope(ctx context.Context, userID string, folderID *string) (models.TagScope, error) {
	if models.IsRootRef(folderID) {
		return models.GlobalScope(userID), nil
	}
	if err := s.authorizer.CanAccessFolder(ctx, userID, *folderID); err != nil {
		return models.TagScope{}, err
	}
	return models.FolderScope(*folderID), nil
}

// checkNameFree fails with a ConflictError when another tag in scope has name
func (s *tagService) checkNameFree(ctx context.Context, scope models.TagScope, name, selfID string) error {
	existing, err := s.tagRepo.FindByName(ctx, scope, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a tag named %q already exists here", name),
			ResourceType: "tag",
			ResourceID:   existing.ID,
		}
	}
	return nil
}

// validateTagName trims and validates a tag name
func validateTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxTagNameLength),
	)
	if err != nil {
		return "", fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}
	return name, nil
}
