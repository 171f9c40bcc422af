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

type folderService struct {
	folderRepo  bookmarksRepo.FolderRepository
	websiteRepo bookmarksRepo.WebsiteRepository
	txManager   repositories.TransactionManager
	authorizer  services.ResourceAuthorizer
	logger      *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo bookmarksRepo.FolderRepository,
	websiteRepo bookmarksRepo.WebsiteRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) bookmarksSvc.FolderService {
	return &folderService{
		folderRepo:  folderRepo,
		websiteRepo: websiteRepo,
		txManager:   txManager,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// CreateFolder creates a folder at top level or under an owned parent.
// nil, "" and "root" all mean top level.
func (s *folderService) CreateFolder(ctx context.Context, req *bookmarksSvc.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parentID := models.NormalizeParent(req.ParentID)
	if parentID != nil {
		if err := s.authorizer.CanAccessFolder(ctx, req.UserID, *parentID); err != nil {
			return nil, err
		}
	}

	folder := &models.Folder{
		Name:     req.Name,
		UserID:   req.UserID,
		ParentID: parentID,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", folder.UserID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder
// Authorization is checked first via the injected authorizer
func (s *folderService) GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	if err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}
	return s.folderRepo.GetByID(ctx, folderID)
}

// ListFolders lists every folder of the user
func (s *folderService) ListFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	return s.folderRepo.ListByUser(ctx, userID)
}

// UpdateFolder renames and/or moves a folder
// Authorization is checked first via the injected authorizer
func (s *folderService) UpdateFolder(ctx context.Context, userID, folderID string, req *bookmarksSvc.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}

	// Tri-state: only move when the field was present in the request
	if req.ParentID.Present {
		newParent := models.NormalizeParent(req.ParentID.Value)
		if newParent != nil {
			if err := s.authorizer.CanAccessFolder(ctx, userID, *newParent); err != nil {
				return nil, err
			}
			if err := s.validateNoCircularReference(ctx, folderID, *newParent); err != nil {
				return nil, err
			}
			s.logger.Debug("moving folder to new parent",
				"folder_id", folderID,
				"new_parent_id", *newParent,
			)
		} else {
			s.logger.Debug("moving folder to top level", "folder_id", folderID)
		}
		folder.ParentID = newParent
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// DeleteFolder deletes a folder with its whole subtree in one transaction.
// Websites that live only inside the subtree are deleted; websites that are
// also filed elsewhere just lose their memberships here. Folder-scoped tags
// of the subtree go with their folders.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	if err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
		return err
	}

	var deletedWebsites []string
	var subtree []string
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		subtree, err = s.folderRepo.GetSubtreeIDs(txCtx, folderID)
		if err != nil {
			return err
		}

		deletedWebsites, err = s.websiteRepo.DeleteContainedIn(txCtx, userID, subtree)
		if err != nil {
			return err
		}

		// Descendants, memberships and folder tags cascade
		return s.folderRepo.Delete(txCtx, folderID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", folderID,
		"folder_count", len(subtree),
		"website_count", len(deletedWebsites),
	)

	return nil
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *bookmarksSvc.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
		),
	)
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *bookmarksSvc.UpdateFolderRequest) error {
	// At least one field must be provided
	if req.Name == nil && !req.ParentID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	if req.Name != nil {
		return validation.ValidateStruct(req,
			validation.Field(&req.Name,
				validation.Required,
				validation.Length(1, config.MaxFolderNameLength),
			),
		)
	}
	return nil
}

// validateNoCircularReference walks the ancestors of the proposed parent and
// fails if folderID is among them (or is the parent itself).
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID, newParentID string) error {
	if folderID == newParentID {
		return fmt.Errorf("%w: cannot move folder into itself", domain.ErrValidation)
	}

	visited := map[string]bool{}
	currentID := newParentID
	for {
		if visited[currentID] {
			// Corrupt data: stop instead of looping
			return fmt.Errorf("%w: folder ancestry of %s is cyclic", domain.ErrValidation, newParentID)
		}
		visited[currentID] = true

		parent, err := s.folderRepo.GetByID(ctx, currentID)
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == folderID {
			return fmt.Errorf("%w: cannot move folder into its own descendant", domain.ErrValidation)
		}
		currentID = *parent.ParentID
	}
}
