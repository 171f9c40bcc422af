package bookmarks

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"savesite/internal/config"
	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo  bookmarksRepo.FolderRepository
	websiteRepo bookmarksRepo.WebsiteRepository
	logger      *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo bookmarksRepo.FolderRepository,
	websiteRepo bookmarksRepo.WebsiteRepository,
	logger *slog.Logger,
) bookmarksSvc.TreeService {
	return &treeService{
		folderRepo:  folderRepo,
		websiteRepo: websiteRepo,
		logger:      logger,
	}
}

// GetTree builds the user's folder/website tree. A user without folders
// gets an empty virtual root; a store failure returns no tree at all.
func (s *treeService) GetTree(ctx context.Context, userID string) (*models.FolderNode, error) {
	folders, err := s.folderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tree: %w", err)
	}

	websites, err := s.websiteRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tree: %w", err)
	}

	root := AssembleTree(userID, folders, websites)
	if root == nil {
		root = EmptyRoot(userID)
	}

	s.logger.Debug("tree built",
		"user_id", userID,
		"folder_count", len(folders),
		"website_count", len(websites),
		"root_id", root.ID,
	)

	return root, nil
}

// Search assembles the tree and searches it
func (s *treeService) Search(ctx context.Context, userID, query string) ([]models.SearchResult, error) {
	if err := validation.Validate(query, validation.Length(0, config.MaxSearchQueryLength)); err != nil {
		return nil, fmt.Errorf("%w: q: %v", domain.ErrValidation, err)
	}

	root, err := s.GetTree(ctx, userID)
	if err != nil {
		return nil, err
	}
	return SearchTree(root, query), nil
}
