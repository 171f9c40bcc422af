package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
)

// Seeder loads fixtures through the services so positions, tag scoping
// and ownership follow the same rules as live traffic
type Seeder struct {
	users    bookmarksSvc.UserService
	folders  bookmarksSvc.FolderService
	websites bookmarksSvc.WebsiteService
	tags     bookmarksSvc.TagService
	logger   *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(
	users bookmarksSvc.UserService,
	folders bookmarksSvc.FolderService,
	websites bookmarksSvc.WebsiteService,
	tags bookmarksSvc.TagService,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		users:    users,
		folders:  folders,
		websites: websites,
		tags:     tags,
		logger:   logger,
	}
}

// Result counts what a Seed call created
type Result struct {
	UserID   string
	Folders  int
	Websites int
	Tags     int
}

// pendingLink is an also_in entry resolved once every folder exists
type pendingLink struct {
	websiteID string
	folder    string
}

// run carries the state of one Seed call
type run struct {
	userID     string
	globalTags map[string]string
	folderIDs  map[string]string // first folder with a given name wins
	links      []pendingLink
	result     *Result
}

// Seed creates the fixture's library for its user. The user is created
// if missing; existing global tags with the same names are reused.
func (s *Seeder) Seed(ctx context.Context, f *Fixture) (*Result, error) {
	user, err := s.users.EnsureUser(ctx, &bookmarksSvc.EnsureUserRequest{
		Email: f.User.Email,
		Name:  f.User.Name,
		Image: f.User.Image,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", f.User.Email, err)
	}

	r := &run{
		userID:    user.ID,
		folderIDs: make(map[string]string),
		result:    &Result{UserID: user.ID},
	}

	r.globalTags, err = s.createTags(ctx, r, nil, f.Tags)
	if err != nil {
		return nil, err
	}

	if err := s.createFolders(ctx, r, nil, f.Folders); err != nil {
		return nil, err
	}

	for _, link := range r.links {
		folderID, ok := r.folderIDs[link.folder]
		if !ok {
			return nil, fmt.Errorf("also_in: unknown folder %q", link.folder)
		}
		if _, err := s.websites.AddToFolder(ctx, r.userID, link.websiteID, folderID); err != nil {
			return nil, fmt.Errorf("add website %s to %q: %w", link.websiteID, link.folder, err)
		}
	}

	s.logger.Info("fixture seeded",
		"user_id", r.userID,
		"folders", r.result.Folders,
		"websites", r.result.Websites,
		"tags", r.result.Tags,
	)
	return r.result, nil
}

// createTags creates names in one scope and returns name -> id.
// Tags are created in reverse because each new tag goes to the head.
func (s *Seeder) createTags(ctx context.Context, r *run, folderID *string, names []string) (map[string]string, error) {
	ids := make(map[string]string, len(names))
	for _, name := range slices.Backward(names) {
		tag, err := s.tags.CreateTag(ctx, r.userID, &bookmarksSvc.CreateTagRequest{Name: name, FolderID: folderID})
		var conflict *domain.ConflictError
		switch {
		case errors.As(err, &conflict):
			ids[name] = conflict.ResourceID
			continue
		case err != nil:
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
		ids[name] = tag.ID
		r.result.Tags++
	}
	return ids, nil
}

func (s *Seeder) createFolders(ctx context.Context, r *run, parentID *string, folders []FolderFixture) error {
	for _, ff := range folders {
		folder, err := s.folders.CreateFolder(ctx, &bookmarksSvc.CreateFolderRequest{
			UserID:   r.userID,
			Name:     ff.Name,
			ParentID: parentID,
		})
		if err != nil {
			return fmt.Errorf("create folder %q: %w", ff.Name, err)
		}
		r.result.Folders++
		if _, seen := r.folderIDs[ff.Name]; !seen {
			r.folderIDs[ff.Name] = folder.ID
		}

		folderTags, err := s.createTags(ctx, r, &folder.ID, ff.Tags)
		if err != nil {
			return err
		}

		for _, wf := range slices.Backward(ff.Websites) {
			if err := s.createWebsite(ctx, r, folder, folderTags, wf); err != nil {
				return err
			}
		}

		if err := s.createFolders(ctx, r, &folder.ID, ff.Folders); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createWebsite(ctx context.Context, r *run, folder *models.Folder, folderTags map[string]string, wf WebsiteFixture) error {
	tagIDs := make([]string, 0, len(wf.Tags))
	for _, name := range wf.Tags {
		id, ok := folderTags[name]
		if !ok {
			id, ok = r.globalTags[name]
		}
		if !ok {
			return fmt.Errorf("website %q: tag %q is neither global nor in folder %q", wf.Title, name, folder.Name)
		}
		tagIDs = append(tagIDs, id)
	}

	website, err := s.websites.CreateWebsite(ctx, &bookmarksSvc.CreateWebsiteRequest{
		OwnerID:     r.userID,
		Title:       wf.Title,
		Link:        wf.Link,
		Description: wf.Description,
		Image:       wf.Image,
		Color:       wf.Color,
		FolderID:    folder.ID,
		TagIDs:      tagIDs,
	})
	if err != nil {
		return fmt.Errorf("create website %q: %w", wf.Title, err)
	}
	r.result.Websites++

	if wf.Starred {
		if err := s.websites.SetStarred(ctx, r.userID, website.ID, true); err != nil {
			return fmt.Errorf("star website %q: %w", wf.Title, err)
		}
	}
	for _, name := range wf.AlsoIn {
		r.links = append(r.links, pendingLink{websiteID: website.ID, folder: name})
	}
	return nil
}

// Clear deletes every folder, website and global tag of a user.
// The user row is kept.
func (s *Seeder) Clear(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	folders, err := s.folders.ListFolders(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, f := range folders {
		// Descendants go with their top-level ancestor
		if f.ParentID != nil {
			continue
		}
		if err := s.folders.DeleteFolder(ctx, user.ID, f.ID); err != nil {
			return fmt.Errorf("delete folder %q: %w", f.Name, err)
		}
	}

	tags, err := s.tags.ListTags(ctx, user.ID, &bookmarksSvc.TagQuery{Scope: models.TagQueryGlobal})
	if err != nil {
		return err
	}
	for _, t := range tags {
		if err := s.tags.DeleteTag(ctx, user.ID, t.ID); err != nil {
			return fmt.Errorf("delete tag %q: %w", t.Name, err)
		}
	}

	s.logger.Info("user data cleared", "user_id", user.ID, "folders", len(folders), "tags", len(tags))
	return nil
}
