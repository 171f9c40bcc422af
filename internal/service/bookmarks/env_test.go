package bookmarks

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	models "savesite/internal/domain/models/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
	"savesite/internal/repository/sqlite"
	"savesite/internal/service/auth"
)

// testEnv wires every bookmark service onto a temporary SQLite store
type testEnv struct {
	store    *sqlite.Store
	folders  bookmarksSvc.FolderService
	websites bookmarksSvc.WebsiteService
	tags     bookmarksSvc.TagService
	tree     bookmarksSvc.TreeService
	userID   string
	otherID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	authorizer := auth.NewOwnerBasedAuthorizer(store.Folders(), store.Websites(), store.Tags())

	env := &testEnv{
		store:    store,
		folders:  NewFolderService(store.Folders(), store.Websites(), store, authorizer, logger),
		websites: NewWebsiteService(store.Websites(), store.Tags(), store, store, authorizer, logger),
		tags:     NewTagService(store.Tags(), store, store, authorizer, logger),
		tree:     NewTreeService(store.Folders(), store.Websites(), logger),
	}

	ctx := context.Background()
	owner := &models.User{Name: "owner", Email: "owner@example.com"}
	require.NoError(t, store.Users().Create(ctx, owner))
	other := &models.User{Name: "other", Email: "other@example.com"}
	require.NoError(t, store.Users().Create(ctx, other))
	env.userID, env.otherID = owner.ID, other.ID

	return env
}

func (e *testEnv) folder(t *testing.T, name string, parentID *string) *models.Folder {
	t.Helper()
	return e.folderFor(t, e.userID, name, parentID)
}

func (e *testEnv) folderFor(t *testing.T, userID, name string, parentID *string) *models.Folder {
	t.Helper()
	f, err := e.folders.CreateFolder(context.Background(), &bookmarksSvc.CreateFolderRequest{
		UserID: userID, Name: name, ParentID: parentID,
	})
	require.NoError(t, err)
	return f
}

func (e *testEnv) website(t *testing.T, title, folderID string) *models.Website {
	t.Helper()
	w, err := e.websites.CreateWebsite(context.Background(), &bookmarksSvc.CreateWebsiteRequest{
		OwnerID:  e.userID,
		Title:    title,
		Link:     "https://example.com/" + title,
		FolderID: folderID,
	})
	require.NoError(t, err)
	return w
}

// order returns the folder's website titles by position, asserting density
func (e *testEnv) order(t *testing.T, folderID string) []string {
	t.Helper()
	listed, err := e.websites.ListByFolder(context.Background(), e.userID, folderID)
	require.NoError(t, err)
	titles := make([]string, len(listed))
	for i, w := range listed {
		require.Equal(t, i, w.Position, "folder %s is not dense", folderID)
		titles[i] = w.Title
	}
	return titles
}

// tagOrder returns tag names in a scope by position, asserting density
func (e *testEnv) tagOrder(t *testing.T, query *bookmarksSvc.TagQuery) []string {
	t.Helper()
	tags, err := e.tags.ListTags(context.Background(), e.userID, query)
	require.NoError(t, err)
	names := make([]string, len(tags))
	for i, tag := range tags {
		require.Equal(t, i, tag.Position, "tag scope is not dense")
		names[i] = tag.Name
	}
	return names
}

func strPtr(s string) *string { return &s }

func folderScopeOf(folderID string) models.TagScope { return models.FolderScope(folderID) }
