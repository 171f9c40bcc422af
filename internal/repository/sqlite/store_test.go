package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	user := &models.User{Name: email, Email: email}
	require.NoError(t, s.Users().Create(context.Background(), user))
	return user
}

func seedFolder(t *testing.T, s *Store, userID, name string, parentID *string) *models.Folder {
	t.Helper()
	folder := &models.Folder{Name: name, UserID: userID, ParentID: parentID}
	require.NoError(t, s.Folders().Create(context.Background(), folder))
	return folder
}

func seedWebsite(t *testing.T, s *Store, ownerID, title, folderID string, position int) *models.Website {
	t.Helper()
	ctx := context.Background()
	website := &models.Website{Title: title, Link: "https://example.com/" + title, OwnerID: ownerID}
	require.NoError(t, s.Websites().Create(ctx, website))
	require.NoError(t, s.Websites().AddMembership(ctx, website.ID, folderID, position))
	return website
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	for _, table := range []string{"users", "folders", "websites", "website_folders", "tags", "website_tags"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(dbPath, logger)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "ada@example.com")
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	got, err := s.Users().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Nil(t, got.Image)

	image := "https://img.example.com/ada.png"
	require.NoError(t, s.Users().UpdateImage(ctx, user.ID, &image))
	got, err = s.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.Equal(t, image, *got.Image)

	err = s.Users().Create(ctx, &models.User{Name: "dup", Email: "ada@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.Users().GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolders_SubtreeAndCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "u@example.com")

	top := seedFolder(t, s, user.ID, "Top", nil)
	child := seedFolder(t, s, user.ID, "Child", &top.ID)
	grandchild := seedFolder(t, s, user.ID, "Grandchild", &child.ID)
	other := seedFolder(t, s, user.ID, "Other", nil)

	ids, err := s.Folders().GetSubtreeIDs(ctx, top.ID)
	require.NoError(t, err)
	sort.Strings(ids)
	want := []string{top.ID, child.ID, grandchild.ID}
	sort.Strings(want)
	assert.Equal(t, want, ids)

	roots, err := s.Folders().ListChildren(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Len(t, roots, 2)

	children, err := s.Folders().ListChildren(ctx, user.ID, &top.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	require.NoError(t, s.Folders().Delete(ctx, top.ID))
	all, err := s.Folders().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ID)

	_, err = s.Folders().GetByID(ctx, grandchild.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolders_CreateWithMissingParent(t *testing.T) {
	s := newTestStore(t)
	user := seedUser(t, s, "u@example.com")

	missing := "does-not-exist"
	err := s.Folders().Create(context.Background(), &models.Folder{Name: "x", UserID: user.ID, ParentID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWebsites_PositionPrimitives(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "u@example.com")
	folder := seedFolder(t, s, user.ID, "F", nil)
	repo := s.Websites()

	maxPos, err := repo.MaxPosition(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, maxPos)

	a := seedWebsite(t, s, user.ID, "a", folder.ID, 0)
	b := seedWebsite(t, s, user.ID, "b", folder.ID, 1)

	require.NoError(t, repo.ShiftPositions(ctx, folder.ID, 0, 1))
	c := seedWebsite(t, s, user.ID, "c", folder.ID, 0)

	listed, err := repo.ListByFolder(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, []string{listed[0].ID, listed[1].ID, listed[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{listed[0].Position, listed[1].Position, listed[2].Position})

	require.NoError(t, repo.SetPositions(ctx, folder.ID, []models.PositionUpdate{
		{ID: b.ID, Position: 0}, {ID: c.ID, Position: 2},
	}))
	positions, err := repo.ListPositions(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.PositionUpdate{
		{ID: b.ID, Position: 0}, {ID: a.ID, Position: 1}, {ID: c.ID, Position: 2},
	}, positions)

	err = repo.AddMembership(ctx, a.ID, folder.ID, 3)
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = repo.SetPositions(ctx, folder.ID, []models.PositionUpdate{{ID: "missing", Position: 0}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWebsites_GetByIDHydrates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "u@example.com")
	f1 := seedFolder(t, s, user.ID, "F1", nil)
	f2 := seedFolder(t, s, user.ID, "F2", nil)
	w := seedWebsite(t, s, user.ID, "w", f1.ID, 0)
	require.NoError(t, s.Websites().AddMembership(ctx, w.ID, f2.ID, 4))

	tag := &models.Tag{Name: "go", UserID: &user.ID}
	require.NoError(t, s.Tags().Create(ctx, tag))
	require.NoError(t, s.Websites().SetTags(ctx, w.ID, []string{tag.ID}))

	got, err := s.Websites().GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, got.Memberships, 2)
	pos, ok := got.PositionIn(f2.ID)
	assert.True(t, ok)
	assert.Equal(t, 4, pos)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "go", got.Tags[0].Name)

	require.NoError(t, s.Tags().Delete(ctx, tag.ID))
	got, err = s.Websites().GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestWebsites_DeleteContainedIn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "u@example.com")
	inside := seedFolder(t, s, user.ID, "Inside", nil)
	outside := seedFolder(t, s, user.ID, "Outside", nil)

	onlyInside := seedWebsite(t, s, user.ID, "only-inside", inside.ID, 0)
	shared := seedWebsite(t, s, user.ID, "shared", inside.ID, 1)
	require.NoError(t, s.Websites().AddMembership(ctx, shared.ID, outside.ID, 0))
	onlyOutside := seedWebsite(t, s, user.ID, "only-outside", outside.ID, 1)

	deleted, err := s.Websites().DeleteContainedIn(ctx, user.ID, []string{inside.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{onlyInside.ID}, deleted)

	remaining, err := s.Websites().ListByOwner(ctx, user.ID)
	require.NoError(t, err)
	ids := []string{}
	for _, w := range remaining {
		ids = append(ids, w.ID)
	}
	assert.ElementsMatch(t, []string{shared.ID, onlyOutside.ID}, ids)
}

func TestWebsites_ListStarred(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "u@example.com")
	folder := seedFolder(t, s, user.ID, "F", nil)

	seedWebsite(t, s, user.ID, "plain", folder.ID, 0)
	second := seedWebsite(t, s, user.ID, "second", folder.ID, 2)
	first := seedWebsite(t, s, user.ID, "first", folder.ID, 1)
	require.NoError(t, s.Websites().SetStarred(ctx, second.ID, true))
	require.NoError(t, s.Websites().SetStarred(ctx, first.ID, true))

	starred, err := s.Websites().ListStarred(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, starred, 2)
	assert.Equal(t, first.ID, starred[0].ID)
	assert.Equal(t, second.ID, starred[1].ID)
	assert.True(t, starred[0].Starred)
}

func TestTags_ScopeIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	folder := seedFolder(t, s, alice.ID, "F", nil)
	repo := s.Tags()

	global := &models.Tag{Name: "news", UserID: &alice.ID}
	local := &models.Tag{Name: "news", FolderID: &folder.ID}
	foreign := &models.Tag{Name: "news", UserID: &bob.ID}
	for _, tag := range []*models.Tag{global, local, foreign} {
		require.NoError(t, repo.Create(ctx, tag))
	}

	found, err := repo.FindByName(ctx, models.GlobalScope(alice.ID), "news")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, global.ID, found.ID)

	found, err = repo.FindByName(ctx, models.FolderScope(folder.ID), "news")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, local.ID, found.ID)

	found, err = repo.FindByName(ctx, models.GlobalScope(alice.ID), "absent")
	require.NoError(t, err)
	assert.Nil(t, found)

	tests := []struct {
		name   string
		filter models.TagFilter
		want   []string
	}{
		{"global only", models.TagFilter{UserID: &alice.ID}, []string{global.ID}},
		{"folder only", models.TagFilter{FolderID: &folder.ID}, []string{local.ID}},
		{"both", models.TagFilter{UserID: &alice.ID, FolderID: &folder.ID}, []string{global.ID, local.ID}},
		{"neither", models.TagFilter{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, tag := range tags {
				ids = append(ids, tag.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}

	require.NoError(t, repo.ShiftPositions(ctx, models.GlobalScope(alice.ID), 0, 1))
	got, err := repo.GetByID(ctx, global.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Position)
	got, err = repo.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Position, "other user's scope must not shift")
	got, err = repo.GetByID(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Position, "folder scope must not shift")
}

func TestExecTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "u@example.com")

	err := s.ExecTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.LockScope(txCtx, "folders"))
		require.NoError(t, s.Folders().Create(txCtx, &models.Folder{Name: "tmp", UserID: user.ID}))
		return domain.ErrValidation
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	folders, err := s.Folders().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestLockScope_RequiresTransaction(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.LockScope(context.Background(), "tags:user:x"))
}
