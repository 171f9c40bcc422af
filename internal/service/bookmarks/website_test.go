package bookmarks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
	"savesite/internal/httputil"
)

func TestCreateWebsite_InsertsAtHead(t *testing.T) {
	env := newTestEnv(t)
	f := env.folder(t, "F", nil)

	first := env.website(t, "first", f.ID)
	assert.Equal(t, 0, first.Position)
	second := env.website(t, "second", f.ID)
	assert.Equal(t, 0, second.Position)
	env.website(t, "third", f.ID)

	assert.Equal(t, []string{"third", "second", "first"}, env.order(t, f.ID))
}

func TestCreateWebsite_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.folder(t, "F", nil)
	foreign := env.folderFor(t, env.otherID, "Theirs", nil)

	tests := []struct {
		name    string
		mutate  func(r *bookmarksSvc.CreateWebsiteRequest)
		wantErr error
	}{
		{"missing title", func(r *bookmarksSvc.CreateWebsiteRequest) { r.Title = " " }, domain.ErrValidation},
		{"missing link", func(r *bookmarksSvc.CreateWebsiteRequest) { r.Link = "" }, domain.ErrValidation},
		{"relative link", func(r *bookmarksSvc.CreateWebsiteRequest) { r.Link = "/just/a/path" }, domain.ErrValidation},
		{"non-http scheme", func(r *bookmarksSvc.CreateWebsiteRequest) { r.Link = "ftp://example.com/file" }, domain.ErrValidation},
		{"root folder", func(r *bookmarksSvc.CreateWebsiteRequest) { r.FolderID = models.RootFolderID }, domain.ErrValidation},
		{"missing folder", func(r *bookmarksSvc.CreateWebsiteRequest) { r.FolderID = "" }, domain.ErrValidation},
		{"unknown folder", func(r *bookmarksSvc.CreateWebsiteRequest) { r.FolderID = "nope" }, domain.ErrNotFound},
		{"foreign folder", func(r *bookmarksSvc.CreateWebsiteRequest) { r.FolderID = foreign.ID }, domain.ErrForbidden},
		{"unknown tag", func(r *bookmarksSvc.CreateWebsiteRequest) { r.TagIDs = []string{"nope"} }, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &bookmarksSvc.CreateWebsiteRequest{
				OwnerID:  env.userID,
				Title:    "Example",
				Link:     "https://example.com",
				FolderID: f.ID,
			}
			tt.mutate(req)
			_, err := env.websites.CreateWebsite(ctx, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, env.order(t, f.ID), "failed creates must not touch positions")
}

func TestCreateWebsite_TagVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.folder(t, "F", nil)
	theirFolder := env.folderFor(t, env.otherID, "Theirs", nil)

	mine, err := env.tags.CreateTag(ctx, env.userID, &bookmarksSvc.CreateTagRequest{Name: "mine"})
	require.NoError(t, err)
	local, err := env.tags.CreateTag(ctx, env.userID, &bookmarksSvc.CreateTagRequest{Name: "local", FolderID: &f.ID})
	require.NoError(t, err)
	theirs, err := env.tags.CreateTag(ctx, env.otherID, &bookmarksSvc.CreateTagRequest{Name: "theirs"})
	require.NoError(t, err)
	theirLocal, err := env.tags.CreateTag(ctx, env.otherID, &bookmarksSvc.CreateTagRequest{Name: "tl", FolderID: &theirFolder.ID})
	require.NoError(t, err)

	w, err := env.websites.CreateWebsite(ctx, &bookmarksSvc.CreateWebsiteRequest{
		OwnerID: env.userID, Title: "W", Link: "https://w.test", FolderID: f.ID,
		TagIDs: []string{mine.ID, local.ID},
	})
	require.NoError(t, err)
	assert.Len(t, w.Tags, 2)

	for _, foreignTag := range []string{theirs.ID, theirLocal.ID} {
		_, err = env.websites.CreateWebsite(ctx, &bookmarksSvc.CreateWebsiteRequest{
			OwnerID: env.userID, Title: "X", Link: "https://x.test", FolderID: f.ID,
			TagIDs: []string{foreignTag},
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	}
}

func TestMoveWebsite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	src := env.folder(t, "Src", nil)
	dst := env.folder(t, "Dst", nil)

	env.website(t, "a", src.ID)
	b := env.website(t, "b", src.ID)
	env.website(t, "c", src.ID) // src: c, b, a
	env.website(t, "x", dst.ID)

	moved, err := env.websites.MoveWebsite(ctx, env.userID, b.ID, &bookmarksSvc.MoveWebsiteRequest{ToFolderID: dst.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position, "appended at the tail")
	assert.Equal(t, []string{dst.ID}, moved.FolderIDs())

	assert.Equal(t, []string{"c", "a"}, env.order(t, src.ID))
	assert.Equal(t, []string{"x", "b"}, env.order(t, dst.ID))
}

func TestMoveWebsite_IntoEmptyFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	src := env.folder(t, "Src", nil)
	empty := env.folder(t, "Empty", nil)
	w := env.website(t, "w", src.ID)

	moved, err := env.websites.MoveWebsite(ctx, env.userID, w.ID, &bookmarksSvc.MoveWebsiteRequest{
		FromFolderID: &src.ID, ToFolderID: empty.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)
	assert.Empty(t, env.order(t, src.ID))
}

func TestMoveWebsite_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.folder(t, "A", nil)
	b := env.folder(t, "B", nil)
	c := env.folder(t, "C", nil)
	w := env.website(t, "w", a.ID)
	_, err := env.websites.AddToFolder(ctx, env.userID, w.ID, b.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     bookmarksSvc.MoveWebsiteRequest
		wantErr error
	}{
		{"source required with several folders", bookmarksSvc.MoveWebsiteRequest{ToFolderID: c.ID}, domain.ErrValidation},
		{"source not a member", bookmarksSvc.MoveWebsiteRequest{FromFolderID: &c.ID, ToFolderID: c.ID}, domain.ErrValidation},
		{"already in target", bookmarksSvc.MoveWebsiteRequest{FromFolderID: &a.ID, ToFolderID: b.ID}, domain.ErrValidation},
		{"same folder", bookmarksSvc.MoveWebsiteRequest{FromFolderID: &a.ID, ToFolderID: a.ID}, domain.ErrValidation},
		{"root target", bookmarksSvc.MoveWebsiteRequest{FromFolderID: &a.ID, ToFolderID: "root"}, domain.ErrValidation},
		{"unknown target", bookmarksSvc.MoveWebsiteRequest{FromFolderID: &a.ID, ToFolderID: "nope"}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.websites.MoveWebsite(ctx, env.userID, w.ID, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	got, err := env.websites.GetWebsite(ctx, env.userID, w.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, got.FolderIDs())
}

func TestAddAndRemoveFromFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.folder(t, "A", nil)
	b := env.folder(t, "B", nil)
	env.website(t, "b1", b.ID)
	w := env.website(t, "w", a.ID)
	env.website(t, "b0", b.ID) // b: b0, b1

	added, err := env.websites.AddToFolder(ctx, env.userID, w.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, added.Position)
	assert.Equal(t, []string{"b0", "b1", "w"}, env.order(t, b.ID))

	_, err = env.websites.AddToFolder(ctx, env.userID, w.ID, b.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Leaving a closes its gap; b still holds the website
	_, err = env.websites.RemoveFromFolder(ctx, env.userID, w.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, env.order(t, a.ID))

	_, err = env.websites.RemoveFromFolder(ctx, env.userID, w.ID, b.ID)
	assert.ErrorIs(t, err, domain.ErrValidation, "last folder cannot be removed")

	_, err = env.websites.RemoveFromFolder(ctx, env.userID, w.ID, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteWebsite_ClosesGapsEverywhere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.folder(t, "A", nil)
	b := env.folder(t, "B", nil)
	env.website(t, "a2", a.ID)
	w := env.website(t, "w", a.ID)
	env.website(t, "a0", a.ID) // a: a0, w, a2
	env.website(t, "b1", b.ID)
	env.website(t, "b0", b.ID)
	_, err := env.websites.AddToFolder(ctx, env.userID, w.ID, b.ID) // b: b0, b1, w
	require.NoError(t, err)

	require.NoError(t, env.websites.DeleteWebsite(ctx, env.userID, w.ID))

	assert.Equal(t, []string{"a0", "a2"}, env.order(t, a.ID))
	assert.Equal(t, []string{"b0", "b1"}, env.order(t, b.ID))

	assert.ErrorIs(t, env.websites.DeleteWebsite(ctx, env.userID, w.ID), domain.ErrNotFound)
}

func TestReorderWebsites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.folder(t, "F", nil)
	other := env.folder(t, "Other", nil)
	c := env.website(t, "c", f.ID)
	b := env.website(t, "b", f.ID)
	a := env.website(t, "a", f.ID) // a, b, c
	stranger := env.website(t, "stranger", other.ID)

	batch := []models.PositionUpdate{{ID: c.ID, Position: 0}, {ID: a.ID, Position: 2}}
	require.NoError(t, env.websites.ReorderWebsites(ctx, env.userID, f.ID, batch))
	assert.Equal(t, []string{"c", "b", "a"}, env.order(t, f.ID))

	// Absolute positions: replaying the batch is a no-op
	require.NoError(t, env.websites.ReorderWebsites(ctx, env.userID, f.ID, batch))
	assert.Equal(t, []string{"c", "b", "a"}, env.order(t, f.ID))

	tests := []struct {
		name  string
		batch []models.PositionUpdate
	}{
		{"empty", nil},
		{"foreign member", []models.PositionUpdate{{ID: stranger.ID, Position: 0}}},
		{"duplicate ids", []models.PositionUpdate{{ID: a.ID, Position: 0}, {ID: a.ID, Position: 1}}},
		{"duplicate positions", []models.PositionUpdate{{ID: a.ID, Position: 0}, {ID: b.ID, Position: 0}}},
		{"negative", []models.PositionUpdate{{ID: a.ID, Position: -1}}},
		{"leaves a hole", []models.PositionUpdate{{ID: a.ID, Position: 5}}},
		{"collides with untouched item", []models.PositionUpdate{{ID: a.ID, Position: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.websites.ReorderWebsites(ctx, env.userID, f.ID, tt.batch)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, []string{"c", "b", "a"}, env.order(t, f.ID), "rejected batch must not write")
		})
	}
}

func TestUpdateWebsite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.folder(t, "F", nil)
	tag, err := env.tags.CreateTag(ctx, env.userID, &bookmarksSvc.CreateTagRequest{Name: "t"})
	require.NoError(t, err)

	desc := "old"
	w, err := env.websites.CreateWebsite(ctx, &bookmarksSvc.CreateWebsiteRequest{
		OwnerID: env.userID, Title: "T", Link: "https://t.test", Description: &desc, FolderID: f.ID,
		TagIDs: []string{tag.ID},
	})
	require.NoError(t, err)

	title := "New title"
	color := "#ff0000"
	noTags := []string{}
	got, err := env.websites.UpdateWebsite(ctx, env.userID, w.ID, &bookmarksSvc.UpdateWebsiteRequest{
		Title:       &title,
		Description: httputil.OptionalString{Present: true, Value: nil},
		Color:       httputil.OptionalString{Present: true, Value: &color},
		TagIDs:      &noTags,
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, "https://t.test", got.Link)
	assert.Nil(t, got.Description)
	require.NotNil(t, got.Color)
	assert.Equal(t, color, *got.Color)
	assert.Empty(t, got.Tags)

	badLink := "not a url"
	_, err = env.websites.UpdateWebsite(ctx, env.userID, w.ID, &bookmarksSvc.UpdateWebsiteRequest{Link: &badLink})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.websites.UpdateWebsite(ctx, env.userID, w.ID, &bookmarksSvc.UpdateWebsiteRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.websites.UpdateWebsite(ctx, env.otherID, w.ID, &bookmarksSvc.UpdateWebsiteRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStarred(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.folder(t, "F", nil)
	a := env.website(t, "a", f.ID)
	b := env.website(t, "b", f.ID) // b, a

	require.NoError(t, env.websites.SetStarred(ctx, env.userID, a.ID, true))
	require.NoError(t, env.websites.SetStarred(ctx, env.userID, b.ID, true))

	starred, err := env.websites.ListStarred(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, starred, 2)
	assert.Equal(t, "b", starred[0].Title)
	assert.Equal(t, "a", starred[1].Title)

	require.NoError(t, env.websites.SetStarred(ctx, env.userID, b.ID, false))
	starred, err = env.websites.ListStarred(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, starred, 1)

	assert.ErrorIs(t, env.websites.SetStarred(ctx, env.otherID, a.ID, false), domain.ErrForbidden)
}
