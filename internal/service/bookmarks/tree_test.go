package bookmarks

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
)

func TestGetTree_NoFolders(t *testing.T) {
	env := newTestEnv(t)

	root, err := env.tree.GetTree(context.Background(), env.userID)
	require.NoError(t, err)
	assert.True(t, root.Virtual)
	assert.Equal(t, models.RootFolderID, root.ID)
	assert.Empty(t, root.Children)
	assert.Empty(t, root.Websites)
}

func TestGetTree_OnlyOwnData(t *testing.T) {
	env := newTestEnv(t)
	work := env.folder(t, "Work", nil)
	docs := env.folder(t, "Docs", &work.ID)
	env.website(t, "go", docs.ID)
	env.website(t, "rust", docs.ID)
	env.folderFor(t, env.otherID, "Elsewhere", nil)

	root, err := env.tree.GetTree(context.Background(), env.userID)
	require.NoError(t, err)

	assert.False(t, root.Virtual, "a single top-level folder is the root")
	assert.Equal(t, work.ID, root.ID)
	require.Len(t, root.Children, 1)
	child := root.Children[0]
	assert.Equal(t, docs.ID, child.ID)
	require.Len(t, child.Websites, 2)
	assert.Equal(t, "rust", child.Websites[0].Title)
	assert.Equal(t, "go", child.Websites[1].Title)
}

func TestGetTree_SeveralTopLevelFolders(t *testing.T) {
	env := newTestEnv(t)
	env.folder(t, "A", nil)
	env.folder(t, "B", nil)

	root, err := env.tree.GetTree(context.Background(), env.userID)
	require.NoError(t, err)
	assert.True(t, root.Virtual)
	assert.Len(t, root.Children, 2)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	work := env.folder(t, "Work", nil)
	golang := env.folder(t, "Golang", &work.ID)
	env.website(t, "Effective Go", golang.ID)
	env.website(t, "Cooking", work.ID)

	results, err := env.tree.Search(ctx, env.userID, "GO")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, models.SearchResultFolder, results[0].Kind)
	assert.Equal(t, "Golang", results[0].Folder.Name)
	assert.Empty(t, results[0].Folder.Websites, "folder hits are shallow")
	assert.Equal(t, "Work > Golang", results[0].Path)

	assert.Equal(t, models.SearchResultWebsite, results[1].Kind)
	assert.Equal(t, "Effective Go", results[1].Website.Title)
	assert.Equal(t, "Work > Golang", results[1].Path)

	results, err = env.tree.Search(ctx, env.userID, "   ")
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = env.tree.Search(ctx, env.userID, strings.Repeat("x", 201))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
