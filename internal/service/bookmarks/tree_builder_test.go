package bookmarks

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "savesite/internal/domain/models/bookmarks"
)

func folder(id, name string, parent *string) models.Folder {
	return models.Folder{ID: id, Name: name, UserID: "u1", ParentID: parent}
}

func website(id, title string, memberships ...models.Membership) models.Website {
	return models.Website{ID: id, Title: title, Link: "https://" + id + ".test", OwnerID: "u1", Memberships: memberships}
}

func in(folderID string, pos int) models.Membership {
	return models.Membership{FolderID: folderID, Position: pos}
}

func TestAssembleTree_RootPolicy(t *testing.T) {
	tests := []struct {
		name        string
		folders     []models.Folder
		wantNil     bool
		wantRootID  string
		wantVirtual bool
		wantTop     int
	}{
		{
			name:    "no folders",
			wantNil: true,
		},
		{
			name:       "single top-level folder is the root",
			folders:    []models.Folder{folder("a", "A", nil), folder("b", "B", strPtr("a"))},
			wantRootID: "a",
			wantTop:    1,
		},
		{
			name:        "several top-level folders get a virtual root",
			folders:     []models.Folder{folder("a", "A", nil), folder("b", "B", nil)},
			wantRootID:  models.RootFolderID,
			wantVirtual: true,
			wantTop:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := AssembleTree("u1", tt.folders, nil)
			if tt.wantNil {
				assert.Nil(t, root)
				return
			}
			require.NotNil(t, root)
			assert.Equal(t, tt.wantRootID, root.ID)
			assert.Equal(t, tt.wantVirtual, root.Virtual)
			if tt.wantVirtual {
				assert.Equal(t, models.VirtualRootName, root.Name)
				assert.Equal(t, "u1", root.UserID)
				assert.Len(t, root.Children, tt.wantTop)
				assert.Empty(t, root.Websites)
			}
		})
	}
}

func TestAssembleTree_NestingAndWebsiteOrder(t *testing.T) {
	folders := []models.Folder{
		folder("top", "Top", nil),
		folder("c1", "Child 1", strPtr("top")),
		folder("c2", "Child 2", strPtr("top")),
		folder("g1", "Grandchild", strPtr("c1")),
	}
	websites := []models.Website{
		website("w2", "Second", in("c1", 1)),
		website("w0", "Zero", in("c1", 0), in("g1", 0)),
		website("w1b", "Beta", in("c2", 1)),
		website("w1a", "Alpha", in("c2", 1)),
	}

	root := AssembleTree("u1", folders, websites)
	require.NotNil(t, root)
	require.Len(t, root.Children, 2)

	c1 := root.Children[0]
	assert.Equal(t, "c1", c1.ID)
	require.Len(t, c1.Children, 1)
	assert.Equal(t, "g1", c1.Children[0].ID)

	require.Len(t, c1.Websites, 2)
	assert.Equal(t, "w0", c1.Websites[0].ID)
	assert.Equal(t, "w2", c1.Websites[1].ID)
	assert.Equal(t, 1, c1.Websites[1].Position)

	// Website in two folders appears in both, ranked per folder
	require.Len(t, c1.Children[0].Websites, 1)
	assert.Equal(t, "w0", c1.Children[0].Websites[0].ID)

	// Position ties break by title
	c2 := root.Children[1]
	require.Len(t, c2.Websites, 2)
	assert.Equal(t, "Alpha", c2.Websites[0].Title)
	assert.Equal(t, "Beta", c2.Websites[1].Title)
}

func TestAssembleTree_TerminatesOnCycles(t *testing.T) {
	// a <-> b is a cycle detached from the top level; c is a proper root
	folders := []models.Folder{
		folder("a", "A", strPtr("b")),
		folder("b", "B", strPtr("a")),
		folder("c", "C", nil),
	}

	root := AssembleTree("u1", folders, nil)
	require.NotNil(t, root)
	assert.Equal(t, "c", root.ID)
	assert.Empty(t, root.Children)
}

func TestAssembleTree_IgnoresMembershipsOfUnknownFolders(t *testing.T) {
	folders := []models.Folder{folder("a", "A", nil)}
	websites := []models.Website{website("w", "W", in("a", 0), in("gone", 3))}

	root := AssembleTree("u1", folders, websites)
	require.NotNil(t, root)
	require.Len(t, root.Websites, 1)
	assert.Equal(t, 0, root.Websites[0].Position)
}

func TestFlattenTree_RoundTrip(t *testing.T) {
	folders := []models.Folder{
		folder("a", "A", nil),
		folder("b", "B", nil),
		folder("a1", "A1", strPtr("a")),
		folder("a1x", "A1x", strPtr("a1")),
	}
	websites := []models.Website{
		website("w1", "One", in("a", 0), in("a1x", 1)),
		website("w2", "Two", in("a1x", 0)),
		website("w3", "Three", in("b", 0)),
	}

	root := AssembleTree("u1", folders, websites)
	require.NotNil(t, root)
	gotFolders, gotWebsites := FlattenTree(root)

	type edge struct{ id, parent string }
	edges := func(fs []models.Folder) []edge {
		out := make([]edge, 0, len(fs))
		for _, f := range fs {
			p := ""
			if f.ParentID != nil {
				p = *f.ParentID
			}
			out = append(out, edge{f.ID, p})
		}
		return out
	}
	assert.ElementsMatch(t, edges(folders), edges(gotFolders))

	memberships := func(ws []models.Website) map[string][]models.Membership {
		out := map[string][]models.Membership{}
		for _, w := range ws {
			ms := append([]models.Membership{}, w.Memberships...)
			sort.Slice(ms, func(i, j int) bool { return ms[i].FolderID < ms[j].FolderID })
			out[w.ID] = ms
		}
		return out
	}
	assert.Equal(t, memberships(websites), memberships(gotWebsites))
}

func TestFlattenTree_Nil(t *testing.T) {
	folders, websites := FlattenTree(nil)
	assert.Empty(t, folders)
	assert.Empty(t, websites)
}

func TestSearchTree(t *testing.T) {
	desc := "A blog about Gophers"
	folders := []models.Folder{
		folder("dev", "Dev", nil),
		folder("go", "Golang", strPtr("dev")),
		folder("misc", "Misc", nil),
	}
	websites := []models.Website{
		{ID: "w1", Title: "Effective Go", Link: "https://go.dev/doc", Memberships: []models.Membership{in("go", 0)}},
		{ID: "w2", Title: "Blog", Link: "https://blog.test", Description: &desc, Memberships: []models.Membership{in("misc", 0)}},
		{ID: "w3", Title: "News", Link: "https://NEWS.test", Memberships: []models.Membership{in("misc", 1)}},
	}
	root := AssembleTree("u1", folders, websites)

	tests := []struct {
		name  string
		query string
		want  []string // kind:id@path
	}{
		{"folder and website by name", "go", []string{
			"folder:go@My Websites > Dev > Golang",
			"website:w1@My Websites > Dev > Golang",
			"website:w2@My Websites > Misc",
		}},
		{"case-insensitive link", "news.TEST", []string{"website:w3@My Websites > Misc"}},
		{"description", "gophers", []string{"website:w2@My Websites > Misc"}},
		{"virtual root name is not a hit", "my websites", []string{}},
		{"blank query", "   ", []string{}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := SearchTree(root, tt.query)
			got := make([]string, 0, len(results))
			for _, r := range results {
				switch r.Kind {
				case models.SearchResultFolder:
					require.NotNil(t, r.Folder)
					assert.Nil(t, r.Website)
					assert.Nil(t, r.Folder.Children, "folder hits are shallow")
					got = append(got, "folder:"+r.Folder.ID+"@"+r.Path)
				case models.SearchResultWebsite:
					require.NotNil(t, r.Website)
					assert.Nil(t, r.Folder)
					got = append(got, "website:"+r.Website.ID+"@"+r.Path)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
