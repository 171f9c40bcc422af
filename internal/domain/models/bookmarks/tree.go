package bookmarks

import "time"

// FolderNode is a folder with its nested children and member websites.
type FolderNode struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	UserID    string        `json:"user_id"`
	ParentID  *string       `json:"parent_id"`
	CreatedAt time.Time     `json:"created_at"`
	Virtual   bool          `json:"virtual,omitempty"` // synthesized root, not persisted
	Children  []*FolderNode `json:"children"`          // Pointers for proper nesting
	Websites  []Website     `json:"websites"`          // Sorted by Position
}

// SearchResultKind discriminates SearchResult.
type SearchResultKind string

const (
	SearchResultFolder  SearchResultKind = "folder"
	SearchResultWebsite SearchResultKind = "website"
)

// SearchResult is a folder-or-website hit. Exactly one of Folder and
// Website is set, matching Kind.
type SearchResult struct {
	Kind    SearchResultKind `json:"kind"`
	Folder  *FolderNode      `json:"folder,omitempty"`
	Website *Website         `json:"website,omitempty"`
	Path    string           `json:"path"` // breadcrumb, "A > B > C"
}
