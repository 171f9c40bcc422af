package bookmarks

import (
	"time"
)

// RootFolderID is the sentinel id of the virtual root folder.
// It is never persisted and always means "no folder" / top level.
const RootFolderID = "root"

// VirtualRootName is the display name of the synthesized root folder.
const VirtualRootName = "My Websites"

type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UserID    string    `json:"user_id" db:"user_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = top level
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRootRef reports whether a folder reference means "top level".
// nil, "" and the virtual root sentinel are all accepted.
func IsRootRef(id *string) bool {
	return id == nil || *id == "" || *id == RootFolderID
}

// NormalizeParent maps every top-level spelling to nil.
func NormalizeParent(id *string) *string {
	if IsRootRef(id) {
		return nil
	}
	v := *id
	return &v
}
