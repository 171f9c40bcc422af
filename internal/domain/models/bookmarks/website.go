package bookmarks

import (
	"time"
)

// Membership places a website inside a folder at an ordinal position.
// Positions are dense and zero-based per folder.
type Membership struct {
	FolderID string `json:"folder_id" db:"folder_id"`
	Position int    `json:"position" db:"position"`
}

type Website struct {
	ID          string       `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Link        string       `json:"link" db:"link"`
	Description *string      `json:"description,omitempty" db:"description"`
	Image       *string      `json:"image,omitempty" db:"image"`
	Icon        *string      `json:"icon,omitempty" db:"icon"`
	Color       *string      `json:"color,omitempty" db:"color"`
	Position    int          `json:"position"` // Rank inside the folder it was read from
	Starred     bool         `json:"starred" db:"starred"`
	OwnerID     string       `json:"owner_id" db:"owner_id"`
	Memberships []Membership `json:"folders"`
	Tags        []Tag        `json:"tags"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// FolderIDs returns the ids of every folder the website belongs to.
func (w *Website) FolderIDs() []string {
	ids := make([]string, 0, len(w.Memberships))
	for _, m := range w.Memberships {
		ids = append(ids, m.FolderID)
	}
	return ids
}

// PositionIn returns the website's rank inside folderID.
func (w *Website) PositionIn(folderID string) (int, bool) {
	for _, m := range w.Memberships {
		if m.FolderID == folderID {
			return m.Position, true
		}
	}
	return 0, false
}

// InFolder reports whether the website is a member of folderID.
func (w *Website) InFolder(folderID string) bool {
	_, ok := w.PositionIn(folderID)
	return ok
}
