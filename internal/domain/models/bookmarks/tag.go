package bookmarks

import (
	"fmt"
	"time"
)

// Tag is either global (UserID set, FolderID nil) or folder-scoped (FolderID set).
type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Position  int       `json:"position" db:"position"`
	UserID    *string   `json:"user_id" db:"user_id"`
	FolderID  *string   `json:"folder_id" db:"folder_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Scope returns the uniqueness/ordering scope the tag lives in.
func (t *Tag) Scope() TagScope {
	return TagScope{UserID: t.UserID, FolderID: t.FolderID}
}

// TagScope identifies a tag ordering scope. An absent key matches NULL.
type TagScope struct {
	UserID   *string
	FolderID *string
}

// GlobalScope is the scope of a user's folder-less tags.
func GlobalScope(userID string) TagScope {
	return TagScope{UserID: &userID}
}

// FolderScope is the scope of the tags attached to one folder.
func FolderScope(folderID string) TagScope {
	return TagScope{FolderID: &folderID}
}

// IsFolder reports whether the scope is folder-local.
func (s TagScope) IsFolder() bool {
	return s.FolderID != nil
}

// Key is a stable string for the scope, used for locking and logging.
func (s TagScope) Key() string {
	if s.FolderID != nil {
		return fmt.Sprintf("tags:folder:%s", *s.FolderID)
	}
	if s.UserID != nil {
		return fmt.Sprintf("tags:user:%s", *s.UserID)
	}
	return "tags:unscoped"
}

// TagQueryScope selects which tiers ListTags resolves.
type TagQueryScope string

const (
	TagQueryGlobal TagQueryScope = "global"
	TagQueryFolder TagQueryScope = "folder"
	TagQueryAll    TagQueryScope = "all"
)

// TagFilter is the store-level filter for tag lookups.
// When both keys are set the branches are OR-ed.
type TagFilter struct {
	UserID   *string // tags with this user and no folder
	FolderID *string // tags of this folder
}

// WebsiteScopeKey is the lock key for the website ordering inside a folder.
func WebsiteScopeKey(folderID string) string {
	return fmt.Sprintf("websites:folder:%s", folderID)
}
