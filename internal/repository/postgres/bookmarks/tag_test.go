package bookmarks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "savesite/internal/domain/models/bookmarks"
)

func TestScopeWhere(t *testing.T) {
	userID, folderID := "u1", "f1"

	tests := []struct {
		name      string
		scope     models.TagScope
		next      int
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "global",
			scope:     models.GlobalScope(userID),
			next:      1,
			wantWhere: "user_id = $1 AND folder_id IS NULL",
			wantArgs:  []any{"u1"},
		},
		{
			name:      "folder",
			scope:     models.FolderScope(folderID),
			next:      3,
			wantWhere: "user_id IS NULL AND folder_id = $3",
			wantArgs:  []any{"f1"},
		},
		{
			name:      "both keys",
			scope:     models.TagScope{UserID: &userID, FolderID: &folderID},
			next:      2,
			wantWhere: "user_id = $2 AND folder_id = $3",
			wantArgs:  []any{"u1", "f1"},
		},
		{
			name:      "neither key",
			scope:     models.TagScope{},
			next:      1,
			wantWhere: "user_id IS NULL AND folder_id IS NULL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := scopeWhere(tt.scope, tt.next)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
