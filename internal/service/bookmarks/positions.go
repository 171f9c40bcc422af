package bookmarks

import (
	"context"
	"fmt"
	"sort"

	"savesite/internal/config"
	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	"savesite/internal/domain/repositories"
)

// lockScopes takes scope locks in sorted key order so two operations that
// touch the same pair of scopes cannot deadlock.
func lockScopes(ctx context.Context, locker repositories.ScopeLocker, keys ...string) error {
	sorted := append([]string{}, keys...)
	sort.Strings(sorted)
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		if err := locker.LockScope(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// validateBatch checks a reorder batch before it touches the store.
func validateBatch(updates []models.PositionUpdate) error {
	if len(updates) == 0 {
		return domain.Invalid("positions must not be empty")
	}
	if len(updates) > config.MaxReorderBatch {
		return domain.Invalid("at most %d positions per batch", config.MaxReorderBatch)
	}
	seenIDs := make(map[string]bool, len(updates))
	seenPositions := make(map[int]bool, len(updates))
	for _, u := range updates {
		if u.ID == "" {
			return domain.Invalid("position id is required")
		}
		if u.Position < 0 {
			return domain.Invalid("position for %s must not be negative", u.ID)
		}
		if seenIDs[u.ID] {
			return domain.Invalid("duplicate id %s in batch", u.ID)
		}
		if seenPositions[u.Position] {
			return domain.Invalid("duplicate position %d in batch", u.Position)
		}
		seenIDs[u.ID] = true
		seenPositions[u.Position] = true
	}
	return nil
}

// checkMembers verifies every update targets an item currently in the scope.
func checkMembers(current []models.PositionUpdate, updates []models.PositionUpdate, kind, scope string) error {
	members := make(map[string]bool, len(current))
	for _, c := range current {
		members[c.ID] = true
	}
	for _, u := range updates {
		if !members[u.ID] {
			return domain.Invalid("%s %s is not in %s", kind, u.ID, scope)
		}
	}
	return nil
}

// checkDense fails unless the scope's positions are exactly 0..n-1.
func checkDense(after []models.PositionUpdate, scope string) error {
	positions := make([]int, len(after))
	for i, p := range after {
		positions[i] = p.Position
	}
	if !models.IsDense(positions) {
		return domain.Invalid("positions in %s would not be contiguous", scope)
	}
	return nil
}

// changed reports the updates whose position differs from current; the rest are no-ops.
func changed(current, updates []models.PositionUpdate) []models.PositionUpdate {
	byID := make(map[string]int, len(current))
	for _, c := range current {
		byID[c.ID] = c.Position
	}
	out := make([]models.PositionUpdate, 0, len(updates))
	for _, u := range updates {
		if pos, ok := byID[u.ID]; !ok || pos != u.Position {
			out = append(out, u)
		}
	}
	return out
}

func folderScopeName(folderID string) string {
	return fmt.Sprintf("folder %s", folderID)
}
