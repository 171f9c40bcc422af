package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassifiers(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: code})
	}

	tests := []struct {
		name      string
		err       error
		duplicate bool
		foreign   bool
		noRows    bool
		lock      bool
	}{
		{name: "unique violation", err: wrap("23505"), duplicate: true},
		{name: "foreign key violation", err: wrap("23503"), foreign: true},
		{name: "lock timeout", err: wrap("55P03"), lock: true},
		{name: "no rows", err: fmt.Errorf("get: %w", pgx.ErrNoRows), noRows: true},
		{name: "other server error", err: wrap("42P01")},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.duplicate, IsPgDuplicateError(tt.err))
			assert.Equal(t, tt.foreign, IsPgForeignKeyError(tt.err))
			assert.Equal(t, tt.noRows, IsPgNoRowsError(tt.err))
			assert.Equal(t, tt.lock, IsPgLockTimeout(tt.err))
		})
	}
}

func TestTableNames(t *testing.T) {
	tables := NewTableNames("test_")
	assert.Equal(t, "test_website_folders", tables.WebsiteFolders)
	assert.Equal(t, []string{
		"test_website_tags", "test_website_folders", "test_tags",
		"test_websites", "test_folders", "test_users",
	}, tables.All())
}

func TestCreateConnectionPool_BadURL(t *testing.T) {
	_, err := CreateConnectionPool(context.Background(), "postgres://%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse connection string")
}
