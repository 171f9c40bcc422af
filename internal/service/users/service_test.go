package users

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
	"savesite/internal/repository/sqlite"
)

func newService(t *testing.T) bookmarksSvc.UserService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "users.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewUserService(store.Users(), logger)
}

func TestEnsureUser_CreatesOnce(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.EnsureUser(ctx, &bookmarksSvc.EnsureUserRequest{Email: "  Ada@Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.Equal(t, "ada", first.Name)
	assert.Equal(t, models.RoleUser, first.Role)

	again, err := svc.EnsureUser(ctx, &bookmarksSvc.EnsureUserRequest{Email: "ada@example.com", Name: "Someone Else"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "ada", again.Name, "existing users keep their name")

	byEmail, err := svc.GetUserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byEmail.ID)
}

func TestEnsureUser_RefreshesImage(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	old, fresh := "https://img.test/old.png", "https://img.test/new.png"

	created, err := svc.EnsureUser(ctx, &bookmarksSvc.EnsureUserRequest{Email: "a@b.co", Name: "A", Image: &old})
	require.NoError(t, err)

	_, err = svc.EnsureUser(ctx, &bookmarksSvc.EnsureUserRequest{Email: "a@b.co", Image: &fresh})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.Equal(t, fresh, *got.Image)
}

func TestEnsureUser_RejectsBadEmail(t *testing.T) {
	svc := newService(t)
	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := svc.EnsureUser(context.Background(), &bookmarksSvc.EnsureUserRequest{Email: email})
		assert.ErrorIs(t, err, domain.ErrValidation, "email %q", email)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	svc := newService(t)
	_, err := svc.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// racingRepo simulates another request registering the same email between
// the lookup and the insert.
type racingRepo struct {
	bookmarksRepo.UserRepository
	winner  *models.User
	lookups int
}

func (r *racingRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, domain.NotFound("user", email)
	}
	return r.winner, nil
}

func (r *racingRepo) Create(context.Context, *models.User) error {
	return &domain.ConflictError{Message: "email taken", ResourceType: "user", ResourceID: r.winner.ID}
}

func TestEnsureUser_LosesRegistrationRace(t *testing.T) {
	repo := &racingRepo{winner: &models.User{ID: "u-1", Email: "race@example.com", Role: models.RoleUser}}
	svc := NewUserService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	got, err := svc.EnsureUser(context.Background(), &bookmarksSvc.EnsureUserRequest{Email: "race@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, 2, repo.lookups)
}
