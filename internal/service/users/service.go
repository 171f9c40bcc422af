package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"savesite/internal/domain"
	models "savesite/internal/domain/models/bookmarks"
	bookmarksRepo "savesite/internal/domain/repositories/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
)

type userService struct {
	userRepo bookmarksRepo.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo bookmarksRepo.UserRepository, logger *slog.Logger) bookmarksSvc.UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, normalizeEmail(email))
}

// EnsureUser returns the user registered under email, creating it on first
// sign-in with role user. The name falls back to the email's local part and
// the stored image is refreshed when the provider reports a different one.
func (s *userService) EnsureUser(ctx context.Context, req *bookmarksSvc.EnsureUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return nil, fmt.Errorf("%w: email: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if req.Image != nil && (user.Image == nil || *user.Image != *req.Image) {
			if err := s.userRepo.UpdateImage(ctx, user.ID, req.Image); err != nil {
				return nil, err
			}
			user.Image = req.Image
			s.logger.Debug("user image refreshed", "user_id", user.ID)
		}
		return user, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}
	user = &models.User{
		Name:  name,
		Email: email,
		Role:  models.RoleUser,
		Image: req.Image,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent first sign-in
		if errors.Is(err, domain.ErrConflict) {
			return s.userRepo.GetByEmail(ctx, email)
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
