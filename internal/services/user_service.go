package services

import (
	"errors"

	"lifejournal/internal/logging"
	"lifejournal/internal/metrics"
	"lifejournal/internal/models"
	"lifejournal/internal/repositories"
)

// UserService handles business logic related to users.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// ListUsers returns all users ordered by email address.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		return nil, internal(err, "Could not retrieve users")
	}
	return users, nil
}

// GetUserByEmail returns the user registered under email.
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	if email == "" {
		return nil, badRequest("No user email address found")
	}
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(err, "User not found: %s", email)
		}
		return nil, internal(err, "Could not retrieve user %s", email)
	}
	return user, nil
}

// CreateUser stores a new user. Duplicate email addresses are not rejected.
func (s *UserService) CreateUser(email string) (*models.User, error) {
	if email == "" {
		return nil, badRequest("No user email address found")
	}

	user := &models.User{EmailAddress: email}
	if err := s.repo.Create(user); err != nil {
		return nil, internal(err, "Could not create user %s", email)
	}

	metrics.UsersCreated.Inc()
	logging.Debug().Uint("user_id", user.ID).Str("email", email).Msg("user created")
	return user, nil
}
