package services_test

import (
	"errors"
	"fmt"
	"testing"

	"lifejournal/internal/models"
	"lifejournal/internal/repositories"
	"lifejournal/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	expected := []models.User{{ID: 2, EmailAddress: "a@x.com"}, {ID: 1, EmailAddress: "b@x.com"}}
	mockRepo.On("GetAll").Return(expected, nil).Once()

	users, err := service.ListUsers()
	assert.NoError(t, err)
	assert.Equal(t, expected, users)

	mockRepo.On("GetAll").Return(nil, errors.New("connection refused")).Once()
	_, err = service.ListUsers()
	assert.ErrorIs(t, err, services.ErrInternal)
	assert.NotContains(t, err.Error(), "connection refused")
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	user := &models.User{ID: 1, EmailAddress: "a@x.com"}
	mockRepo.On("GetByEmail", "a@x.com").Return(user, nil).Once()
	got, err := service.GetUserByEmail("a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, user, got)

	mockRepo.On("GetByEmail", "nobody@x.com").
		Return(nil, fmt.Errorf("user with email nobody@x.com: %w", repositories.ErrNotFound)).Once()
	got, err = service.GetUserByEmail("nobody@x.com")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, "User not found: nobody@x.com", err.Error())

	_, err = service.GetUserByEmail("")
	assert.ErrorIs(t, err, services.ErrBadRequest)
	mockRepo.AssertExpectations(t)
}

func TestUserService_CreateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.EmailAddress == "a@x.com"
	})).Return(nil).Once()

	user, err := service.CreateUser("a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", user.EmailAddress)

	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(errors.New("database error")).Once()
	_, err = service.CreateUser("b@x.com")
	assert.ErrorIs(t, err, services.ErrInternal)

	_, err = service.CreateUser("")
	assert.ErrorIs(t, err, services.ErrBadRequest)
	mockRepo.AssertExpectations(t)
}
