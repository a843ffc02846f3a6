package handlers

import (
	"lifejournal/internal/models"
	"lifejournal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes. A user can be fetched under
// both /users/:email and /user/:email.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/users", h.HandleListUsers)
	router.Post("/users", h.HandleCreateUser)
	router.Get("/users/:email", h.HandleGetUser)
	router.Get("/user/:email", h.HandleGetUser)
}

// HandleListUsers returns {"users": [...]} ordered by email address.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers()
	if err != nil {
		return respondError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(fiber.Map{"users": users})
}

// HandleGetUser returns a single user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUserByEmail(param(c, "email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleCreateUser creates a user from {"email_address": "..."}.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	req, bind := bindBody[CreateUserRequest](c)
	if err := validateInput(req, bind); err != nil {
		return badRequest(c, err)
	}

	user, err := h.service.CreateUser(req.EmailAddress)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
