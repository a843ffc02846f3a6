package handlers

import (
	"time"

	"lifejournal/internal/logging"
	"lifejournal/internal/metrics"
	"lifejournal/internal/models"
	"lifejournal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// EntryHandler handles HTTP requests for entries.
type EntryHandler struct {
	service *services.EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(service *services.EntryService) *EntryHandler {
	return &EntryHandler{
		service: service,
	}
}

// RegisterRoutes registers the entry routes with the Fiber app.
func (h *EntryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/users/:email/entries", h.HandleListUserEntries)

	entryRoutes := router.Group("/entries")
	entryRoutes.Get("/", h.HandleListEntries)
	entryRoutes.Post("/", h.HandleCreateEntry)
	entryRoutes.Get("/:signature", h.HandleGetEntry)
	entryRoutes.Post("/:signature", h.HandleUpdateEntry)
	entryRoutes.Put("/:signature", h.HandleUpdateEntry)
}

// HandleListEntries returns every entry ordered by owning user.
func (h *EntryHandler) HandleListEntries(c *fiber.Ctx) error {
	entries, err := h.service.ListAllEntries()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nonNil(entries))
}

// HandleListUserEntries returns the entries of one user.
func (h *EntryHandler) HandleListUserEntries(c *fiber.Ctx) error {
	entries, err := h.service.ListEntriesForUser(param(c, "email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nonNil(entries))
}

// HandleGetEntry returns one entry by signature.
func (h *EntryHandler) HandleGetEntry(c *fiber.Ctx) error {
	entry, err := h.service.GetEntryBySignature(param(c, "signature"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// HandleCreateEntry creates an empty entry and emails the reminder.
func (h *EntryHandler) HandleCreateEntry(c *fiber.Ctx) error {
	req, bind := bindBody[CreateEntryRequest](c)
	logging.Debug().
		Str("email", req.EmailAddress).
		Str("for_date", req.ForDate).
		Stringer("body", bind.Status).
		Msg("create entry request")

	if err := validateInput(req, bind); err != nil {
		return badRequest(c, err)
	}

	entry, err := h.service.CreateEntry(req.EmailAddress, req.ForDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// HandleUpdateEntry stores {"entry_body": "..."} on the entry.
func (h *EntryHandler) HandleUpdateEntry(c *fiber.Ctx) error {
	sig := param(c, "signature")
	req, bind := bindBody[UpdateEntryRequest](c)
	if err := validateInput(req, bind); err != nil {
		return badRequest(c, err)
	}

	entry, err := h.service.UpdateEntryBySignature(sig, *req.EntryBody, time.Time{})
	if err != nil {
		return respondError(c, err)
	}
	metrics.EntriesSubmitted.WithLabelValues(metrics.SourceAPI).Inc()
	return c.JSON(entry)
}

func nonNil(entries []models.Entry) []models.Entry {
	if entries == nil {
		return []models.Entry{}
	}
	return entries
}
