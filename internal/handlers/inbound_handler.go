package handlers

import (
	"lifejournal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// InboundHandler receives the email provider's webhook for replies to
// reminder emails.
type InboundHandler struct {
	service *services.InboundService
}

// NewInboundHandler creates a new InboundHandler.
func NewInboundHandler(service *services.InboundService) *InboundHandler {
	return &InboundHandler{
		service: service,
	}
}

// RegisterRoutes registers the webhook route.
func (h *InboundHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/incoming", h.HandleIncoming)
}

// HandleIncoming parses a form-encoded or multipart reply and stores its
// text on the entry it answers. It answers 204 on success.
func (h *InboundHandler) HandleIncoming(c *fiber.Ctx) error {
	reply := services.InboundReply{
		Sender:         formValue(c, "sender"),
		Recipient:      formValue(c, "recipient"),
		InReplyTo:      formValue(c, "In-Reply-To", "in-reply-to"),
		MessageHeaders: formValue(c, "message-headers", "Message-Headers"),
		StrippedText:   formValue(c, "stripped-text"),
		BodyPlain:      formValue(c, "body-plain"),
		Date:           formValue(c, "Date", "date"),
	}

	if _, err := h.service.HandleReply(reply); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// formValue returns the first non-empty form field among names.
func formValue(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if v := c.FormValue(name); v != "" {
			return v
		}
	}
	return ""
}
