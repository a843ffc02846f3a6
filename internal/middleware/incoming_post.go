package middleware

import (
	"lifejournal/internal/logging"
	"lifejournal/internal/metrics"
	"lifejournal/internal/models"
	"lifejournal/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

// RecordIncomingPost writes every POST request to the audit trail before
// any handler parses it. A failed write is logged and the request goes on.
func RecordIncomingPost(repo repositories.IncomingPostRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		post := &models.IncomingPost{
			RequestID: GetRequestID(c),
			Fullpath:  c.OriginalURL(),
			Referer:   c.Get(fiber.HeaderReferer),
			RawBody:   string(c.Body()),
		}
		if err := repo.Create(post); err != nil {
			logging.Error().
				Err(err).
				Str("request_id", post.RequestID).
				Str("path", post.Fullpath).
				Msg("failed to record incoming post")
		} else {
			metrics.IncomingPosts.Inc()
		}
		return c.Next()
	}
}
