package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hrsdata/codebook-backend/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

// respondError translates domain sentinels into HTTP status codes. Unknown
// errors become a 500 with a generic body so internals never leak to clients.
func (a *API) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrYearUnknown):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: err.Error()})
	default:
		a.log.Error("request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "internal error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: msg})
}
