package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/cep-lookup/internal/history"
	"github.com/i474232898/cep-lookup/internal/lookup"
)

var validate = validator.New()

// RegisterRoutes wires both presentation surfaces into the Fiber app: the
// search surface backed by session and the standalone history surface, which
// reads the store afresh on every request.
func RegisterRoutes(app *fiber.App, session *lookup.Session, hist *history.Store) {
	v1 := app.Group("/api/v1")

	search := v1.Group("/search")

	search.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(session.State())
	})

	search.Post("/", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		code, err := req.postalCode()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, lookup.Message(err))
		}

		out, err := session.Search(c.UserContext(), code)
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(out)
	})

	search.Post("/reload", func(c *fiber.Ctx) error {
		if err := session.Mount(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load search history")
		}
		return c.JSON(session.State())
	})

	search.Post("/history/:cep", func(c *fiber.Ctx) error {
		req := searchRequest{CEP: c.Params("cep")}
		code, err := req.postalCode()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, lookup.Message(err))
		}

		out, err := session.SelectHistoryEntry(c.UserContext(), code)
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(out)
	})

	search.Delete("/history", func(c *fiber.Ctx) error {
		list, err := session.ClearHistory(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear search history")
		}
		return c.JSON(fiber.Map{"history": list})
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		list, err := hist.Load(c.UserContext())
		if err != nil {
			if errors.Is(err, history.ErrStorageRead) {
				return c.JSON(fiber.Map{
					"history":    history.List{},
					"diagnostic": "stored history was unreadable and has been ignored",
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load search history")
		}
		return c.JSON(fiber.Map{"history": list})
	})

	v1.Delete("/history", func(c *fiber.Ctx) error {
		list, err := hist.Clear(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear search history")
		}
		return c.JSON(fiber.Map{"history": list})
	})
}

// searchRequest is the input collected by a search surface.
type searchRequest struct {
	CEP string `json:"cep"`
}

// postalCode normalizes and validates the submitted code.
func (r searchRequest) postalCode() (string, error) {
	code := lookup.NormalizePostalCode(r.CEP)
	if err := validate.Var(code, lookup.PostalCodeRule); err != nil {
		return "", lookup.ErrValidation
	}
	return code, nil
}

// lookupError maps lookup failures to HTTP errors with fixed messages.
func lookupError(err error) error {
	switch {
	case errors.Is(err, lookup.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, lookup.Message(err))
	case errors.Is(err, lookup.ErrLookupFailed):
		return fiber.NewError(fiber.StatusBadGateway, lookup.Message(err))
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "search failed")
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
