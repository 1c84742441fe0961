package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

const InternalErrorDetail = "An internal error occurred. Please try again later."

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ErrorHandler is installed as fiber.Config.ErrorHandler. Unknown errors are
// logged and answered with a fixed detail so internal text never reaches
// the client.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code, detail := classify(err)
	if code == fiber.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
	}
	return ctx.Status(code).JSON(ErrorResponse{Detail: detail})
}

func classify(err error) (int, string) {
	var (
		fiberErr      *fiber.Error
		validationErr *ValidationError
		badRequestErr *BadRequestError
		notFoundErr   *NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusUnprocessableEntity, validationErr.Error()
	case errors.As(err, &badRequestErr):
		return fiber.StatusBadRequest, badRequestErr.Message
	case errors.As(err, &notFoundErr):
		return fiber.StatusNotFound, notFoundErr.Message
	case errors.As(err, &fiberErr):
		if fiberErr.Code == fiber.StatusInternalServerError {
			return fiberErr.Code, InternalErrorDetail
		}
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, InternalErrorDetail
	}
}
