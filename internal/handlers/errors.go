package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"tracker/internal/common"

	"github.com/gofiber/fiber/v2"
)

// respondError converts a service error into its HTTP response. Anything
// outside the known taxonomy is logged and reported as a bare 500 so store
// and driver messages never reach the client.
func respondError(c *fiber.Ctx, err error, op string) error {
	var verr *common.ValidationError
	var authErr *common.AuthenticationError

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, common.ErrDuplicateEmail):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"email": []string{"The email has already been taken."}},
		})
	case errors.Is(err, common.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	case errors.As(err, &authErr):
		msg := "Invalid authentication token"
		if authErr.Kind == common.AuthMissing {
			msg = "Authentication token required"
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
	case errors.Is(err, common.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized"})
	case errors.Is(err, common.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Activity not found"})
	}

	log.Printf("Error during %s: %v", op, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

// parseBody decodes the request body into out. A JSON value of the wrong
// type for a known field becomes a field-scoped *common.ValidationError.
func parseBody(c *fiber.Ctx, out any) error {
	err := c.BodyParser(out)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		name := strings.ReplaceAll(field, "_", " ")
		msg := fmt.Sprintf("The %s field is invalid.", name)
		if typeErr.Type != nil {
			switch typeErr.Type.Kind() {
			case reflect.Int, reflect.Int64, reflect.Int32:
				msg = fmt.Sprintf("The %s must be an integer.", name)
			case reflect.String:
				msg = fmt.Sprintf("The %s must be a string.", name)
			}
		}
		return common.NewValidationError(field, msg)
	}
	return err
}

// bodyError answers a parseBody failure: 422 for field type errors, 400 for
// anything that is not JSON at all.
func bodyError(c *fiber.Ctx, err error, op string) error {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return respondError(c, err, op)
	}
	return badBody(c, err)
}

// badBody answers a request whose body could not be parsed.
func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body for %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
}

// ErrorHandler is the app-wide fallback for errors that escape handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
