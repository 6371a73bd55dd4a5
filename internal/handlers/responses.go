package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"securemail/internal/errs"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// validationFailed renders struct validation errors the same way for every form.
func validationFailed(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// fieldError reports a single rejected form field.
func fieldError(c *fiber.Ctx, status int, field, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  map[string]string{field: message},
	})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errs.ErrBadCredentials), errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrSessionExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, errs.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, errs.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, errs.ErrRecipientNotFound):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
