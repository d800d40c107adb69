package utils

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse writes the standard failure envelope
func ErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// ListResponse is SuccessResponse for collections; it also carries the item count.
func ListResponse(data interface{}, count int) fiber.Map {
	resp := SuccessResponse(data)
	resp["count"] = count
	return resp
}

// ParseID parses a positive numeric path or body identifier.
func ParseID(s string) (uint, error) {
	i, err := strconv.ParseUint(s, 10, 32)
	if err != nil || i == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(i), nil
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}
