package controller

import (
	"errors"
	"net/http"

	"bizmarket/services"
	"bizmarket/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var kindStatus = map[services.Kind]int{
	services.KindNotFound:     fiber.StatusNotFound,
	services.KindForbidden:    fiber.StatusForbidden,
	services.KindUnauthorized: fiber.StatusUnauthorized,
	services.KindInvalidState: fiber.StatusBadRequest,
	services.KindInvalidAgent: fiber.StatusBadRequest,
	services.KindCooldown:     fiber.StatusBadRequest,
	services.KindValidation:   fiber.StatusBadRequest,
}

// handleServiceError turns a service failure into the error envelope.
// Internal failures are reported to Sentry and answered with a generic message.
func handleServiceError(c *fiber.Ctx, log *logrus.Entry, err error) error {
	var se *services.Error
	if errors.As(err, &se) {
		if status, ok := kindStatus[se.Kind]; ok {
			return utils.ErrorResponse(c, status, se.Message)
		}
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("request failed")
	utils.LogError("request_failed", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// bind parses and validates a JSON body. A non-empty result is the message to
// answer with.
func bind(c *fiber.Ctx, out interface{}) string {
	if err := c.BodyParser(out); err != nil {
		return "Invalid request body"
	}
	if err := utils.ValidateStruct(out); err != nil {
		return err.Error()
	}
	return ""
}

func pathID(c *fiber.Ctx, name string) (uint, error) {
	return utils.ParseID(c.Params(name))
}
