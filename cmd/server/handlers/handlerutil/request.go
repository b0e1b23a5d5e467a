package handlerutil

import (
	"errors"

	"noteshare/cmd/server/ctxkeys"
	"noteshare/cmd/server/handlers/httperr"
	"noteshare/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Mapping pairs a domain error with the HTTP status it is reported as.
type Mapping struct {
	Err    error
	Status int
}

// GetUserID extracts user ID from fiber context
func GetUserID(c *fiber.Ctx) (bson.ObjectID, error) {
	userIDStr, ok := c.Locals(ctxkeys.UserIDKey).(string)
	if !ok {
		logger.L().Error("user ID not found in context", "handler", "GetUserID", "path", c.Path())
		return bson.ObjectID{}, httperr.Fail(httperr.ErrUnauthorized)
	}

	userID, err := bson.ObjectIDFromHex(userIDStr)
	if err != nil {
		logger.L().Error("invalid user ID", "handler", "GetUserID", "userIDStr", userIDStr, "path", c.Path(), "error", err)
		return bson.ObjectID{}, httperr.Fail(httperr.ErrUnauthorized)
	}

	return userID, nil
}

// GetUsername returns the username claim stored by the JWT middleware.
func GetUsername(c *fiber.Ctx) string {
	username, _ := c.Locals(ctxkeys.UsernameKey).(string)
	return username
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "userID", c.Locals(ctxkeys.UserIDKey), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "userID", c.Locals(ctxkeys.UserIDKey), "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ParseAndValidateQuery parses query parameters and validates them
func ParseAndValidateQuery(c *fiber.Ctx, req any, validator *validator.Validate, handlerName string) error {
	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := validator.Struct(req); err != nil {
		logger.L().Warn("query validation failed", "handler", handlerName, "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

// ObjectIDParam reads the ObjectID path parameter name. A malformed id is
// reported as notFoundErr so ids cannot be probed.
func ObjectIDParam(c *fiber.Ctx, name, handlerName string, notFoundErr error) (bson.ObjectID, error) {
	raw := c.Params(name)
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		logger.L().Info("invalid id parameter", "handler", handlerName, "param", name, "value", raw, "path", c.Path())
		return bson.ObjectID{}, httperr.From(fiber.StatusNotFound, notFoundErr)
	}
	return id, nil
}

// HandleServiceError maps err through mappings; unmapped errors become a 500.
func HandleServiceError(c *fiber.Ctx, err error, handlerName string, mappings ...Mapping) error {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			logger.L().Info("request rejected", "handler", handlerName, "userID", c.Locals(ctxkeys.UserIDKey), "status", m.Status, "error", err)
			return httperr.From(m.Status, m.Err)
		}
	}

	logger.L().Error("service operation failed", "handler", handlerName, "userID", c.Locals(ctxkeys.UserIDKey), "error", err)
	return httperr.Fail(httperr.ErrInternal)
}
