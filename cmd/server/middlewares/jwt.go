package middlewares

import (
	"errors"

	"noteshare/cmd/server/ctxkeys"
	"noteshare/cmd/server/handlers/httperr"
	"noteshare/internal/config"
	"noteshare/internal/logger"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingClaims is returned for a valid token without the user claims.
var ErrMissingClaims = errors.New("token is missing user claims")

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID   string
	Email    string
	Username string
}

// IdentityFromClaims reads user_id, email and username. user_id and username are required.
func IdentityFromClaims(claims jwt.MapClaims) (Identity, error) {
	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)
	if userID == "" || username == "" {
		return Identity{}, ErrMissingClaims
	}
	return Identity{UserID: userID, Email: email, Username: username}, nil
}

// JWT validates the Bearer token with cfg.SigningSecret() and stores the
// bearer's id, email and username in ctx.Locals.
// Any failure surfaces as a 401 through the global error handler.
func JWT(cfg config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.SigningSecret())},
		SuccessHandler: func(c *fiber.Ctx) error {
			token := c.Locals("user").(*jwt.Token)
			claims, _ := token.Claims.(jwt.MapClaims)

			id, err := IdentityFromClaims(claims)
			if err != nil {
				logger.L().Warn("rejected token", "path", c.Path(), "error", err)
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			c.Locals(ctxkeys.UserIDKey, id.UserID)
			c.Locals(ctxkeys.UserEmailKey, id.Email)
			c.Locals(ctxkeys.UsernameKey, id.Username)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.L().Info("unauthorized request", "path", c.Path(), "error", err)
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}
