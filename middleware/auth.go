package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bizmarket/models"
	"bizmarket/store"
	"bizmarket/utils"
)

const (
	localUser  = "user"
	localActor = "actor"

	// AccessTokenCookie is the cookie Login sets and the auth middleware reads.
	AccessTokenCookie = "access_token"
)

var errNoToken = errors.New("no token")

// bearerToken reads the token from the Authorization header, falling back to
// the access_token cookie.
func bearerToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
			return "", errors.New("invalid authorization format")
		}
		return tokenParts[1], nil
	}
	if token := c.Cookies(AccessTokenCookie); token != "" {
		return token, nil
	}
	return "", errNoToken
}

func resolveUser(c *fiber.Ctx, users store.UserStore, secret, token string) (*models.User, error) {
	claims, err := utils.ParseJWTToken(token, secret)
	if err != nil {
		return nil, err
	}
	return users.FindUser(c.UserContext(), claims.UserID)
}

// Protected is the identity gate: it requires a valid token of an active account.
func Protected(users store.UserStore, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if errors.Is(err, errNoToken) {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required")
		}
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format")
		}

		user, err := resolveUser(c, users, secret, token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}
		if !user.IsActive() {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Account is not active")
		}

		c.Locals(localUser, user)
		c.Locals(localActor, models.ActorOf(user))
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent and lets anonymous
// requests through. A token that does not verify is still rejected. Accounts
// that are not active proceed as anonymous.
func OptionalAuth(users store.UserStore, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if errors.Is(err, errNoToken) {
			return c.Next()
		}
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format")
		}

		user, err := resolveUser(c, users, secret, token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}
		if user.IsActive() {
			c.Locals(localUser, user)
			c.Locals(localActor, models.ActorOf(user))
		}
		return c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles. It must run after Protected.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := CurrentActor(c)
		if actor == nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required")
		}
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Insufficient permissions")
	}
}

// CurrentActor returns the authenticated actor, or nil for anonymous requests.
func CurrentActor(c *fiber.Ctx) *models.Actor {
	actor, _ := c.Locals(localActor).(*models.Actor)
	return actor
}

// CurrentUser returns the authenticated account, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}
