package auth

import (
	"chatline/contract"
	"chatline/domain"
	"chatline/errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the cookie holding the session token.
const CookieName = "jwt"

const userLocal = "user"

// Protect rejects requests without a valid session token and stores the
// authenticated user in the request locals. The token is read from the
// jwt cookie first, then from a Bearer Authorization header.
func Protect(tokens *TokenIssuer, users contract.IUserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(CookieName)
		if tokenStr == "" {
			tokenStr = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}
		if tokenStr == "" {
			return reject(c, errors.ErrUnauthorized, "Unauthorized - No Token Provided")
		}

		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			return reject(c, errors.ErrUnauthorized, "Unauthorized - Invalid Token")
		}

		user, err := users.GetUserByID(c.UserContext(), claims.UserID)
		if err != nil {
			return reject(c, err, errors.PublicMessage(err))
		}

		c.Locals(userLocal, user)
		return c.Next()
	}
}

// CurrentUser returns the user set by Protect.
func CurrentUser(c *fiber.Ctx) (domain.User, bool) {
	user, ok := c.Locals(userLocal).(domain.User)
	return user, ok
}

func reject(c *fiber.Ctx, err error, message string) error {
	return c.Status(errors.MapToHTTPStatus(err)).JSON(fiber.Map{"message": message})
}
