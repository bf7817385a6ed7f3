package middlewares

import (
	"context"

	errprocess "marketplace_chat_service/pkg/err"
	t_token "marketplace_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenMemberID get member form token, set c.locals name
	TokenMemberID = "MemberID"
)

// Authenticator resolve a credential token to a member id
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// TokenFromRequest token from the auth query, the auth_token cookie or a Bearer header
func TokenFromRequest(c *fiber.Ctx) string {
	if tokenStr := c.Query(QueryToken); tokenStr != "" {
		return tokenStr
	}
	if tokenStr := c.Cookies(CookieToken); tokenStr != "" {
		return tokenStr
	}
	return t_token.StripBearer(c.Get(fiber.HeaderAuthorization))
}

// JWTMiddleware resolve the caller identity and store it in c.Locals(TokenMemberID)
func JWTMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		memberID, err := auth.Authenticate(c.UserContext(), tokenStr)
		if err != nil {
			return c.Status(errprocess.StatusCode(err)).JSON(fiber.Map{
				"error": errprocess.PublicMessage(err),
			})
		}

		c.Locals(TokenMemberID, memberID)
		return c.Next()
	}
}

// MemberID identity stored by JWTMiddleware
func MemberID(c *fiber.Ctx) string {
	id, _ := c.Locals(TokenMemberID).(string)
	return id
}
