package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"tariffapi/internal/auth"
)

const (
	// UserHeader carries the self-declared uploader identity.
	UserHeader = "X-User"
	// AdminKeyHeader carries the admin shared secret.
	AdminKeyHeader = "X-Admin-Key"
	// CallerLocalKey is the key used to store the auth.Caller in Fiber's context locals.
	CallerLocalKey = "caller"
)

// Identify resolves the caller of each request and stores it under CallerLocalKey.
//
// Identity: X-User header, then ?user= query, then form field "username".
// Admin: any of X-Admin-Key, Authorization: Bearer, or form field "adminKey" matching key.
func Identify(key auth.AdminKey) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := strings.TrimSpace(c.Get(UserHeader))
		if identity == "" {
			identity = strings.TrimSpace(c.Query("user"))
		}
		if identity == "" {
			identity = strings.TrimSpace(c.FormValue("username"))
		}
		// fiber values alias the request buffer; the identity outlives it as a record owner
		identity = utils.CopyString(identity)

		admin := key.Enabled() && key.MatchesAny(
			c.Get(AdminKeyHeader),
			auth.BearerToken(c.Get(fiber.HeaderAuthorization)),
			c.FormValue("adminKey"),
		)

		c.Locals(CallerLocalKey, auth.Caller{Identity: identity, Admin: admin})
		return c.Next()
	}
}

// CallerFromCtx returns the caller stored by Identify, or an anonymous caller.
func CallerFromCtx(c *fiber.Ctx) auth.Caller {
	if v, ok := c.Locals(CallerLocalKey).(auth.Caller); ok {
		return v
	}
	return auth.Caller{}
}
