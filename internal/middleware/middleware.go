package middleware

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/internal/api/presenters"
	"SmartCanteen-Backend/pkg/jwt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	CtxRoleKey      = "role"
	CtxSessionIDKey = "session_id"
)

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		// AuthMiddleware resolves the caller's role. Requests without a token act as STUDENT.
		AuthMiddleware(jwtService jwt.JWTService) fiber.Handler
		RequireRole(role domain.UserRole) fiber.Handler
	}

	middleware struct {
		allowOrigins string
	}
)

func NewMiddleware(allowOrigins []string) Middleware {
	origins := "*"
	if len(allowOrigins) > 0 {
		origins = strings.Join(allowOrigins, ",")
	}
	return &middleware{allowOrigins: origins}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: m.allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	})
}

func (m *middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			c.Locals(CtxRoleKey, domain.RoleStudent)
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}

		role, sessionID, err := jwtService.GetRoleByToken(parts[1])
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}

		c.Locals(CtxRoleKey, role)
		c.Locals(CtxSessionIDKey, sessionID)
		return c.Next()
	}
}

func (m *middleware) RequireRole(role domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !RoleOf(c).Satisfies(role) {
			return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MesaageUserNotAllowed, domain.ErrUserNotAllowed)
		}
		return c.Next()
	}
}

// RoleOf reads the role set by AuthMiddleware.
func RoleOf(c *fiber.Ctx) domain.UserRole {
	role, ok := c.Locals(CtxRoleKey).(domain.UserRole)
	if !ok {
		return domain.RoleStudent
	}
	return role
}
