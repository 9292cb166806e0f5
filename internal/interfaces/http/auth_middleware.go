package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
	"github.com/jhoicas/retail-stock-api/internal/domain"
	"github.com/jhoicas/retail-stock-api/pkg/jwt"
)

// Locals keys de la sesión en Fiber.
const (
	LocalUserID     = "user_id"
	LocalLocationID = "location_id"
	LocalRole       = "role"
)

// AuthMiddleware valida el Bearer Token JWT y deja usuario, sede y rol en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("MISSING_TOKEN", "Authorization header requerido"))
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("INVALID_TOKEN", "formato: Bearer <token>"))
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("MISSING_TOKEN", "token vacío"))
		}
		session, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("INVALID_TOKEN", "token inválido o expirado"))
		}
		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalLocationID, session.LocationID)
		c.Locals(LocalRole, session.Role)
		return c.Next()
	}
}

// RequireRole permite el paso solo a los roles indicados. Va después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("MISSING_ROLE", "el token no incluye rol"))
		}
		if !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail("FORBIDDEN", "rol sin acceso a este recurso"))
		}
		return c.Next()
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetLocationID devuelve la sede de la sesión.
func GetLocationID(c *fiber.Ctx) string { return localString(c, LocalLocationID) }

// GetRole devuelve el rol de la sesión.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// actorFrom arma el actor del motor a partir de la sesión.
func actorFrom(c *fiber.Ctx) domain.Actor {
	return domain.Actor{UserID: GetUserID(c), LocationID: GetLocationID(c), Role: GetRole(c)}
}
