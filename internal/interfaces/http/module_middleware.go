package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-stock-api/internal/application/dto"
)

// locationChecker es el contrato mínimo que necesita el middleware para verificar la sede.
// Lo implementa *inventory.StockQueryUseCase.
type locationChecker interface {
	LocationExists(ctx context.Context, locationID string) (bool, error)
}

// RequireLocation verifica que la sede del token siga registrada antes de operar en ella.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalLocationID).
//
// Comportamiento:
//   - 401 Unauthorized → el token no trae sede.
//   - 403 Forbidden → la sede ya no existe.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
func RequireLocation(checker locationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID := GetLocationID(c)
		if locationID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "location_id no encontrado en el token"))
		}

		found, err := checker.LocationExists(c.UserContext(), locationID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Fail("LOCATION_CHECK_FAILED", "no se pudo verificar la sede, intente más tarde"))
		}
		if !found {
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail("LOCATION_UNKNOWN", "la sede '"+locationID+"' no está registrada"))
		}
		return c.Next()
	}
}
