package audit

import (
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/auth"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/database"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		query := database.DB.Model(&models.AuditLog{}).Order("created_at DESC").Limit(200)

		// Coordenador só enxerga as próprias unidades
		if actor.Role != models.RoleSuperAdmin {
			query = query.Where("location_id IN ?", actor.LocationIDs)
		}

		if entityType := c.Query("entity_type"); entityType != "" {
			query = query.Where("entity_type = ?", entityType)
		}

		var logs []models.AuditLog
		if err := query.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os logs de auditoria")
		}

		return c.JSON(logs)
	}
}
