package donation

import (
	"errors"
	"fmt"
	"time"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/audit"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/auth"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/database"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/events"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/ledger"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateDonationRequest struct {
	LocationID    uint   `json:"location_id"`
	DonorName     string `json:"donor_name"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Unit          string `json:"unit"`
	TotalCapacity *int   `json:"total_capacity"`
	RecipientIDs  []uint `json:"recipient_ids"` // obrigatório para "Birthday Gift"
}

type AddSupplyRequest struct {
	Amount int `json:"amount"`
}

type DonationResponse struct {
	ID            uint   `json:"id"`
	LocationID    uint   `json:"location_id"`
	DonorName     string `json:"donor_name"`
	Category      string `json:"category"`
	Description   string `json:"description"`
	Unit          string `json:"unit"`
	TotalCapacity *int   `json:"total_capacity"`
	TotalConsumed int    `json:"total_consumed"`
	Remaining     *int   `json:"remaining"`
	CreatedAt     string `json:"created_at"`
}

func toResponse(d models.Donation, stock *ledger.StockSummary) DonationResponse {
	resp := DonationResponse{
		ID:            d.ID,
		LocationID:    d.LocationID,
		DonorName:     d.DonorName,
		Category:      d.Category,
		Description:   d.Description,
		Unit:          d.Unit,
		TotalCapacity: d.TotalCapacity,
		CreatedAt:     d.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if stock != nil {
		resp.TotalConsumed = stock.TotalConsumed
		resp.Remaining = stock.Remaining
	}
	return resp
}

func respondLedgerError(c *fiber.Ctx, err error) error {
	var notFound *ledger.DonationNotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":       "Doação não encontrada",
			"donation_id": notFound.DonationID,
		})
	}
	var missing *ledger.GiftAssignmentMissingError
	if errors.As(err, &missing) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":       "Criança não declarada como destinatária do presente",
			"donation_id": missing.DonationID,
			"child_id":    missing.ChildID,
		})
	}
	var denied *ledger.AuthorizationDeniedError
	if errors.As(err, &denied) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":       "Sem autorização para a unidade",
			"location_id": denied.LocationID,
		})
	}
	if errors.Is(err, ledger.ErrConcurrencyConflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     err.Error(),
			"retryable": true,
		})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Registro não encontrado")
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

// POST /api/donations
func CreateDonationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDonationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.LocationID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "location_id é obrigatório")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		svc := ledger.NewService(database.DB)
		donation, err := svc.CreateDonation(actor, ledger.DonationInput{
			LocationID:    body.LocationID,
			DonorName:     body.DonorName,
			Category:      body.Category,
			Description:   body.Description,
			Unit:          body.Unit,
			TotalCapacity: body.TotalCapacity,
			RecipientIDs:  body.RecipientIDs,
		})
		if err != nil {
			return respondLedgerError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			LocationID:  &donation.LocationID,
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  "donation",
			EntityID:    donation.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Doação criada: %s (%s)", donation.DonorName, donation.Category),
			After:       donation,
		})

		stock, _ := svc.Stock(donation.ID)
		return c.Status(fiber.StatusCreated).JSON(toResponse(*donation, stock))
	}
}

// GET /api/donations
func ListDonationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		query := database.DB.Order("created_at DESC")
		if actor.Role != models.RoleSuperAdmin {
			query = query.Where("location_id IN ?", actor.LocationIDs)
		}
		if locationID := c.QueryInt("location_id"); locationID > 0 {
			query = query.Where("location_id = ?", locationID)
		}
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}

		var donations []models.Donation
		if err := query.Find(&donations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as doações")
		}

		svc := ledger.NewService(database.DB)
		resp := make([]DonationResponse, 0, len(donations))
		for _, d := range donations {
			stock, err := svc.Stock(d.ID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível calcular o estoque")
			}
			resp = append(resp, toResponse(d, stock))
		}
		return c.JSON(resp)
	}
}

// GET /api/donations/:id
func GetDonationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var donation models.Donation
		if err := database.DB.First(&donation, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Doação não encontrada")
		}
		if !actor.CanAccess(donation.LocationID) {
			return fiber.NewError(fiber.StatusForbidden, "Sem autorização para a unidade desta doação")
		}

		svc := ledger.NewService(database.DB)
		stock, err := svc.Stock(donation.ID)
		if err != nil {
			return respondLedgerError(c, err)
		}

		return c.JSON(toResponse(donation, stock))
	}
}

// POST /api/donations/:id/supply
// Aporte de estoque. O primeiro aporte de uma doação sem controle define a
// capacidade; os seguintes somam. O antes/depois vai para a auditoria.
func AddSupplyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body AddSupplyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		svc := ledger.NewService(database.DB)
		result, err := svc.AddSupply(actor, uint(id), body.Amount)
		if err != nil {
			return respondLedgerError(c, err)
		}

		description := fmt.Sprintf("Aporte de %d: capacidade %s -> %d", body.Amount, formatCapacity(result.Before), result.After)
		_ = audit.WriteLog(audit.LogOptions{
			LocationID:  &result.LocationID,
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  "donation",
			EntityID:    result.DonationID,
			Action:      models.AuditActionUpdate,
			Description: description,
			Before:      fiber.Map{"total_capacity": result.Before},
			After:       fiber.Map{"total_capacity": result.After},
		})

		after := result.After
		events.Publish(events.LedgerEvent{
			Type:       "supply_added",
			LocationID: result.LocationID,
			DonationID: &result.DonationID,
			Before:     result.Before,
			After:      &after,
			Timestamp:  time.Now(),
		})

		return c.JSON(result)
	}
}

func formatCapacity(v *int) string {
	if v == nil {
		return "sem controle"
	}
	return fmt.Sprintf("%d", *v)
}
