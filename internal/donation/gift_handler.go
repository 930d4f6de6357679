package donation

import (
	"errors"
	"fmt"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/audit"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/auth"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/database"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/ledger"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
)

type GiftAssignmentResponse struct {
	ID          uint   `json:"id"`
	DonationID  uint   `json:"donation_id"`
	ChildID     uint   `json:"child_id"`
	ChildName   string `json:"child_name"`
	Delivered   bool   `json:"delivered"`
	DeliveredAt string `json:"delivered_at,omitempty"`
}

func toGiftResponse(a models.GiftAssignment) GiftAssignmentResponse {
	resp := GiftAssignmentResponse{
		ID:         a.ID,
		DonationID: a.DonationID,
		ChildID:    a.ChildID,
		ChildName:  a.Child.Name,
		Delivered:  a.Delivered,
	}
	if a.DeliveredAt != nil {
		resp.DeliveredAt = a.DeliveredAt.Format("2006-01-02 15:04:05")
	}
	return resp
}

// GET /api/donations/:id/gifts
func ListGiftAssignmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		svc := ledger.NewService(database.DB)
		assignments, err := svc.GiftStatus(actor, uint(id))
		if err != nil {
			if errors.Is(err, ledger.ErrNotGiftDonation) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return respondLedgerError(c, err)
		}

		resp := make([]GiftAssignmentResponse, 0, len(assignments))
		for _, a := range assignments {
			resp = append(resp, toGiftResponse(a))
		}
		return c.JSON(resp)
	}
}

// POST /api/donations/:id/gifts/:childId/deliver
// Confirmação administrativa de entrega, sem registro de consumo.
func MarkGiftDeliveredHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}
		childID, err := c.ParamsInt("childId")
		if err != nil || childID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "childId inválido")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		svc := ledger.NewService(database.DB)
		assignment, err := svc.MarkGiftDelivered(actor, uint(id), uint(childID))
		if err != nil {
			if errors.Is(err, ledger.ErrNotGiftDonation) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return respondLedgerError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  "gift_assignment",
			EntityID:    assignment.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Entrega de presente confirmada (doação %d, criança %d)", id, childID),
			After:       assignment,
		})

		return c.JSON(toGiftResponse(*assignment))
	}
}
