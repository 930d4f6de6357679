package delivery

import (
	"errors"
	"fmt"
	"sort"
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

type DeliveryEntryRequest struct {
	ChildID    uint  `json:"child_id"`
	LocationID uint  `json:"location_id"`
	DonationID *uint `json:"donation_id"`
	Attended   *bool `json:"attended"` // ausente = presente
	Amount     *int  `json:"amount"`   // ausente = 1
}

type SubmitBatchRequest struct {
	Entries []DeliveryEntryRequest `json:"entries"`
}

type DeliveryResponse struct {
	ID             uint    `json:"id"`
	LocationID     uint    `json:"location_id"`
	ChildID        uint    `json:"child_id"`
	ChildName      string  `json:"child_name,omitempty"`
	DonationID     *uint   `json:"donation_id"`
	Attended       bool    `json:"attended"`
	AmountConsumed *int    `json:"amount_consumed"`
	BatchID        *string `json:"batch_id"`
	CreatedAt      string  `json:"created_at"`
}

func toEntry(req DeliveryEntryRequest) ledger.BatchEntry {
	attended := true
	if req.Attended != nil {
		attended = *req.Attended
	}
	return ledger.BatchEntry{
		ChildID:    req.ChildID,
		LocationID: req.LocationID,
		DonationID: req.DonationID,
		Attended:   attended,
		Amount:     req.Amount,
	}
}

func toResponse(r models.ConsumptionRecord) DeliveryResponse {
	return DeliveryResponse{
		ID:             r.ID,
		LocationID:     r.LocationID,
		ChildID:        r.ChildID,
		ChildName:      r.Child.Name,
		DonationID:     r.DonationID,
		Attended:       r.Attended,
		AmountConsumed: r.AmountConsumed,
		BatchID:        r.BatchID,
		CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func distinctLocationIDs(records []models.ConsumptionRecord) []uint {
	seen := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, r := range records {
		if seen[r.LocationID] {
			continue
		}
		seen[r.LocationID] = true
		ids = append(ids, r.LocationID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func recordsForLocation(records []models.ConsumptionRecord, locationID uint) []models.ConsumptionRecord {
	out := make([]models.ConsumptionRecord, 0, len(records))
	for _, r := range records {
		if r.LocationID == locationID {
			out = append(out, r)
		}
	}
	return out
}

// Traduz os erros tipados do livro-razão para HTTP mantendo o detalhe
// estruturado (doação, disponível, solicitado) que o chamador precisa.
func respondLedgerError(c *fiber.Ctx, err error) error {
	var insufficient *ledger.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":       "Estoque insuficiente",
			"donation_id": insufficient.DonationID,
			"available":   insufficient.Available,
			"requested":   insufficient.Requested,
		})
	}
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

// POST /api/deliveries/batch
func SubmitBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubmitBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if len(body.Entries) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "O lote precisa de ao menos uma entrada")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		entries := make([]ledger.BatchEntry, 0, len(body.Entries))
		for _, e := range body.Entries {
			entries = append(entries, toEntry(e))
		}

		svc := ledger.NewService(database.DB)
		result, err := svc.SubmitBatch(actor, entries)
		if err != nil {
			return respondLedgerError(c, err)
		}

		// Um lote pode atravessar mais de uma unidade autorizada; a trilha
		// de auditoria e o feed saem por unidade, para que a listagem
		// restrita do coordenador enxergue a sua parte
		for _, locationID := range distinctLocationIDs(result.Records) {
			records := recordsForLocation(result.Records, locationID)
			locID := locationID
			_ = audit.WriteLog(audit.LogOptions{
				LocationID:  &locID,
				UserID:      actor.UserID,
				UserName:    actor.Name,
				EntityType:  "delivery_batch",
				EntityID:    records[0].ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Lote de entrega com %d registro(s) na unidade", len(records)),
				After:       records,
			})

			events.Publish(events.LedgerEvent{
				Type:       "batch_committed",
				LocationID: locationID,
				BatchID:    result.BatchID,
				Records:    len(records),
				Timestamp:  time.Now(),
			})
		}

		resp := make([]DeliveryResponse, 0, len(result.Records))
		for _, r := range result.Records {
			resp = append(resp, toResponse(r))
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"batch_id": result.BatchID,
			"records":  resp,
		})
	}
}

// POST /api/deliveries
func SubmitOneHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DeliveryEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		svc := ledger.NewService(database.DB)
		record, err := svc.SubmitOne(actor, toEntry(body))
		if err != nil {
			return respondLedgerError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			LocationID:  &record.LocationID,
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  "consumption_record",
			EntityID:    record.ID,
			Action:      models.AuditActionCreate,
			Description: "Entrega unitária",
			After:       record,
		})

		events.Publish(events.LedgerEvent{
			Type:       "batch_committed",
			LocationID: record.LocationID,
			DonationID: record.DonationID,
			Records:    1,
			Timestamp:  time.Now(),
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"batch_id": nil,
			"records":  []DeliveryResponse{toResponse(*record)},
		})
	}
}

// GET /api/deliveries
func ListDeliveriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		query := database.DB.Preload("Child").Order("created_at DESC").Limit(500)

		if actor.Role != models.RoleSuperAdmin {
			query = query.Where("location_id IN ?", actor.LocationIDs)
		}
		if locationID := c.QueryInt("location_id"); locationID > 0 {
			query = query.Where("location_id = ?", locationID)
		}
		if donationID := c.QueryInt("donation_id"); donationID > 0 {
			query = query.Where("donation_id = ?", donationID)
		}
		if batchID := c.Query("batch_id"); batchID != "" {
			query = query.Where("batch_id = ?", batchID)
		}

		var records []models.ConsumptionRecord
		if err := query.Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as entregas")
		}

		resp := make([]DeliveryResponse, 0, len(records))
		for _, r := range records {
			resp = append(resp, toResponse(r))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/deliveries/:id
// Único caminho de mutação de um registro de consumo: correção administrativa.
func DeleteDeliveryHandler() fiber.Handler {
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
		record, err := svc.DeleteConsumption(actor, uint(id))
		if err != nil {
			if errors.Is(err, ledger.ErrDeliveredGiftHistory) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return respondLedgerError(c, err)
		}

		_ = audit.WriteLog(audit.LogOptions{
			LocationID:  &record.LocationID,
			UserID:      actor.UserID,
			UserName:    actor.Name,
			EntityType:  "consumption_record",
			EntityID:    record.ID,
			Action:      models.AuditActionDelete,
			Description: "Exclusão administrativa de registro de consumo",
			Before:      record,
		})

		return c.JSON(fiber.Map{"deleted": record.ID})
	}
}
