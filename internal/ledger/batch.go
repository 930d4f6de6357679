package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Valor consumido quando a entrada não informa quantidade.
const defaultAmount = 1

type BatchEntry struct {
	ChildID    uint
	LocationID uint
	DonationID *uint // nil = presença sem doação vinculada
	Attended   bool
	Amount     *int // nil = 1
}

type BatchResult struct {
	Records []models.ConsumptionRecord
	// nil em envio unitário; compartilhado por todos os registros do lote
	BatchID *string
}

func entryAmount(e BatchEntry) int {
	if e.Amount != nil {
		return *e.Amount
	}
	return defaultAmount
}

// SubmitBatch valida e persiste um lote de entregas como unidade atômica:
// ou todos os registros são criados, ou nenhum. A validação de estoque e as
// escritas correm na mesma transação, com as doações travadas, para que dois
// lotes concorrentes não vendam o mesmo estoque duas vezes.
func (s *Service) SubmitBatch(actor Actor, entries []BatchEntry) (*BatchResult, error) {
	id := uuid.NewString()
	return s.submit(actor, entries, &id)
}

// SubmitOne segue exatamente as mesmas regras com lote de tamanho um,
// sem identificador de lote.
func (s *Service) SubmitOne(actor Actor, entry BatchEntry) (*models.ConsumptionRecord, error) {
	result, err := s.submit(actor, []BatchEntry{entry}, nil)
	if err != nil {
		return nil, err
	}
	return &result.Records[0], nil
}

func (s *Service) submit(actor Actor, entries []BatchEntry, batchID *string) (*BatchResult, error) {
	if len(entries) == 0 {
		return nil, errors.New("lote vazio")
	}

	// Toda validação barata acontece antes de abrir transação:
	// autorização por unidade e sanidade das quantidades.
	for _, e := range entries {
		if e.ChildID == 0 || e.LocationID == 0 {
			return nil, errors.New("child_id e location_id são obrigatórios em toda entrada")
		}
		if !actor.CanAccess(e.LocationID) {
			return nil, &AuthorizationDeniedError{LocationID: e.LocationID}
		}
		if e.Amount != nil && *e.Amount <= 0 {
			return nil, fmt.Errorf("quantidade deve ser positiva (criança %d)", e.ChildID)
		}
	}

	var result *BatchResult
	err := s.withRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			res, err := s.submitTx(tx, actor, entries, batchID)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) submitTx(tx *gorm.DB, actor Actor, entries []BatchEntry, batchID *string) (*BatchResult, error) {
	if err := s.beginLocked(tx); err != nil {
		return nil, err
	}

	ids := distinctDonationIDs(entries)
	donations, err := s.lockDonations(tx, ids)
	if err != nil {
		return nil, err
	}

	// A doação pertence a uma unidade; o ator precisa poder operá-la também
	for _, d := range donations {
		if !actor.CanAccess(d.LocationID) {
			return nil, &AuthorizationDeniedError{LocationID: d.LocationID}
		}
	}

	// Demanda agregada por doação: só entradas com presença consomem
	demand := make(map[uint]int)
	for _, e := range entries {
		if e.DonationID == nil || !e.Attended {
			continue
		}
		demand[*e.DonationID] += entryAmount(e)
	}

	// Toda doação com capacidade controlada é validada contra o estoque
	// derivado dentro da transação. Uma única falta derruba o lote inteiro.
	for _, id := range ids {
		d := donations[id]
		if d.TotalCapacity == nil {
			continue // estoque sem controle: nenhuma validação
		}
		requested := demand[id]
		if requested == 0 {
			continue
		}
		consumed, err := consumedTotal(tx, id)
		if err != nil {
			return nil, err
		}
		available := *d.TotalCapacity - consumed
		if available < 0 {
			available = 0
		}
		if requested > available {
			return nil, &InsufficientStockError{DonationID: id, Available: available, Requested: requested}
		}
	}

	// Presentes exigem destinatário declarado na criação da doação;
	// o lote não cria atribuições, só confirma as existentes.
	for _, e := range entries {
		if e.DonationID == nil {
			continue
		}
		d := donations[*e.DonationID]
		if d.Kind() != models.KindGift {
			continue
		}
		var count int64
		if err := tx.Model(&models.GiftAssignment{}).
			Where("donation_id = ? AND child_id = ?", d.ID, e.ChildID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, &GiftAssignmentMissingError{DonationID: d.ID, ChildID: e.ChildID}
		}
	}

	// Um registro por entrada, todos na mesma transação.
	// amount_consumed só é gravado com presença e doação vinculada.
	records := make([]models.ConsumptionRecord, 0, len(entries))
	for _, e := range entries {
		record := models.ConsumptionRecord{
			LocationID: e.LocationID,
			ChildID:    e.ChildID,
			DonationID: e.DonationID,
			Attended:   e.Attended,
			BatchID:    batchID,
		}
		if e.Attended && e.DonationID != nil {
			amount := entryAmount(e)
			record.AmountConsumed = &amount
		}
		records = append(records, record)
	}
	if err := tx.Create(&records).Error; err != nil {
		return nil, err
	}

	// Confirma a entrega dos presentes do lote (pendente -> entregue;
	// a transição nunca volta)
	now := time.Now()
	for _, record := range records {
		if record.DonationID == nil {
			continue
		}
		d := donations[*record.DonationID]
		if d.Kind() != models.KindGift {
			continue
		}
		if err := tx.Model(&models.GiftAssignment{}).
			Where("donation_id = ? AND child_id = ? AND delivered = ?", d.ID, record.ChildID, false).
			Updates(map[string]interface{}{"delivered": true, "delivered_at": now}).Error; err != nil {
			return nil, err
		}
	}

	return &BatchResult{Records: records, BatchID: batchID}, nil
}

func distinctDonationIDs(entries []BatchEntry) []uint {
	seen := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, e := range entries {
		if e.DonationID == nil || seen[*e.DonationID] {
			continue
		}
		seen[*e.DonationID] = true
		ids = append(ids, *e.DonationID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
