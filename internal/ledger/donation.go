package ledger

import (
	"errors"
	"fmt"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"gorm.io/gorm"
)

type DonationInput struct {
	LocationID    uint
	DonorName     string
	Category      string
	Description   string
	Unit          string
	TotalCapacity *int
	// Obrigatório (>= 1) para a categoria "Birthday Gift"; ignorado nas demais
	RecipientIDs []uint
}

// CreateDonation cria a doação e, para a categoria de presente, as
// atribuições de destinatário na mesma transação. As invariantes de presente
// valem só na criação, nunca retroativamente: ao menos um destinatário, e
// capacidade (quando definida) >= número de destinatários.
func (s *Service) CreateDonation(actor Actor, in DonationInput) (*models.Donation, error) {
	if in.DonorName == "" || in.Category == "" {
		return nil, errors.New("donor_name e category são obrigatórios")
	}
	if in.TotalCapacity != nil && *in.TotalCapacity < 0 {
		return nil, errors.New("capacidade total não pode ser negativa")
	}
	if !actor.CanAccess(in.LocationID) {
		return nil, &AuthorizationDeniedError{LocationID: in.LocationID}
	}

	donation := models.Donation{
		LocationID:    in.LocationID,
		DonorName:     in.DonorName,
		Category:      in.Category,
		Description:   in.Description,
		Unit:          in.Unit,
		TotalCapacity: in.TotalCapacity,
	}

	var recipients []uint
	if donation.Kind() == models.KindGift {
		recipients = dedupeIDs(in.RecipientIDs)
		if len(recipients) == 0 {
			return nil, ErrGiftNeedsRecipients
		}
		if in.TotalCapacity != nil && *in.TotalCapacity < len(recipients) {
			return nil, ErrGiftCapacityTooSmall
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(recipients) > 0 {
			var count int64
			if err := tx.Model(&models.Child{}).Where("id IN ?", recipients).Count(&count).Error; err != nil {
				return err
			}
			if int(count) != len(recipients) {
				return errors.New("destinatário não cadastrado como criança")
			}
		}

		if err := tx.Create(&donation).Error; err != nil {
			return err
		}

		for _, childID := range recipients {
			assignment := models.GiftAssignment{
				DonationID: donation.ID,
				ChildID:    childID,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// DeleteConsumption é o único caminho de mutação de um registro de consumo:
// exclusão administrativa para corrigir erro de lançamento. Negada quando o
// registro é o histórico por trás de uma entrega de presente confirmada.
// Devolve o registro excluído para a trilha de auditoria.
func (s *Service) DeleteConsumption(actor Actor, recordID uint) (*models.ConsumptionRecord, error) {
	if actor.Role != models.RoleSuperAdmin {
		return nil, fmt.Errorf("somente administradores podem excluir registros de consumo")
	}

	var record models.ConsumptionRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", recordID).Error; err != nil {
			return err
		}

		if record.DonationID != nil {
			var donation models.Donation
			if err := tx.First(&donation, "id = ?", *record.DonationID).Error; err != nil {
				return err
			}
			if donation.Kind() == models.KindGift {
				var delivered int64
				if err := tx.Model(&models.GiftAssignment{}).
					Where("donation_id = ? AND child_id = ? AND delivered = ?", donation.ID, record.ChildID, true).
					Count(&delivered).Error; err != nil {
					return err
				}
				if delivered > 0 {
					return ErrDeliveredGiftHistory
				}
			}
		}

		return tx.Delete(&models.ConsumptionRecord{}, "id = ?", recordID).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool)
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
