package ledger

import (
	"errors"
	"time"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"gorm.io/gorm"
)

// MarkGiftDelivered confirma a entrega de um presente sem criar registro de
// consumo (ação administrativa explícita). Mesma transição do lote:
// pendente -> entregue, sem volta. Idempotente para presentes já entregues.
func (s *Service) MarkGiftDelivered(actor Actor, donationID, childID uint) (*models.GiftAssignment, error) {
	var assignment models.GiftAssignment

	err := s.withRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.beginLocked(tx); err != nil {
				return err
			}

			donations, err := s.lockDonations(tx, []uint{donationID})
			if err != nil {
				return err
			}
			donation := donations[donationID]

			if !actor.CanAccess(donation.LocationID) {
				return &AuthorizationDeniedError{LocationID: donation.LocationID}
			}
			if donation.Kind() != models.KindGift {
				return ErrNotGiftDonation
			}

			if err := tx.First(&assignment, "donation_id = ? AND child_id = ?", donationID, childID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &GiftAssignmentMissingError{DonationID: donationID, ChildID: childID}
				}
				return err
			}

			if assignment.Delivered {
				return nil // já entregue; nada a fazer
			}

			now := time.Now()
			assignment.Delivered = true
			assignment.DeliveredAt = &now
			return tx.Save(&assignment).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// GiftStatus lista os destinatários declarados de uma doação de presente com
// o estado de entrega de cada um. É o sinal autoritativo de conclusão; a
// aritmética de estoque para presentes é apenas informativa.
func (s *Service) GiftStatus(actor Actor, donationID uint) ([]models.GiftAssignment, error) {
	var donation models.Donation
	if err := s.db.First(&donation, "id = ?", donationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &DonationNotFoundError{DonationID: donationID}
		}
		return nil, err
	}
	if !actor.CanAccess(donation.LocationID) {
		return nil, &AuthorizationDeniedError{LocationID: donation.LocationID}
	}
	if donation.Kind() != models.KindGift {
		return nil, ErrNotGiftDonation
	}

	var assignments []models.GiftAssignment
	if err := s.db.
		Preload("Child").
		Where("donation_id = ?", donationID).
		Order("id").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
