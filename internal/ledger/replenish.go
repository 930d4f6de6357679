package ledger

import (
	"errors"

	"gorm.io/gorm"
)

type ReplenishResult struct {
	DonationID uint `json:"donation_id"`
	LocationID uint `json:"location_id"`
	Before     *int `json:"before"` // capacidade anterior (nil = nunca controlada)
	After      int  `json:"after"`
	// true quando este aporte colocou a doação sob controle de estoque
	FirstTracking bool `json:"first_tracking"`
}

// AddSupply incorpora um novo aporte à capacidade total da doação.
//
// Comportamento assimétrico e intencional do sistema (não "corrigir"):
//   - capacidade nil (doação nunca controlada): o valor informado vira a
//     primeira capacidade total, sem somar;
//   - capacidade já definida: soma pura. O consumo já registrado não muda,
//     então o restante cresce exatamente o valor do aporte.
//
// O antes/depois volta no resultado e deve ser registrado pela auditoria.
func (s *Service) AddSupply(actor Actor, donationID uint, amount int) (*ReplenishResult, error) {
	if amount <= 0 {
		return nil, errors.New("quantidade do aporte deve ser positiva")
	}

	var result *ReplenishResult
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

			before := donation.TotalCapacity
			after := amount
			if before != nil {
				after = *before + amount
			}

			if err := tx.Model(donation).Update("total_capacity", after).Error; err != nil {
				return err
			}

			result = &ReplenishResult{
				DonationID:    donation.ID,
				LocationID:    donation.LocationID,
				Before:        before,
				After:         after,
				FirstTracking: before == nil,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
