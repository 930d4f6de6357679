package ledger

import (
	"errors"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"gorm.io/gorm"
)

type StockSummary struct {
	DonationID    uint `json:"donation_id"`
	TotalCapacity *int `json:"total_capacity"` // nil = estoque sem controle
	TotalConsumed int  `json:"total_consumed"`
	Remaining     *int `json:"remaining"` // nil quando a capacidade é nil
}

// Stock deriva o estoque restante de uma doação no momento da leitura.
// Nada é persistido nem cacheado: os registros de consumo são append-only e
// podem mudar entre chamadas.
func (s *Service) Stock(donationID uint) (*StockSummary, error) {
	var donation models.Donation
	if err := s.db.First(&donation, "id = ?", donationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &DonationNotFoundError{DonationID: donationID}
		}
		return nil, err
	}

	consumed, err := consumedTotal(s.db, donationID)
	if err != nil {
		return nil, err
	}
	return summaryFor(&donation, consumed), nil
}

// consumedTotal soma amount_consumed dos registros com presença. Valor
// ausente vale exatamente 1 (padrão de negócio, não acidente de null).
// Faltas nunca contam, mesmo com amount_consumed preenchido.
func consumedTotal(tx *gorm.DB, donationID uint) (int, error) {
	var total int
	err := tx.Model(&models.ConsumptionRecord{}).
		Where("donation_id = ? AND attended = ?", donationID, true).
		Select("COALESCE(SUM(COALESCE(amount_consumed, 1)), 0)").
		Scan(&total).Error
	return total, err
}

func summaryFor(d *models.Donation, consumed int) *StockSummary {
	summary := &StockSummary{
		DonationID:    d.ID,
		TotalCapacity: d.TotalCapacity,
		TotalConsumed: consumed,
	}
	if d.TotalCapacity != nil {
		remaining := *d.TotalCapacity - consumed
		if remaining < 0 {
			remaining = 0
		}
		summary.Remaining = &remaining
	}
	return summary
}
