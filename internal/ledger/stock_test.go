package ledger

import (
	"errors"
	"testing"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"
)

func TestStockDefaultsMissingAmountToOne(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	donation := seedDonation(t, s, loc.ID, "Alimento", intPtr(10))

	// amount_consumed ausente vale exatamente 1
	seedConsumption(t, s, loc.ID, child.ID, &donation.ID, true, nil)
	seedConsumption(t, s, loc.ID, child.ID, &donation.ID, true, intPtr(3))

	summary, err := s.Stock(donation.ID)
	if err != nil {
		t.Fatalf("Stock retornou erro: %v", err)
	}
	if summary.TotalConsumed != 4 {
		t.Errorf("TotalConsumed = %d, esperado 4", summary.TotalConsumed)
	}
	if summary.Remaining == nil || *summary.Remaining != 6 {
		t.Errorf("Remaining = %v, esperado 6", summary.Remaining)
	}
}

func TestStockExcludesAbsences(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	donation := seedDonation(t, s, loc.ID, "Alimento", intPtr(10))

	// Falta com amount_consumed preenchido: nunca conta
	seedConsumption(t, s, loc.ID, child.ID, &donation.ID, false, intPtr(5))

	summary, err := s.Stock(donation.ID)
	if err != nil {
		t.Fatalf("Stock retornou erro: %v", err)
	}
	if summary.TotalConsumed != 0 {
		t.Errorf("TotalConsumed = %d, esperado 0", summary.TotalConsumed)
	}
	if summary.Remaining == nil || *summary.Remaining != 10 {
		t.Errorf("Remaining = %v, esperado 10", summary.Remaining)
	}
}

func TestStockUntrackedDonation(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	donation := seedDonation(t, s, loc.ID, "Roupa", nil)

	seedConsumption(t, s, loc.ID, child.ID, &donation.ID, true, intPtr(7))

	summary, err := s.Stock(donation.ID)
	if err != nil {
		t.Fatalf("Stock retornou erro: %v", err)
	}
	if summary.TotalConsumed != 7 {
		t.Errorf("TotalConsumed = %d, esperado 7", summary.TotalConsumed)
	}
	if summary.Remaining != nil {
		t.Errorf("Remaining = %v, esperado nil para doação sem controle", *summary.Remaining)
	}
}

func TestStockNeverNegative(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	donation := seedDonation(t, s, loc.ID, "Alimento", intPtr(2))

	// Consumo histórico acima da capacidade (dado legado): restante trava em zero
	seedConsumption(t, s, loc.ID, child.ID, &donation.ID, true, intPtr(5))

	summary, err := s.Stock(donation.ID)
	if err != nil {
		t.Fatalf("Stock retornou erro: %v", err)
	}
	if summary.Remaining == nil || *summary.Remaining != 0 {
		t.Errorf("Remaining = %v, esperado 0", summary.Remaining)
	}
}

func TestStockConservation(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	donation := seedDonation(t, s, loc.ID, "Alimento", intPtr(20))

	amounts := []*int{nil, intPtr(4), intPtr(2), nil}
	expected := 0
	for _, amount := range amounts {
		seedConsumption(t, s, loc.ID, child.ID, &donation.ID, true, amount)
		if amount == nil {
			expected++
		} else {
			expected += *amount
		}

		summary, err := s.Stock(donation.ID)
		if err != nil {
			t.Fatalf("Stock retornou erro: %v", err)
		}
		if summary.TotalConsumed != expected {
			t.Fatalf("TotalConsumed = %d, esperado %d", summary.TotalConsumed, expected)
		}
		if summary.Remaining == nil || *summary.Remaining != 20-expected {
			t.Fatalf("Remaining = %v, esperado %d", summary.Remaining, 20-expected)
		}
	}
}

func TestStockDonationNotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.Stock(999)
	var notFound *DonationNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("esperado DonationNotFoundError, veio %v", err)
	}
	if notFound.DonationID != 999 {
		t.Errorf("DonationID = %d, esperado 999", notFound.DonationID)
	}
}

func TestStockGiftDonationIsInformational(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	donation := seedDonation(t, s, loc.ID, models.CategoryBirthdayGift, intPtr(5))

	seedConsumption(t, s, loc.ID, child.ID, &donation.ID, true, nil)

	// A aritmética continua correta para presentes, ainda que o sinal
	// autoritativo de conclusão seja o flag por destinatário
	summary, err := s.Stock(donation.ID)
	if err != nil {
		t.Fatalf("Stock retornou erro: %v", err)
	}
	if summary.TotalConsumed != 1 {
		t.Errorf("TotalConsumed = %d, esperado 1", summary.TotalConsumed)
	}
	if summary.Remaining == nil || *summary.Remaining != 4 {
		t.Errorf("Remaining = %v, esperado 4", summary.Remaining)
	}
}
