package ledger

import (
	"errors"
	"testing"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"
)

func TestCreateDonationStock(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")

	donation, err := s.CreateDonation(adminActor(), DonationInput{
		LocationID:    loc.ID,
		DonorName:     "Mercado São José",
		Category:      "Alimento",
		Unit:          "cesta",
		TotalCapacity: intPtr(40),
	})
	if err != nil {
		t.Fatalf("CreateDonation falhou: %v", err)
	}
	if donation.Kind() != models.KindStock {
		t.Errorf("Kind = %v, esperado estoque", donation.Kind())
	}
	if donation.TotalCapacity == nil || *donation.TotalCapacity != 40 {
		t.Errorf("TotalCapacity = %v, esperado 40", donation.TotalCapacity)
	}
}

func TestCreateDonationUntracked(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")

	donation, err := s.CreateDonation(adminActor(), DonationInput{
		LocationID: loc.ID,
		DonorName:  "Bazar da Esquina",
		Category:   "Roupa",
	})
	if err != nil {
		t.Fatalf("CreateDonation falhou: %v", err)
	}
	if donation.TotalCapacity != nil {
		t.Errorf("TotalCapacity = %v, esperado nil", *donation.TotalCapacity)
	}
}

func TestCreateGiftRequiresRecipients(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")

	_, err := s.CreateDonation(adminActor(), DonationInput{
		LocationID: loc.ID,
		DonorName:  "Padrinho Anônimo",
		Category:   models.CategoryBirthdayGift,
	})
	if !errors.Is(err, ErrGiftNeedsRecipients) {
		t.Fatalf("esperado ErrGiftNeedsRecipients, veio %v", err)
	}
}

func TestCreateGiftCapacityBelowRecipients(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	childA := seedChild(t, s, loc.ID, "Ana")
	childB := seedChild(t, s, loc.ID, "Bruno")
	childC := seedChild(t, s, loc.ID, "Clara")

	_, err := s.CreateDonation(adminActor(), DonationInput{
		LocationID:    loc.ID,
		DonorName:     "Padrinho Anônimo",
		Category:      models.CategoryBirthdayGift,
		TotalCapacity: intPtr(2),
		RecipientIDs:  []uint{childA.ID, childB.ID, childC.ID},
	})
	if !errors.Is(err, ErrGiftCapacityTooSmall) {
		t.Fatalf("esperado ErrGiftCapacityTooSmall, veio %v", err)
	}
}

func TestCreateGiftAssignmentsStartPending(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	childA := seedChild(t, s, loc.ID, "Ana")
	childB := seedChild(t, s, loc.ID, "Bruno")

	donation, err := s.CreateDonation(adminActor(), DonationInput{
		LocationID:    loc.ID,
		DonorName:     "Padrinho Anônimo",
		Category:      models.CategoryBirthdayGift,
		TotalCapacity: intPtr(2),
		// Duplicata deve ser descartada na criação
		RecipientIDs: []uint{childA.ID, childB.ID, childA.ID},
	})
	if err != nil {
		t.Fatalf("CreateDonation falhou: %v", err)
	}

	var assignments []models.GiftAssignment
	if err := s.db.Where("donation_id = ?", donation.ID).Find(&assignments).Error; err != nil {
		t.Fatalf("não foi possível listar as atribuições: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("atribuições = %d, esperado 2 (sem duplicata)", len(assignments))
	}
	for _, a := range assignments {
		if a.Delivered {
			t.Errorf("atribuição %d já nasceu entregue", a.ID)
		}
		if a.DeliveredAt != nil {
			t.Errorf("atribuição %d com DeliveredAt preenchido", a.ID)
		}
	}
}

func TestCreateGiftUnknownRecipient(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")

	_, err := s.CreateDonation(adminActor(), DonationInput{
		LocationID:    loc.ID,
		DonorName:     "Padrinho Anônimo",
		Category:      models.CategoryBirthdayGift,
		TotalCapacity: intPtr(5),
		RecipientIDs:  []uint{child.ID, 9999},
	})
	if err == nil {
		t.Fatal("destinatário inexistente deveria ser rejeitado")
	}

	// Transação única: a doação também não pode ter sido criada
	var count int64
	if err := s.db.Model(&models.Donation{}).Count(&count).Error; err != nil {
		t.Fatalf("não foi possível contar as doações: %v", err)
	}
	if count != 0 {
		t.Errorf("doações persistidas = %d, esperado 0", count)
	}
}

func TestCreateDonationAuthorizationDenied(t *testing.T) {
	s := newTestService(t)
	locA := seedLocation(t, s, "Unidade Centro")
	locB := seedLocation(t, s, "Unidade Norte")

	_, err := s.CreateDonation(coordinatorActor(locB.ID), DonationInput{
		LocationID: locA.ID,
		DonorName:  "Mercado São José",
		Category:   "Alimento",
	})
	var denied *AuthorizationDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("esperado AuthorizationDeniedError, veio %v", err)
	}
}

func TestDeleteConsumptionRestoresStock(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	donation := seedDonation(t, s, loc.ID, "Alimento", intPtr(10))
	record := seedConsumption(t, s, loc.ID, child.ID, &donation.ID, true, intPtr(4))

	deleted, err := s.DeleteConsumption(adminActor(), record.ID)
	if err != nil {
		t.Fatalf("DeleteConsumption falhou: %v", err)
	}
	if deleted.ID != record.ID {
		t.Errorf("registro devolvido = %d, esperado %d", deleted.ID, record.ID)
	}
	if deleted.AmountConsumed == nil || *deleted.AmountConsumed != 4 {
		t.Errorf("AmountConsumed devolvido = %v, esperado 4 para a auditoria", deleted.AmountConsumed)
	}

	// Estoque derivado na leitura: a exclusão devolve a quantidade
	summary, err := s.Stock(donation.ID)
	if err != nil {
		t.Fatalf("Stock retornou erro: %v", err)
	}
	if summary.Remaining == nil || *summary.Remaining != 10 {
		t.Errorf("Remaining = %v, esperado 10 após a exclusão", summary.Remaining)
	}
}

func TestDeleteConsumptionCoordinatorDenied(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	donation := seedDonation(t, s, loc.ID, "Alimento", intPtr(10))
	record := seedConsumption(t, s, loc.ID, child.ID, &donation.ID, true, nil)

	if _, err := s.DeleteConsumption(coordinatorActor(loc.ID), record.ID); err == nil {
		t.Fatal("coordenadora não pode excluir registros de consumo")
	}
	if n := countConsumptions(t, s, donation.ID); n != 1 {
		t.Errorf("registros = %d, esperado 1 intacto", n)
	}
}

func TestDeleteConsumptionBehindDeliveredGift(t *testing.T) {
	s := newTestService(t)
	loc := seedLocation(t, s, "Unidade Centro")
	child := seedChild(t, s, loc.ID, "Ana")
	gift := seedDonation(t, s, loc.ID, models.CategoryBirthdayGift, intPtr(1))
	if err := s.db.Create(&models.GiftAssignment{DonationID: gift.ID, ChildID: child.ID}).Error; err != nil {
		t.Fatalf("não foi possível criar a atribuição: %v", err)
	}

	record, err := s.SubmitOne(adminActor(), BatchEntry{
		ChildID: child.ID, LocationID: loc.ID, DonationID: &gift.ID, Attended: true,
	})
	if err != nil {
		t.Fatalf("SubmitOne falhou: %v", err)
	}

	_, err = s.DeleteConsumption(adminActor(), record.ID)
	if !errors.Is(err, ErrDeliveredGiftHistory) {
		t.Fatalf("esperado ErrDeliveredGiftHistory, veio %v", err)
	}
	if n := countConsumptions(t, s, gift.ID); n != 1 {
		t.Errorf("registros = %d, esperado 1 intacto", n)
	}
}

func TestDeleteConsumptionUnknownRecord(t *testing.T) {
	s := newTestService(t)

	if _, err := s.DeleteConsumption(adminActor(), 777); err == nil {
		t.Fatal("registro inexistente deveria dar erro")
	}
}
