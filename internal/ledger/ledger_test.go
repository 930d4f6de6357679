package ledger

import (
	"testing"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("não foi possível abrir o banco de teste: %v", err)
	}

	// Banco em memória: uma conexão só, senão cada conexão do pool
	// enxerga um banco diferente
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("não foi possível obter a conexão: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Location{},
		&models.User{},
		&models.Child{},
		&models.Donation{},
		&models.ConsumptionRecord{},
		&models.GiftAssignment{},
	); err != nil {
		t.Fatalf("erro no AutoMigrate de teste: %v", err)
	}

	return NewService(db)
}

func adminActor() Actor {
	return Actor{UserID: 1, Name: "Admin", Role: models.RoleSuperAdmin}
}

func coordinatorActor(locationIDs ...uint) Actor {
	return Actor{UserID: 2, Name: "Coordenadora", Role: models.RoleCoordinator, LocationIDs: locationIDs}
}

func seedLocation(t *testing.T, s *Service, name string) models.Location {
	t.Helper()
	location := models.Location{Name: name}
	if err := s.db.Create(&location).Error; err != nil {
		t.Fatalf("não foi possível criar a unidade de teste: %v", err)
	}
	return location
}

func seedChild(t *testing.T, s *Service, locationID uint, name string) models.Child {
	t.Helper()
	child := models.Child{LocationID: locationID, Name: name}
	if err := s.db.Create(&child).Error; err != nil {
		t.Fatalf("não foi possível criar a criança de teste: %v", err)
	}
	return child
}

func seedDonation(t *testing.T, s *Service, locationID uint, category string, capacity *int) models.Donation {
	t.Helper()
	donation := models.Donation{
		LocationID:    locationID,
		DonorName:     "Doador Teste",
		Category:      category,
		Unit:          "unidade",
		TotalCapacity: capacity,
	}
	if err := s.db.Create(&donation).Error; err != nil {
		t.Fatalf("não foi possível criar a doação de teste: %v", err)
	}
	return donation
}

func seedConsumption(t *testing.T, s *Service, locationID, childID uint, donationID *uint, attended bool, amount *int) models.ConsumptionRecord {
	t.Helper()
	record := models.ConsumptionRecord{
		LocationID:     locationID,
		ChildID:        childID,
		DonationID:     donationID,
		Attended:       attended,
		AmountConsumed: amount,
	}
	if err := s.db.Create(&record).Error; err != nil {
		t.Fatalf("não foi possível criar o registro de consumo de teste: %v", err)
	}
	return record
}

func countConsumptions(t *testing.T, s *Service, donationID uint) int64 {
	t.Helper()
	var count int64
	if err := s.db.Model(&models.ConsumptionRecord{}).
		Where("donation_id = ?", donationID).
		Count(&count).Error; err != nil {
		t.Fatalf("não foi possível contar os registros: %v", err)
	}
	return count
}

func intPtr(v int) *int { return &v }
