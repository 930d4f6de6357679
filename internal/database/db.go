package database

import (
	"log"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/config"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco de dados: %v", err)
	}

	err = DB.AutoMigrate(
		&models.Location{},
		&models.User{},
		&models.Child{},
		&models.Donation{},
		&models.ConsumptionRecord{},
		&models.GiftAssignment{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("Erro no AutoMigrate: %v", err)
	}

	log.Println("Conexão com o banco de dados ok. Migration concluída.")
}
