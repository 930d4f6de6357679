package models

import "time"

type Child struct {
	ID         uint `gorm:"primaryKey"`
	LocationID uint `gorm:"index;not null"`
	Location   Location
	Name       string     `gorm:"size:100;not null"`
	BirthDate  *time.Time // Opcional: nem todo cadastro tem data de nascimento
	Notes      string     `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
