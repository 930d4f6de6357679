package models

import "time"

// ConsumptionRecord: evento imutável de entrega. Registra que uma criança
// recebeu (ou faltou e não recebeu) parte de uma doação. Não existe caminho
// de update; a única mutação é a exclusão administrativa, auditada.
type ConsumptionRecord struct {
	ID         uint `gorm:"primaryKey"`
	LocationID uint `gorm:"index;not null"`
	ChildID    uint `gorm:"index;not null"`
	Child      Child

	// nil = evento de presença sem doação vinculada
	DonationID *uint `gorm:"index"`
	Donation   *Donation

	// false = falta registrada: nunca conta no consumo de estoque,
	// mesmo que amount_consumed tenha ficado preenchido
	Attended bool `gorm:"not null"`

	// Só tem significado com Attended=true e doação vinculada; ausente vale 1
	AmountConsumed *int

	// Compartilhado por todos os registros criados na mesma chamada de lote
	BatchID *string `gorm:"size:36;index"`

	CreatedAt time.Time
}
