package models

import "time"

// CategoryBirthdayGift: categoria reservada. Doações desta categoria não usam
// a aritmética de estoque como sinal de conclusão; a entrega é controlada por
// destinatário, via GiftAssignment.
const CategoryBirthdayGift = "Birthday Gift"

// DonationKind separa os dois modelos de consumo no nível de tipo, para que
// os dois fluxos nunca sejam tratados pelo mesmo caminho por engano.
type DonationKind int

const (
	KindStock DonationKind = iota // decremento anônimo de estoque
	KindGift                      // entrega nominal com flag por destinatário
)

type Donation struct {
	ID          uint `gorm:"primaryKey"`
	LocationID  uint `gorm:"index;not null"`
	Location    Location
	DonorName   string `gorm:"size:100;not null"`
	Category    string `gorm:"size:100;not null"` // texto livre, exceto o valor reservado
	Description string `gorm:"size:255"`
	Unit        string `gorm:"size:20"` // kg, unidade, caixa etc.

	// nil = estoque sem controle: nenhuma validação de quantidade é feita.
	// Não-nil = total acumulado já disponibilizado (não é saldo vivo);
	// uma vez definido, só cresce: reposição soma, nunca reduz.
	TotalCapacity *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Donation) Kind() DonationKind {
	if d.Category == CategoryBirthdayGift {
		return KindGift
	}
	return KindStock
}
