package models

import "time"

// GiftAssignment: destinatário pré-declarado de uma doação "Birthday Gift".
// Único por (doação, criança). O flag Delivered é o sinal autoritativo de
// conclusão para presentes; a aritmética de estoque é apenas informativa.
// Transição única: pendente -> entregue; não existe volta.
type GiftAssignment struct {
	ID         uint `gorm:"primaryKey"`
	DonationID uint `gorm:"uniqueIndex:idx_gift_donation_child;not null"`
	Donation   Donation
	ChildID    uint `gorm:"uniqueIndex:idx_gift_donation_child;not null"`
	Child      Child

	Delivered   bool `gorm:"not null;default:false"`
	DeliveredAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
