package ledger

import (
	"errors"
	"fmt"
)

// ErrConcurrencyConflict: falha de serialização/lock após esgotar as
// tentativas. O chamador pode reexecutar o lote inteiro desde a validação.
var ErrConcurrencyConflict = errors.New("conflito de concorrência; tente novamente")

// ErrGiftNeedsRecipients: doação "Birthday Gift" criada sem destinatários.
var ErrGiftNeedsRecipients = errors.New("doação de presente exige ao menos um destinatário declarado")

// ErrGiftCapacityTooSmall: capacidade informada menor que o número de destinatários.
var ErrGiftCapacityTooSmall = errors.New("capacidade total menor que o número de destinatários")

// ErrNotGiftDonation: operação de presente sobre doação de outra categoria.
var ErrNotGiftDonation = errors.New("doação não é da categoria de presente")

// ErrDeliveredGiftHistory: exclusão negada porque o registro sustenta uma
// entrega de presente já confirmada.
var ErrDeliveredGiftHistory = errors.New("registro sustenta entrega de presente confirmada; exclusão negada")

type InsufficientStockError struct {
	DonationID uint
	Available  int
	Requested  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("estoque insuficiente na doação %d: disponível %d, solicitado %d",
		e.DonationID, e.Available, e.Requested)
}

type DonationNotFoundError struct {
	DonationID uint
}

func (e *DonationNotFoundError) Error() string {
	return fmt.Sprintf("doação %d não encontrada", e.DonationID)
}

type GiftAssignmentMissingError struct {
	DonationID uint
	ChildID    uint
}

func (e *GiftAssignmentMissingError) Error() string {
	return fmt.Sprintf("criança %d não está declarada como destinatária da doação %d",
		e.ChildID, e.DonationID)
}

type AuthorizationDeniedError struct {
	LocationID uint
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("sem autorização para operar a unidade %d", e.LocationID)
}
