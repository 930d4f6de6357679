package ledger

import (
	"errors"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service: operações do inventário de doações e do livro-razão de consumo.
// Todo estado derivado (estoque restante) é recalculado na leitura; nenhum
// contador mutável é persistido.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// lockDonations carrega as doações referenciadas travando as linhas até o
// commit (FOR UPDATE no Postgres). Os ids chegam ordenados: dois lotes que
// tocam as mesmas doações travam na mesma ordem e não se deadlockam.
// Em outros dialetos (banco de teste em memória) o próprio banco serializa
// os escritores e a cláusula é dispensada.
func (s *Service) lockDonations(tx *gorm.DB, ids []uint) (map[uint]*models.Donation, error) {
	byID := make(map[uint]*models.Donation, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	q := tx.Order("id")
	if s.isPostgres() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var donations []models.Donation
	if err := q.Find(&donations, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	for i := range donations {
		byID[donations[i].ID] = &donations[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, &DonationNotFoundError{DonationID: id}
		}
	}
	return byID, nil
}

const maxAttempts = 3

// withRetry reexecuta a transação inteira quando o Postgres sinaliza falha de
// serialização, deadlock ou estouro do lock_timeout. Depois de esgotar as
// tentativas o chamador recebe ErrConcurrencyConflict e decide se repete.
func (s *Service) withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isRetryableConflict(err) {
			return err
		}
	}
	return ErrConcurrencyConflict
}

func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected,
		// 55P03 lock_not_available (lock_timeout estourado)
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// beginLocked prepara a transação de escrita: limita a espera por locks para
// que um travamento vire erro re-tentável, nunca espera infinita.
func (s *Service) beginLocked(tx *gorm.DB) error {
	if !s.isPostgres() {
		return nil
	}
	return tx.Exec("SET LOCAL lock_timeout = '3s'").Error
}
