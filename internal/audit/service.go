package audit

import (
	"encoding/json"
	"fmt"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/database"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"
)

type LogOptions struct {
	LocationID  *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog grava uma entrada de auditoria do livro-razão. A auditoria aqui é
// best-effort: os handlers ignoram a falha do log, mas nunca a falha da
// operação auditada.
func WriteLog(opts LogOptions) error {
	// jsonb não aceita string vazia; o padrão é o literal JSON null
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		LocationID:  opts.LocationID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("não foi possível gravar o log de auditoria: %w", err)
	}

	return nil
}
