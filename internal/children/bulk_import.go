package children

import (
	"fmt"
	"strings"
	"time"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/auth"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/database"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// POST /api/children/bulk-import
// Importa crianças de uma planilha .xlsx. Colunas esperadas (com cabeçalho):
// Nome | Nascimento (YYYY-MM-DD, opcional) | Observações
func BulkImportChildrenHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID := c.QueryInt("location_id")
		if locationID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "location_id é obrigatório")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		if !actor.CanAccess(uint(locationID)) {
			return fiber.NewError(fiber.StatusForbidden, "Sem autorização para a unidade")
		}

		var location models.Location
		if err := database.DB.First(&location, "id = ?", locationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Unidade não encontrada")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Arquivo não enviado: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Somente arquivos .xlsx são aceitos")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível abrir o arquivo")
		}
		defer file.Close()

		xlsx, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Planilha inválida: "+err.Error())
		}
		defer xlsx.Close()

		sheet := xlsx.GetSheetName(0)
		rows, err := xlsx.GetRows(sheet)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Não foi possível ler a planilha")
		}
		if len(rows) < 2 {
			return fiber.NewError(fiber.StatusBadRequest, "Planilha vazia (esperado cabeçalho + dados)")
		}

		imported := 0
		skipped := make([]string, 0)
		for i, row := range rows[1:] { // pula o cabeçalho
			if len(row) == 0 {
				continue
			}
			name := strings.TrimSpace(row[0])
			if name == "" {
				continue
			}

			child := models.Child{
				LocationID: uint(locationID),
				Name:       name,
			}
			if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
				d, err := time.Parse("2006-01-02", strings.TrimSpace(row[1]))
				if err != nil {
					skipped = append(skipped, fmt.Sprintf("linha %d: data de nascimento inválida", i+2))
					continue
				}
				child.BirthDate = &d
			}
			if len(row) > 2 {
				child.Notes = strings.TrimSpace(row[2])
			}

			if err := database.DB.Create(&child).Error; err != nil {
				skipped = append(skipped, fmt.Sprintf("linha %d: %v", i+2, err))
				continue
			}
			imported++
		}

		return c.JSON(fiber.Map{
			"location_id": locationID,
			"imported":    imported,
			"skipped":     skipped,
		})
	}
}
