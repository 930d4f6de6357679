package children

import (
	"strings"
	"time"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/auth"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/database"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateChildRequest struct {
	LocationID uint   `json:"location_id"`
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"` // "2017-05-20", opcional
	Notes      string `json:"notes"`
}

type ChildResponse struct {
	ID         uint   `json:"id"`
	LocationID uint   `json:"location_id"`
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date,omitempty"`
	Notes      string `json:"notes"`
	CreatedAt  string `json:"created_at"`
}

func toChildResponse(ch models.Child) ChildResponse {
	resp := ChildResponse{
		ID:         ch.ID,
		LocationID: ch.LocationID,
		Name:       ch.Name,
		Notes:      ch.Notes,
		CreatedAt:  ch.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if ch.BirthDate != nil {
		resp.BirthDate = ch.BirthDate.Format("2006-01-02")
	}
	return resp
}

// POST /api/children
func CreateChildHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateChildRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.LocationID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "name e location_id são obrigatórios")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		if !actor.CanAccess(body.LocationID) {
			return fiber.NewError(fiber.StatusForbidden, "Sem autorização para a unidade")
		}

		var location models.Location
		if err := database.DB.First(&location, "id = ?", body.LocationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Unidade não encontrada")
		}

		child := models.Child{
			LocationID: body.LocationID,
			Name:       body.Name,
			Notes:      body.Notes,
		}
		if body.BirthDate != "" {
			d, err := time.Parse("2006-01-02", body.BirthDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Formato de birth_date deve ser 'YYYY-MM-DD'")
			}
			child.BirthDate = &d
		}

		if err := database.DB.Create(&child).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível cadastrar a criança")
		}

		return c.Status(fiber.StatusCreated).JSON(toChildResponse(child))
	}
}

// GET /api/children
func ListChildrenHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		query := database.DB.Order("name")
		if actor.Role != models.RoleSuperAdmin {
			query = query.Where("location_id IN ?", actor.LocationIDs)
		}
		if locationID := c.QueryInt("location_id"); locationID > 0 {
			query = query.Where("location_id = ?", locationID)
		}

		var list []models.Child
		if err := query.Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as crianças")
		}

		resp := make([]ChildResponse, 0, len(list))
		for _, ch := range list {
			resp = append(resp, toChildResponse(ch))
		}
		return c.JSON(resp)
	}
}

// GET /api/children/:id
func GetChildHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var child models.Child
		if err := database.DB.First(&child, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Criança não encontrada")
		}

		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		if !actor.CanAccess(child.LocationID) {
			return fiber.NewError(fiber.StatusForbidden, "Sem autorização para a unidade")
		}

		return c.JSON(toChildResponse(child))
	}
}
