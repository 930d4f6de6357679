package admin

import (
	"strings"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/database"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type LocationResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type CreateLocationRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"` // Opcional
}

type UpdateLocationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type CreateCoordinatorRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// Outras unidades além da do path, se o coordenador atender várias
	ExtraLocationIDs []uint `json:"extra_location_ids"`
}

type CoordinatorResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	LocationIDs []uint `json:"location_ids"`
	CreatedAt   string `json:"created_at"`
}

// ----------------------------------------
// CRUD de unidades
// ----------------------------------------

func CreateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome da unidade não pode ser vazio")
		}

		location := models.Location{
			Name:    body.Name,
			Address: body.Address,
		}
		if body.Phone != nil {
			location.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Create(&location).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a unidade")
		}

		return c.Status(fiber.StatusCreated).JSON(toLocationResponse(location))
	}
}

func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var locations []models.Location
		if err := database.DB.Find(&locations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as unidades")
		}

		res := make([]LocationResponse, 0, len(locations))
		for _, l := range locations {
			res = append(res, toLocationResponse(l))
		}

		return c.JSON(res)
	}
}

func GetLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var location models.Location
		if err := database.DB.First(&location, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Unidade não encontrada")
		}

		return c.JSON(toLocationResponse(location))
	}
}

func UpdateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var location models.Location
		if err := database.DB.First(&location, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Unidade não encontrada")
		}

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome da unidade não pode ser vazio")
			}
			location.Name = name
		}
		if body.Address != nil {
			location.Address = *body.Address
		}
		if body.Phone != nil {
			location.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Save(&location).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a unidade")
		}

		return c.JSON(toLocationResponse(location))
	}
}

func DeleteLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var location models.Location
		if err := database.DB.First(&location, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Unidade não encontrada")
		}

		// Não remove unidade com histórico de doações
		var donationCount int64
		database.DB.Model(&models.Donation{}).Where("location_id = ?", location.ID).Count(&donationCount)
		if donationCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Unidade possui doações registradas e não pode ser removida")
		}

		if err := database.DB.Delete(&location).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível remover a unidade")
		}

		return c.JSON(fiber.Map{"deleted": location.ID})
	}
}

// ----------------------------------------
// Coordenadores de unidade
// ----------------------------------------

// POST /api/admin/locations/:id/coordinators
func CreateCoordinatorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body CreateCoordinatorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome, email e senha são obrigatórios")
		}

		locationIDs := append([]uint{uint(id)}, body.ExtraLocationIDs...)
		var locations []models.Location
		if err := database.DB.Find(&locations, "id IN ?", locationIDs).Error; err != nil || len(locations) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Unidade não encontrada")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar o hash da senha")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleCoordinator,
			Locations:    locations,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o coordenador")
		}

		return c.Status(fiber.StatusCreated).JSON(toCoordinatorResponse(user))
	}
}

// GET /api/admin/locations/:id/coordinators
func ListCoordinatorsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var users []models.User
		if err := database.DB.
			Preload("Locations").
			Joins("JOIN user_locations ul ON ul.user_id = users.id AND ul.location_id = ?", id).
			Where("role = ?", models.RoleCoordinator).
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os coordenadores")
		}

		res := make([]CoordinatorResponse, 0, len(users))
		for _, u := range users {
			res = append(res, toCoordinatorResponse(u))
		}
		return c.JSON(res)
	}
}

func toLocationResponse(l models.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		Phone:     l.Phone,
		CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toCoordinatorResponse(u models.User) CoordinatorResponse {
	ids := make([]uint, 0, len(u.Locations))
	for _, l := range u.Locations {
		ids = append(ids, l.ID)
	}
	return CoordinatorResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		LocationIDs: ids,
		CreatedAt:   u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
