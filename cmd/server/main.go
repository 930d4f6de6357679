package main

import (
	"log"
	"strings"

	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/admin"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/audit"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/auth"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/children"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/config"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/database"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/delivery"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/donation"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/events"
	"github.com/ruadoceu33/Sistema-Rua-Do-Ceu-sub001/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	events.Init(cfg)
	defer events.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Erro inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erro inesperado no servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Auth pública
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protegidas
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Rotas de super admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Gestão de unidades
	adminRoutes.Post("/locations", admin.CreateLocationHandler())
	adminRoutes.Get("/locations", admin.ListLocationsHandler())
	adminRoutes.Get("/locations/:id", admin.GetLocationHandler())
	adminRoutes.Put("/locations/:id", admin.UpdateLocationHandler())
	adminRoutes.Delete("/locations/:id", admin.DeleteLocationHandler())
	adminRoutes.Post("/locations/:id/coordinators", admin.CreateCoordinatorHandler())
	adminRoutes.Get("/locations/:id/coordinators", admin.ListCoordinatorsHandler())

	// Crianças
	protected.Post("/children", children.CreateChildHandler())
	protected.Get("/children", children.ListChildrenHandler())
	protected.Get("/children/:id", children.GetChildHandler())
	protected.Post("/children/bulk-import", children.BulkImportChildrenHandler())

	// Doações e estoque
	protected.Post("/donations", donation.CreateDonationHandler())
	protected.Get("/donations", donation.ListDonationsHandler())
	protected.Get("/donations/:id", donation.GetDonationHandler())
	protected.Post("/donations/:id/supply", donation.AddSupplyHandler())

	// Presentes de aniversário (destinatários declarados)
	protected.Get("/donations/:id/gifts", donation.ListGiftAssignmentsHandler())
	protected.Post("/donations/:id/gifts/:childId/deliver", donation.MarkGiftDeliveredHandler())

	// Entregas (livro-razão de consumo)
	protected.Post("/deliveries/batch", delivery.SubmitBatchHandler())
	protected.Post("/deliveries", delivery.SubmitOneHandler())
	protected.Get("/deliveries", delivery.ListDeliveriesHandler())
	protected.Delete("/deliveries/:id", auth.RequireRole(models.RoleSuperAdmin), delivery.DeleteDeliveryHandler())

	// Auditoria do livro-razão
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Servidor rodando na porta:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
