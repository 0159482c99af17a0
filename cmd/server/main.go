package main

import (
	"log"
	"strings"

	"exchange-backend/internal/admin"
	"exchange-backend/internal/audit"
	"exchange-backend/internal/auth"
	"exchange-backend/internal/cashtrack"
	"exchange-backend/internal/config"
	"exchange-backend/internal/credit"
	"exchange-backend/internal/database"
	"exchange-backend/internal/exchange"
	"exchange-backend/internal/expense"
	"exchange-backend/internal/models"
	"exchange-backend/internal/receiving"
	"exchange-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] no .env file found, using process environment")
	}

	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(logger.New())

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

	// Public auth
	api.Post("/auth/register-owner", auth.RegisterOwnerHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Exchange transactions
	protected.Post("/transactions", exchange.CreateTransactionHandler())
	protected.Get("/transactions", exchange.ListTransactionsHandler())
	protected.Get("/transactions/summary/daily", exchange.DailyTotalsHandler())
	protected.Put("/transactions/:id", exchange.UpdateTransactionHandler())
	protected.Delete("/transactions/:id", exchange.DeleteTransactionHandler())

	// Customers & credit ledger
	protected.Post("/customers", credit.CreateCustomerHandler())
	protected.Get("/customers", credit.ListCustomersHandler())
	protected.Put("/customers/:id", credit.UpdateCustomerHandler())
	protected.Delete("/customers/:id", credit.DeleteCustomerHandler())
	protected.Get("/customers/:id/balance", credit.CustomerBalanceHandler())

	protected.Post("/credit-transactions", credit.CreateCreditHandler())
	protected.Get("/credit-transactions", credit.ListCreditHandler())
	protected.Delete("/credit-transactions/:id", credit.DeleteCreditHandler())

	// Expenses
	protected.Get("/expense-categories", expense.ListExpenseCategoriesHandler())
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Get("/expenses/summary/monthly", expense.MonthlyExpenseSummaryHandler())
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler())
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Online money receivings
	protected.Post("/receivings", receiving.CreateReceivingHandler())
	protected.Get("/receivings", receiving.ListReceivingsHandler())
	protected.Get("/receivings/staff-owes", receiving.StaffOwesHandler())
	protected.Post("/receivings/:id/confirm",
		auth.RequireRole(models.RoleOwner, models.RoleManager),
		receiving.ConfirmReceivingHandler())

	// Cash count days
	protected.Post("/cash-days", cashtrack.OpenDayHandler())
	protected.Get("/cash-days", cashtrack.ListDaysHandler())
	protected.Get("/cash-days/today", cashtrack.TodayHandler())
	protected.Post("/cash-days/:id/close", cashtrack.CloseDayHandler())
	protected.Post("/cash-days/:id/next", cashtrack.NextDayHandler())
	protected.Delete("/cash-days/:id", cashtrack.DeleteDayHandler())
	protected.Put("/cash-days/:id",
		auth.RequireRole(models.RoleOwner),
		cashtrack.CorrectDayHandler())

	// Reports
	protected.Get("/reports/daily", report.DailyReportHandler())
	protected.Get("/dashboard/cash-chart", report.CashChartHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo",
		auth.RequireRole(models.RoleOwner),
		audit.UndoAuditLogHandler())

	// Owner routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleOwner))

	// Staff management
	adminRoutes.Post("/staff", admin.CreateStaffHandler())
	adminRoutes.Get("/staff", admin.ListStaffHandler())
	adminRoutes.Put("/staff/:id", admin.UpdateStaffHandler())
	adminRoutes.Delete("/staff/:id", admin.DeleteStaffHandler())

	// Expense categories
	adminRoutes.Post("/expense-categories", expense.CreateExpenseCategoryHandler())
	adminRoutes.Put("/expense-categories/:id", expense.UpdateExpenseCategoryHandler())
	adminRoutes.Delete("/expense-categories/:id", expense.DeleteExpenseCategoryHandler())

	// Shop settings
	adminRoutes.Get("/settings", admin.GetSettingsHandler())
	adminRoutes.Put("/settings", admin.UpdateSettingsHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
