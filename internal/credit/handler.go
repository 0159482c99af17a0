package credit

import (
	"fmt"
	"time"

	"exchange-backend/internal/audit"
	"exchange-backend/internal/auth"
	"exchange-backend/internal/database"
	"exchange-backend/internal/ledger"
	"exchange-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCreditRequest struct {
	Type        models.CreditType `json:"type"` // "credit_given" | "payment_received"
	Amount      float64           `json:"amount"`
	Currency    models.Currency   `json:"currency"` // empty means NPR
	CustomerID  uint              `json:"customer_id"`
	Timestamp   *string           `json:"timestamp"` // RFC3339, empty means now
	Description string            `json:"description"`
	StaffID     *uint             `json:"staff_id"`
}

type CreditResponse struct {
	ID          uint              `json:"id"`
	Type        models.CreditType `json:"type"`
	Amount      float64           `json:"amount"`
	Currency    models.Currency   `json:"currency"`
	CustomerID  uint              `json:"customer_id"`
	StaffID     uint              `json:"staff_id"`
	Timestamp   string            `json:"timestamp"`
	Description string            `json:"description"`
}

func toCreditResponse(cr models.CreditTransaction) CreditResponse {
	return CreditResponse{
		ID:          cr.ID,
		Type:        cr.Type,
		Amount:      cr.Amount,
		Currency:    cr.Currency,
		CustomerID:  cr.CustomerID,
		StaffID:     cr.StaffID,
		Timestamp:   cr.Timestamp.Format(time.RFC3339),
		Description: cr.Description,
	}
}

func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Could not read user")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}

	return userID, user.Name, nil
}

// -------------------------------------------------
// POST /api/credit-transactions
// -------------------------------------------------
func CreateCreditHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCreditRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Type != models.CreditGiven && body.Type != models.PaymentReceived {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid type (credit_given|payment_received)")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than 0")
		}
		if body.Currency == "" {
			body.Currency = models.CurrencyNPR
		}
		if !body.Currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Currency must be NPR or INR")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, body.CustomerID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Customer not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		staffID := userID
		if body.StaffID != nil {
			if role == models.RoleStaff && *body.StaffID != userID {
				return fiber.NewError(fiber.StatusForbidden, "Staff can only record their own entries")
			}
			staffID = *body.StaffID
		}

		ts := time.Now()
		if body.Timestamp != nil && *body.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, *body.Timestamp)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Timestamp must be RFC3339")
			}
			ts = parsed
		}

		cr := models.CreditTransaction{
			Type:        body.Type,
			Amount:      body.Amount,
			Currency:    body.Currency,
			CustomerID:  body.CustomerID,
			StaffID:     staffID,
			Timestamp:   ts,
			Description: body.Description,
		}

		if err := database.DB.Create(&cr).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create credit transaction")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			verb := "Credit given to"
			if cr.Type == models.PaymentReceived {
				verb = "Payment received from"
			}
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "credit_transaction",
				EntityID:    cr.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("%s %s: %s %.2f", verb, customer.Name, cr.Currency, cr.Amount),
				Before:      nil,
				After:       toCreditResponse(cr),
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toCreditResponse(cr))
	}
}

// -------------------------------------------------
// GET /api/credit-transactions?customer_id=3&date=2025-12-09&type=credit_given
// -------------------------------------------------
func ListCreditHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.CreditTransaction{})

		if cidStr := c.Query("customer_id"); cidStr != "" {
			var cid uint
			if _, err := fmt.Sscan(cidStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "customer_id invalid")
			}
			dbq = dbq.Where("customer_id = ?", cid)
		}

		if dateStr := c.Query("date"); dateStr != "" {
			day, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date invalid, must be YYYY-MM-DD")
			}
			setting := database.Setting()
			from, to := ledger.DayWindow(day, setting.DayCutoffHour, setting.DayCutoffMinute)
			dbq = dbq.Where("timestamp >= ? AND timestamp < ?", from, to)
		}

		if typeStr := c.Query("type"); typeStr != "" {
			dbq = dbq.Where("type = ?", typeStr)
		}

		var crs []models.CreditTransaction
		if err := dbq.Order("timestamp asc, id asc").Find(&crs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list credit transactions")
		}

		resp := make([]CreditResponse, 0, len(crs))
		for _, cr := range crs {
			resp = append(resp, toCreditResponse(cr))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// DELETE /api/credit-transactions/:id
// -------------------------------------------------
func DeleteCreditHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var cr models.CreditTransaction
		if err := database.DB.First(&cr, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Credit transaction not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		if role == models.RoleStaff && cr.StaffID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Staff can only delete their own entries")
		}

		before := toCreditResponse(cr)

		if err := database.DB.Delete(&cr).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete credit transaction")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "credit_transaction",
				EntityID:    cr.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Credit transaction %d deleted", cr.ID),
				Before:      before,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Credit transaction deleted"})
	}
}

type CustomerBalanceResponse struct {
	CustomerID      uint    `json:"customer_id"`
	Name            string  `json:"name"`
	CreditGiven     float64 `json:"credit_given"`
	PaymentReceived float64 `json:"payment_received"`
	// Outstanding = given - received; positive means the customer still owes
	// the shop.
	Outstanding float64 `json:"outstanding"`
}

// -------------------------------------------------
// GET /api/customers/:id/balance
// -------------------------------------------------
func CustomerBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}

		type row struct {
			Type  string  `gorm:"column:type"`
			Total float64 `gorm:"column:total"`
		}
		var rows []row

		if err := database.DB.Model(&models.CreditTransaction{}).
			Select("type, SUM(amount) as total").
			Where("customer_id = ?", customer.ID).
			Group("type").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute balance")
		}

		resp := CustomerBalanceResponse{CustomerID: customer.ID, Name: customer.Name}
		for _, r := range rows {
			switch models.CreditType(r.Type) {
			case models.CreditGiven:
				resp.CreditGiven = r.Total
			case models.PaymentReceived:
				resp.PaymentReceived = r.Total
			}
		}
		resp.Outstanding = resp.CreditGiven - resp.PaymentReceived

		return c.JSON(resp)
	}
}
