package exchange

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

type CreateTransactionRequest struct {
	Type         models.TransactionType `json:"type"`          // "buy" | "sell"
	FromCurrency models.Currency        `json:"from_currency"` // what the customer hands over
	FromAmount   float64                `json:"from_amount"`
	ToCurrency   models.Currency        `json:"to_currency"`
	ToAmount     float64                `json:"to_amount"`
	Rate         float64                `json:"rate"`
	Method       models.PaymentMethod   `json:"method"` // "cash" | "online"
	CustomerID   *uint                  `json:"customer_id"`
	Timestamp    *string                `json:"timestamp"` // RFC3339, empty means now
	// owner/manager may record on behalf of staff:
	StaffID *uint `json:"staff_id"`
}

type TransactionResponse struct {
	ID           uint                   `json:"id"`
	Type         models.TransactionType `json:"type"`
	FromCurrency models.Currency        `json:"from_currency"`
	FromAmount   float64                `json:"from_amount"`
	ToCurrency   models.Currency        `json:"to_currency"`
	ToAmount     float64                `json:"to_amount"`
	Rate         float64                `json:"rate"`
	Method       models.PaymentMethod   `json:"method"`
	CustomerID   *uint                  `json:"customer_id"`
	StaffID      uint                   `json:"staff_id"`
	Timestamp    string                 `json:"timestamp"`
}

func toResponse(tx models.ExchangeTransaction) TransactionResponse {
	return TransactionResponse{
		ID:           tx.ID,
		Type:         tx.Type,
		FromCurrency: tx.FromCurrency,
		FromAmount:   tx.FromAmount,
		ToCurrency:   tx.ToCurrency,
		ToAmount:     tx.ToAmount,
		Rate:         tx.Rate,
		Method:       tx.Method,
		CustomerID:   tx.CustomerID,
		StaffID:      tx.StaffID,
		Timestamp:    tx.Timestamp.Format(time.RFC3339),
	}
}

// Helper: load the acting user
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

// Helper: staff act as themselves; owner/manager may pass staff_id to act on
// behalf of someone.
func resolveStaffID(c *fiber.Ctx, explicit *uint) (uint, error) {
	role, ok := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Could not read role")
	}
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Could not read user")
	}

	if role == models.RoleStaff {
		if explicit != nil && *explicit != userID {
			return 0, fiber.NewError(fiber.StatusForbidden, "Staff can only record their own entries")
		}
		return userID, nil
	}

	if explicit != nil {
		return *explicit, nil
	}
	return userID, nil
}

func validateTransaction(body CreateTransactionRequest) error {
	if body.Type != models.TransactionBuy && body.Type != models.TransactionSell {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid type (buy|sell)")
	}
	if !body.FromCurrency.Valid() || !body.ToCurrency.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Currency must be NPR or INR")
	}
	if body.FromCurrency == body.ToCurrency {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "From and to currency must differ")
	}
	// Direction is fixed by convention: a sell takes NPR in, a buy takes INR in.
	if body.Type == models.TransactionSell && body.FromCurrency != models.CurrencyNPR {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "A sell receives NPR")
	}
	if body.Type == models.TransactionBuy && body.FromCurrency != models.CurrencyINR {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "A buy receives INR")
	}
	if body.FromAmount <= 0 || body.ToAmount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Amounts must be greater than 0")
	}
	if body.Rate <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Rate must be greater than 0")
	}
	if body.Method != models.PaymentCash && body.Method != models.PaymentOnline {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid method (cash|online)")
	}
	return nil
}

// -------------------------------------------------
// POST /api/transactions
// -------------------------------------------------
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if err := validateTransaction(body); err != nil {
			return err
		}

		staffID, err := resolveStaffID(c, body.StaffID)
		if err != nil {
			return err
		}

		ts := time.Now()
		if body.Timestamp != nil && *body.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, *body.Timestamp)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Timestamp must be RFC3339")
			}
			ts = parsed
		}

		if body.CustomerID != nil {
			var customer models.Customer
			if err := database.DB.First(&customer, *body.CustomerID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Customer not found")
			}
		}

		tx := models.ExchangeTransaction{
			Type:         body.Type,
			FromCurrency: body.FromCurrency,
			FromAmount:   body.FromAmount,
			ToCurrency:   body.ToCurrency,
			ToAmount:     body.ToAmount,
			Rate:         body.Rate,
			Method:       body.Method,
			CustomerID:   body.CustomerID,
			StaffID:      staffID,
			Timestamp:    ts,
		}

		if err := database.DB.Create(&tx).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create transaction")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "exchange_transaction",
				EntityID:    tx.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("%s: %s %.2f -> %s %.2f", tx.Type, tx.FromCurrency, tx.FromAmount, tx.ToCurrency, tx.ToAmount),
				Before:      nil,
				After:       toResponse(tx),
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(tx))
	}
}

// -------------------------------------------------
// GET /api/transactions?date=2025-12-09&staff_id=2&type=sell&method=cash
// date filters by business day (cutoff-aware); from/to timestamps also work.
// -------------------------------------------------
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		dbq := database.DB.Model(&models.ExchangeTransaction{})

		if role == models.RoleStaff {
			dbq = dbq.Where("staff_id = ?", userID)
		} else if sidStr := c.Query("staff_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "staff_id invalid")
			}
			dbq = dbq.Where("staff_id = ?", sid)
		}

		if dateStr := c.Query("date"); dateStr != "" {
			day, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date invalid, must be YYYY-MM-DD")
			}
			setting := database.Setting()
			from, to := ledger.DayWindow(day, setting.DayCutoffHour, setting.DayCutoffMinute)
			dbq = dbq.Where("timestamp >= ? AND timestamp < ?", from, to)
		} else {
			if fromStr := c.Query("from"); fromStr != "" {
				from, err := time.Parse("2006-01-02", fromStr)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "from date invalid")
				}
				dbq = dbq.Where("timestamp >= ?", from)
			}
			if toStr := c.Query("to"); toStr != "" {
				to, err := time.Parse("2006-01-02", toStr)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "to date invalid")
				}
				dbq = dbq.Where("timestamp < ?", to.AddDate(0, 0, 1))
			}
		}

		if typeStr := c.Query("type"); typeStr != "" {
			dbq = dbq.Where("type = ?", typeStr)
		}
		if methodStr := c.Query("method"); methodStr != "" {
			dbq = dbq.Where("method = ?", methodStr)
		}

		var txs []models.ExchangeTransaction
		if err := dbq.Order("timestamp asc, id asc").Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list transactions")
		}

		resp := make([]TransactionResponse, 0, len(txs))
		for _, tx := range txs {
			resp = append(resp, toResponse(tx))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/transactions/:id
// -------------------------------------------------
func UpdateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var tx models.ExchangeTransaction
		if err := database.DB.First(&tx, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		if role == models.RoleStaff && tx.StaffID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Staff can only edit their own entries")
		}

		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validateTransaction(body); err != nil {
			return err
		}

		before := toResponse(tx)

		tx.Type = body.Type
		tx.FromCurrency = body.FromCurrency
		tx.FromAmount = body.FromAmount
		tx.ToCurrency = body.ToCurrency
		tx.ToAmount = body.ToAmount
		tx.Rate = body.Rate
		tx.Method = body.Method
		tx.CustomerID = body.CustomerID
		if body.Timestamp != nil && *body.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, *body.Timestamp)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Timestamp must be RFC3339")
			}
			tx.Timestamp = parsed
		}

		if err := database.DB.Save(&tx).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update transaction")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "exchange_transaction",
				EntityID:    tx.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Transaction %d updated", tx.ID),
				Before:      before,
				After:       toResponse(tx),
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.JSON(toResponse(tx))
	}
}

// -------------------------------------------------
// DELETE /api/transactions/:id
// -------------------------------------------------
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var tx models.ExchangeTransaction
		if err := database.DB.First(&tx, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		if role == models.RoleStaff && tx.StaffID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Staff can only delete their own entries")
		}

		before := toResponse(tx)

		if err := database.DB.Delete(&tx).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete transaction")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "exchange_transaction",
				EntityID:    tx.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Transaction %d deleted", tx.ID),
				Before:      before,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Transaction deleted"})
	}
}

type DailyTotalsResponse struct {
	Date    string                 `json:"date"`
	StaffID *uint                  `json:"staff_id,omitempty"`
	Count   int                    `json:"count"`
	Npr     ledger.CurrencySummary `json:"npr"`
	Inr     ledger.CurrencySummary `json:"inr"`
}

// -------------------------------------------------
// GET /api/transactions/summary/daily?date=2025-12-09&staff_id=2
// Exchange-only daily totals; openings, expenses and credit are zero here.
// The full reconciliation lives under /reports/daily.
// -------------------------------------------------
func DailyTotalsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dateStr := c.Query("date")
		if dateStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "date is required (YYYY-MM-DD)")
		}
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date invalid, must be YYYY-MM-DD")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		setting := database.Setting()
		from, to := ledger.DayWindow(day, setting.DayCutoffHour, setting.DayCutoffMinute)

		dbq := database.DB.Model(&models.ExchangeTransaction{}).
			Where("timestamp >= ? AND timestamp < ?", from, to)

		var staffFilter *uint
		if role == models.RoleStaff {
			staffFilter = &userID
		} else if sidStr := c.Query("staff_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "staff_id invalid")
			}
			staffFilter = &sid
		}
		if staffFilter != nil {
			dbq = dbq.Where("staff_id = ?", *staffFilter)
		}

		var txs []models.ExchangeTransaction
		if err := dbq.Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load transactions")
		}

		sum, err := ledger.Compute(ledger.SummaryInput{Transactions: txs})
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		return c.JSON(DailyTotalsResponse{
			Date:    dateStr,
			StaffID: staffFilter,
			Count:   len(txs),
			Npr:     sum.Npr,
			Inr:     sum.Inr,
		})
	}
}
