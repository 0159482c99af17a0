package expense

import (
	"fmt"
	"strings"
	"time"

	"exchange-backend/internal/audit"
	"exchange-backend/internal/auth"
	"exchange-backend/internal/database"
	"exchange-backend/internal/ledger"
	"exchange-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ExpenseCategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CreateExpenseCategoryRequest struct {
	Name string `json:"name"`
}

type UpdateExpenseCategoryRequest struct {
	Name *string `json:"name"`
}

type CreateExpenseRequest struct {
	Date        *string         `json:"date"` // "2025-12-09", empty means today
	CategoryID  uint            `json:"category_id"`
	Currency    models.Currency `json:"currency"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	StaffID     *uint           `json:"staff_id"`
}

type ExpenseResponse struct {
	ID          uint            `json:"id"`
	CategoryID  uint            `json:"category_id"`
	Category    string          `json:"category"`
	Currency    models.Currency `json:"currency"`
	Date        string          `json:"date"`
	Amount      float64         `json:"amount"`
	StaffID     uint            `json:"staff_id"`
	Description string          `json:"description"`
}

type MonthlyExpenseSummaryItem struct {
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Currency     string  `json:"currency"`
	Total        float64 `json:"total"`
}

type MonthlyExpenseSummaryResponse struct {
	Year          int                         `json:"year"`
	Month         int                         `json:"month"`
	Items         []MonthlyExpenseSummaryItem `json:"items"`
	GrandTotalNpr float64                     `json:"grand_total_npr"`
	GrandTotalInr float64                     `json:"grand_total_inr"`
}

// bookingDate is the business day an undated expense books to. Late-night
// entries before the cutoff belong to the previous day, same as transactions
// and credits.
func bookingDate(now time.Time, setting models.ShopSetting) time.Time {
	return ledger.BucketDate(now, setting.DayCutoffHour, setting.DayCutoffMinute)
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

// -------------------------
// Expense Category CRUD
// -------------------------

// GET /api/expense-categories (any authenticated user)
func ListExpenseCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cats []models.ExpenseCategory
		if err := database.DB.Order("name asc").Find(&cats).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list categories")
		}

		res := make([]ExpenseCategoryResponse, 0, len(cats))
		for _, cat := range cats {
			res = append(res, ExpenseCategoryResponse{
				ID:   cat.ID,
				Name: cat.Name,
			})
		}
		return c.JSON(res)
	}
}

// POST /api/admin/expense-categories (owner)
func CreateExpenseCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		cat := models.ExpenseCategory{Name: body.Name}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create category")
		}

		return c.Status(fiber.StatusCreated).JSON(ExpenseCategoryResponse{ID: cat.ID, Name: cat.Name})
	}
}

// PUT /api/admin/expense-categories/:id (owner)
func UpdateExpenseCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var cat models.ExpenseCategory
		if err := database.DB.First(&cat, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		var body UpdateExpenseCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			cat.Name = name
		}

		if err := database.DB.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update category")
		}

		return c.JSON(ExpenseCategoryResponse{ID: cat.ID, Name: cat.Name})
	}
}

// DELETE /api/admin/expense-categories/:id (owner)
func DeleteExpenseCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var cat models.ExpenseCategory
		if err := database.DB.First(&cat, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Category not found")
		}

		var count int64
		database.DB.Model(&models.Expense{}).Where("category_id = ?", cat.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Category has expenses and cannot be deleted")
		}

		if err := database.DB.Delete(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete category")
		}

		return c.JSON(fiber.Map{"message": "Category deleted"})
	}
}

// -------------------------
// Expenses
// -------------------------

// POST /api/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than 0")
		}
		if !body.Currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Currency must be NPR or INR")
		}

		var cat models.ExpenseCategory
		if err := database.DB.First(&cat, body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Category not found")
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

		var date time.Time
		if body.Date == nil || *body.Date == "" {
			setting := database.Setting()
			date = bookingDate(time.Now(), setting)
		} else {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date invalid, must be YYYY-MM-DD")
			}
			date = d
		}

		exp := models.Expense{
			CategoryID:  body.CategoryID,
			Currency:    body.Currency,
			Amount:      body.Amount,
			Date:        date,
			StaffID:     staffID,
			Description: body.Description,
		}

		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create expense")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Expense added: %s - %s %.2f", cat.Name, exp.Currency, exp.Amount),
				Before:      nil,
				After:       exp,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(expenseToResponse(exp, cat.Name))
	}
}

func expenseToResponse(exp models.Expense, categoryName string) ExpenseResponse {
	return ExpenseResponse{
		ID:          exp.ID,
		CategoryID:  exp.CategoryID,
		Category:    categoryName,
		Currency:    exp.Currency,
		Date:        exp.Date.Format("2006-01-02"),
		Amount:      exp.Amount,
		StaffID:     exp.StaffID,
		Description: exp.Description,
	}
}

// GET /api/expenses?from=2025-12-01&to=2025-12-31&category_id=1&currency=NPR&staff_id=2
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		dbq := database.DB.Model(&models.Expense{}).Preload("Category")

		if role == models.RoleStaff {
			dbq = dbq.Where("staff_id = ?", userID)
		} else if sidStr := c.Query("staff_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "staff_id invalid")
			}
			dbq = dbq.Where("staff_id = ?", sid)
		}

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from date invalid")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to date invalid")
			}
			dbq = dbq.Where("date <= ?", to)
		}
		if cidStr := c.Query("category_id"); cidStr != "" {
			var cid uint
			if _, err := fmt.Sscan(cidStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "category_id invalid")
			}
			dbq = dbq.Where("category_id = ?", cid)
		}
		if cur := c.Query("currency"); cur != "" {
			if !models.Currency(cur).Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "currency invalid")
			}
			dbq = dbq.Where("currency = ?", cur)
		}

		var exps []models.Expense
		if err := dbq.Order("date asc, id asc").Find(&exps).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list expenses")
		}

		resp := make([]ExpenseResponse, 0, len(exps))
		for _, exp := range exps {
			resp = append(resp, expenseToResponse(exp, exp.Category.Name))
		}

		return c.JSON(resp)
	}
}

// PUT /api/expenses/:id
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var exp models.Expense
		if err := database.DB.Preload("Category").First(&exp, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Expense not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		if role == models.RoleStaff && exp.StaffID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Staff can only edit their own entries")
		}

		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than 0")
		}
		if !body.Currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Currency must be NPR or INR")
		}

		var cat models.ExpenseCategory
		if err := database.DB.First(&cat, body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Category not found")
		}

		before := exp

		exp.CategoryID = body.CategoryID
		exp.Currency = body.Currency
		exp.Amount = body.Amount
		exp.Description = body.Description
		if body.Date != nil && *body.Date != "" {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date invalid, must be YYYY-MM-DD")
			}
			exp.Date = d
		}

		if err := database.DB.Save(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update expense")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Expense %d updated", exp.ID),
				Before:      before,
				After:       exp,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.JSON(expenseToResponse(exp, cat.Name))
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var exp models.Expense
		if err := database.DB.Preload("Category").First(&exp, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Expense not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		if role == models.RoleStaff && exp.StaffID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Staff can only delete their own entries")
		}

		before := exp

		if err := database.DB.Delete(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete expense")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Expense %d deleted", exp.ID),
				Before:      before,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Expense deleted"})
	}
}

// GET /api/expenses/summary/monthly?year=2025&month=12&staff_id=2
func MonthlyExpenseSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year and month are required")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year invalid")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month invalid")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		loc := time.Now().Location()
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, -1)

		type row struct {
			CategoryID   uint    `gorm:"column:category_id"`
			CategoryName string  `gorm:"column:category_name"`
			Currency     string  `gorm:"column:currency"`
			Total        float64 `gorm:"column:total"`
		}
		var rows []row

		dbq := database.DB.Model(&models.Expense{}).
			Select("expenses.category_id, expense_categories.name as category_name, expenses.currency, SUM(expenses.amount) as total").
			Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id").
			Where("expenses.date >= ? AND expenses.date <= ?", start, end)

		if role == models.RoleStaff {
			dbq = dbq.Where("expenses.staff_id = ?", userID)
		} else if sidStr := c.Query("staff_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "staff_id invalid")
			}
			dbq = dbq.Where("expenses.staff_id = ?", sid)
		}

		if err := dbq.Group("expenses.category_id, expense_categories.name, expenses.currency").
			Order("expense_categories.name asc").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute summary")
		}

		resp := MonthlyExpenseSummaryResponse{
			Year:  year,
			Month: month,
			Items: make([]MonthlyExpenseSummaryItem, 0, len(rows)),
		}

		for _, r := range rows {
			resp.Items = append(resp.Items, MonthlyExpenseSummaryItem{
				CategoryID:   r.CategoryID,
				CategoryName: r.CategoryName,
				Currency:     r.Currency,
				Total:        r.Total,
			})
			switch models.Currency(r.Currency) {
			case models.CurrencyNPR:
				resp.GrandTotalNpr += r.Total
			case models.CurrencyINR:
				resp.GrandTotalInr += r.Total
			}
		}

		return c.JSON(resp)
	}
}
