package report

import (
	"fmt"
	"time"

	"exchange-backend/internal/auth"
	"exchange-backend/internal/database"
	"exchange-backend/internal/ledger"
	"exchange-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DailyReportResponse struct {
	Date    string `json:"date"`
	StaffID uint   `json:"staff_id"`

	// DayOpened is false when no cash count exists for this staff/day; the
	// summary is still computed, with zero openings.
	DayOpened bool `json:"day_opened"`
	DayClosed bool `json:"day_closed"`

	Summary ledger.Summary `json:"summary"`

	// Styling states derived from the variances, kept server-side so every
	// screen colors the same number the same way.
	NprVarianceState string  `json:"npr_variance_state"`
	InrVarianceState string  `json:"inr_variance_state"`
	NprClosingState  *string `json:"npr_closing_state,omitempty"`
	InrClosingState  *string `json:"inr_closing_state,omitempty"`

	TransactionCount int `json:"transaction_count"`
	CreditCount      int `json:"credit_count"`
	ExpenseCount     int `json:"expense_count"`
	ReceivingCount   int `json:"receiving_count"`

	// Rows recorded inside this business day, so the report screen can show
	// the day's detail without a second round of requests. The staff-owes
	// figures in Summary are fed from every unconfirmed receiving instead,
	// whatever day it fell in; Receivings here is day detail only.
	Transactions []models.ExchangeTransaction `json:"transactions"`
	Credits      []models.CreditTransaction   `json:"credits"`
	Expenses     []models.Expense             `json:"expenses"`
	Receivings   []models.MoneyReceiving      `json:"receivings"`
}

// expenseDate returns the key expenses for a business day are stored under.
// Expenses are booked to the bucketed day at 00:00 rather than a wall-clock
// timestamp, so the report matches them by equality; the cutoff window only
// applies to transaction and credit timestamps.
func expenseDate(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}

// resolveStaffScope mirrors the staff-owes rule: staff are always scoped to
// themselves, owner and manager must name the staff member whose till they
// want to see.
func resolveStaffScope(role models.UserRole, userID uint, sidStr string) (uint, error) {
	if role == models.RoleStaff {
		return userID, nil
	}
	if sidStr == "" {
		return 0, fmt.Errorf("staff_id is required")
	}
	var sid uint
	if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
		return 0, fmt.Errorf("staff_id invalid")
	}
	return sid, nil
}

// buildDailyReport assembles the response from already-fetched rows. The
// unconfirmed slice feeds the staff-owes figures and may span any number of
// days; dayReceivings is what the detail list shows.
func buildDailyReport(
	day time.Time,
	staffID uint,
	rec *models.CashCountRecord,
	txs []models.ExchangeTransaction,
	credits []models.CreditTransaction,
	expenses []models.Expense,
	dayReceivings []models.MoneyReceiving,
	unconfirmed []models.MoneyReceiving,
) (DailyReportResponse, error) {
	in := ledger.SummaryInput{
		Transactions: txs,
		Credits:      credits,
		Expenses:     expenses,
		Receivings:   unconfirmed,
	}

	dayOpened := false
	dayClosed := false
	if rec != nil {
		dayOpened = true
		dayClosed = rec.IsClosed
		in.OpeningNpr = rec.OpeningNpr
		in.OpeningInr = rec.OpeningInr
		in.ClosingNpr = rec.ClosingNpr
		in.ClosingInr = rec.ClosingInr
	}

	sum, err := ledger.Compute(in)
	if err != nil {
		return DailyReportResponse{}, err
	}

	resp := DailyReportResponse{
		Date:             day.Format("2006-01-02"),
		StaffID:          staffID,
		DayOpened:        dayOpened,
		DayClosed:        dayClosed,
		Summary:          sum,
		NprVarianceState: ledger.VarianceState(sum.Npr.Variance),
		InrVarianceState: ledger.VarianceState(sum.Inr.Variance),
		TransactionCount: len(txs),
		CreditCount:      len(credits),
		ExpenseCount:     len(expenses),
		ReceivingCount:   len(dayReceivings),
		Transactions:     txs,
		Credits:          credits,
		Expenses:         expenses,
		Receivings:       dayReceivings,
	}
	if sum.Npr.ClosingVariance != nil {
		s := ledger.VarianceState(*sum.Npr.ClosingVariance)
		resp.NprClosingState = &s
	}
	if sum.Inr.ClosingVariance != nil {
		s := ledger.VarianceState(*sum.Inr.ClosingVariance)
		resp.InrClosingState = &s
	}

	return resp, nil
}

// -------------------------------------------------
// GET /api/reports/daily?date=2025-12-09&staff_id=2
// The summary is recomputed from raw rows on every call; nothing here is
// cached or persisted.
// -------------------------------------------------
func DailyReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		staffID, err := resolveStaffScope(role, userID, c.Query("staff_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		setting := database.Setting()
		day := ledger.BucketDate(time.Now(), setting.DayCutoffHour, setting.DayCutoffMinute)
		if dateStr := c.Query("date"); dateStr != "" {
			parsed, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date invalid, must be YYYY-MM-DD")
			}
			day = parsed
		}
		from, to := ledger.DayWindow(day, setting.DayCutoffHour, setting.DayCutoffMinute)

		var recPtr *models.CashCountRecord
		var rec models.CashCountRecord
		if err := database.DB.Where("staff_id = ? AND date = ?", staffID, day).First(&rec).Error; err == nil {
			recPtr = &rec
		}

		var txs []models.ExchangeTransaction
		if err := database.DB.
			Where("staff_id = ? AND timestamp >= ? AND timestamp < ?", staffID, from, to).
			Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load transactions")
		}
		var credits []models.CreditTransaction
		if err := database.DB.
			Where("staff_id = ? AND timestamp >= ? AND timestamp < ?", staffID, from, to).
			Find(&credits).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load credit transactions")
		}
		// Expenses carry the bucketed business day, not a wall-clock
		// timestamp; match on the day key itself.
		var expenses []models.Expense
		if err := database.DB.
			Where("staff_id = ? AND date = ?", staffID, expenseDate(day)).
			Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load expenses")
		}
		var dayReceivings []models.MoneyReceiving
		if err := database.DB.
			Where("staff_id = ? AND timestamp >= ? AND timestamp < ?", staffID, from, to).
			Find(&dayReceivings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load receivings")
		}
		// Staff-owes is open-ended: every unconfirmed receiving counts, not
		// just the ones recorded inside this day's window.
		var unconfirmed []models.MoneyReceiving
		if err := database.DB.
			Where("staff_id = ? AND is_confirmed = ?", staffID, false).
			Find(&unconfirmed).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load receivings")
		}

		resp, err := buildDailyReport(day, staffID, recPtr, txs, credits, expenses, dayReceivings, unconfirmed)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		return c.JSON(resp)
	}
}
