package cashtrack

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

type OpenDayRequest struct {
	Date      *string        `json:"date"` // YYYY-MM-DD, empty means today's bucket
	StaffID   *uint          `json:"staff_id"`
	NprDenoms map[string]int `json:"npr_denoms"`
	InrDenoms map[string]int `json:"inr_denoms"`
	Notes     string         `json:"notes"`
}

type CloseDayRequest struct {
	NprDenoms map[string]int `json:"npr_denoms"`
	InrDenoms map[string]int `json:"inr_denoms"`
	Notes     string         `json:"notes"`
}

type CorrectDayRequest struct {
	OpeningNprDenoms map[string]int `json:"opening_npr_denoms"`
	OpeningInrDenoms map[string]int `json:"opening_inr_denoms"`
	ClosingNprDenoms map[string]int `json:"closing_npr_denoms"`
	ClosingInrDenoms map[string]int `json:"closing_inr_denoms"`
	Notes            *string        `json:"notes"`
}

type CashDayResponse struct {
	ID      uint   `json:"id"`
	StaffID uint   `json:"staff_id"`
	Date    string `json:"date"`

	OpeningNpr       float64        `json:"opening_npr"`
	OpeningInr       float64        `json:"opening_inr"`
	OpeningNprDenoms map[string]int `json:"opening_npr_denoms"`
	OpeningInrDenoms map[string]int `json:"opening_inr_denoms"`

	ClosingNpr       *float64       `json:"closing_npr"`
	ClosingInr       *float64       `json:"closing_inr"`
	ClosingNprDenoms map[string]int `json:"closing_npr_denoms,omitempty"`
	ClosingInrDenoms map[string]int `json:"closing_inr_denoms,omitempty"`

	IsClosed bool    `json:"is_closed"`
	ClosedAt *string `json:"closed_at"`
	Notes    string  `json:"notes"`
}

func toResponse(rec models.CashCountRecord) (CashDayResponse, error) {
	openNpr, err := DecodeDenoms(rec.OpeningNprDenoms)
	if err != nil {
		return CashDayResponse{}, err
	}
	openInr, err := DecodeDenoms(rec.OpeningInrDenoms)
	if err != nil {
		return CashDayResponse{}, err
	}

	resp := CashDayResponse{
		ID:               rec.ID,
		StaffID:          rec.StaffID,
		Date:             rec.Date.Format("2006-01-02"),
		OpeningNpr:       rec.OpeningNpr,
		OpeningInr:       rec.OpeningInr,
		OpeningNprDenoms: openNpr,
		OpeningInrDenoms: openInr,
		ClosingNpr:       rec.ClosingNpr,
		ClosingInr:       rec.ClosingInr,
		IsClosed:         rec.IsClosed,
		Notes:            rec.Notes,
	}

	if rec.ClosingNprDenoms != nil {
		m, err := DecodeDenoms(*rec.ClosingNprDenoms)
		if err != nil {
			return CashDayResponse{}, err
		}
		resp.ClosingNprDenoms = m
	}
	if rec.ClosingInrDenoms != nil {
		m, err := DecodeDenoms(*rec.ClosingInrDenoms)
		if err != nil {
			return CashDayResponse{}, err
		}
		resp.ClosingInrDenoms = m
	}
	if rec.ClosedAt != nil {
		s := rec.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &s
	}

	return resp, nil
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

func resolveStaffID(c *fiber.Ctx, explicit *uint) (uint, error) {
	role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

	if explicit == nil {
		return userID, nil
	}
	if role == models.RoleStaff && *explicit != userID {
		return 0, fiber.NewError(fiber.StatusForbidden, "Staff can only record their own entries")
	}
	return *explicit, nil
}

// -------------------------------------------------
// POST /api/cash-days
// Opening count. One record per staff per business day; an empty count is
// refused so nobody starts a day without actually counting the till.
// -------------------------------------------------
func OpenDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OpenDayRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		staffID, err := resolveStaffID(c, body.StaffID)
		if err != nil {
			return err
		}

		setting := database.Setting()
		day := ledger.BucketDate(time.Now(), setting.DayCutoffHour, setting.DayCutoffMinute)
		if body.Date != nil && *body.Date != "" {
			parsed, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date invalid, must be YYYY-MM-DD")
			}
			day = parsed
		}

		if !ledger.HasNonZero(body.NprDenoms) && !ledger.HasNonZero(body.InrDenoms) {
			return fiber.NewError(fiber.StatusBadRequest, "Opening count cannot be empty; count the till first")
		}

		openNpr, err := ledger.DenominationTotal(body.NprDenoms)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		openInr, err := ledger.DenominationTotal(body.InrDenoms)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		var existing models.CashCountRecord
		if err := database.DB.Where("staff_id = ? AND date = ?", staffID, day).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "Day is already opened for this staff")
		}

		nprJSON, err := EncodeDenoms(body.NprDenoms)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store count")
		}
		inrJSON, err := EncodeDenoms(body.InrDenoms)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store count")
		}

		rec := models.CashCountRecord{
			StaffID:          staffID,
			Date:             day,
			OpeningNpr:       openNpr,
			OpeningInr:       openInr,
			OpeningNprDenoms: nprJSON,
			OpeningInrDenoms: inrJSON,
			Notes:            body.Notes,
		}

		if err := database.DB.Create(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not open the day")
		}

		resp, err := toResponse(rec)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read record")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "cash_count_record",
				EntityID:    rec.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Day %s opened: NPR %.2f, INR %.2f", resp.Date, openNpr, openInr),
				Before:      nil,
				After:       rec,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/cash-days?staff_id=2&from=2025-12-01&to=2025-12-31
// -------------------------------------------------
func ListDaysHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		dbq := database.DB.Model(&models.CashCountRecord{})

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

		var recs []models.CashCountRecord
		if err := dbq.Order("date desc, staff_id asc").Find(&recs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list cash days")
		}

		resp := make([]CashDayResponse, 0, len(recs))
		for _, rec := range recs {
			r, err := toResponse(rec)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not read record")
			}
			resp = append(resp, r)
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/cash-days/today?staff_id=2
// Today's record for the current business day, 404 when the day was never
// opened.
// -------------------------------------------------
func TodayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		staffID := userID
		if role != models.RoleStaff {
			if sidStr := c.Query("staff_id"); sidStr != "" {
				if _, err := fmt.Sscan(sidStr, &staffID); err != nil || staffID == 0 {
					return fiber.NewError(fiber.StatusBadRequest, "staff_id invalid")
				}
			}
		}

		setting := database.Setting()
		day := ledger.BucketDate(time.Now(), setting.DayCutoffHour, setting.DayCutoffMinute)

		var rec models.CashCountRecord
		if err := database.DB.Where("staff_id = ? AND date = ?", staffID, day).First(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Day is not opened yet")
		}

		resp, err := toResponse(rec)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read record")
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/cash-days/:id/close
// Closing count. Closing an already-closed day is refused; corrections go
// through the owner endpoint instead.
// -------------------------------------------------
func CloseDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var rec models.CashCountRecord
		if err := database.DB.First(&rec, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cash day not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		if role == models.RoleStaff && rec.StaffID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Staff can only close their own day")
		}

		if rec.IsClosed {
			return fiber.NewError(fiber.StatusConflict, "Day is already closed")
		}

		var body CloseDayRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		closeNpr, err := ledger.DenominationTotal(body.NprDenoms)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		closeInr, err := ledger.DenominationTotal(body.InrDenoms)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}

		before := rec

		nprJSON, err := EncodeDenoms(body.NprDenoms)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store count")
		}
		inrJSON, err := EncodeDenoms(body.InrDenoms)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store count")
		}

		now := time.Now()
		rec.ClosingNpr = &closeNpr
		rec.ClosingInr = &closeInr
		rec.ClosingNprDenoms = &nprJSON
		rec.ClosingInrDenoms = &inrJSON
		rec.IsClosed = true
		rec.ClosedAt = &now
		if body.Notes != "" {
			rec.Notes = body.Notes
		}

		if err := database.DB.Save(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not close the day")
		}

		resp, err := toResponse(rec)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read record")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "cash_count_record",
				EntityID:    rec.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Day %s closed: NPR %.2f, INR %.2f", resp.Date, closeNpr, closeInr),
				Before:      before,
				After:       rec,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/cash-days/:id/next
// Seeds the following business day from a closed day's closing count. If a
// record for the target day already exists it is replaced, the seed is the
// source of truth after a re-close.
// -------------------------------------------------
func NextDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var prev models.CashCountRecord
		if err := database.DB.First(&prev, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cash day not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		if role == models.RoleStaff && prev.StaffID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Staff can only roll their own day")
		}

		next, err := SeedNextDay(prev)
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}

		replaced := false
		var existing models.CashCountRecord
		if err := database.DB.Where("staff_id = ? AND date = ?", next.StaffID, next.Date).First(&existing).Error; err == nil {
			replaced = true
			if err := database.DB.Delete(&existing).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not replace existing day")
			}
		}

		if err := database.DB.Create(&next).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not seed the next day")
		}

		resp, err := toResponse(next)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read record")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			desc := fmt.Sprintf("Day %s seeded from day %s", resp.Date, prev.Date.Format("2006-01-02"))
			if replaced {
				desc += " (existing record replaced)"
			}
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "cash_count_record",
				EntityID:    next.ID,
				Action:      models.AuditActionCreate,
				Description: desc,
				Before:      nil,
				After:       next,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"record":   resp,
			"replaced": replaced,
		})
	}
}

// -------------------------------------------------
// DELETE /api/cash-days/:id
// Staff may delete their own un-closed day (a botched opening count). The
// owner may delete anything; the response flags when a later record exists
// for the same staff, since its opening was seeded from this chain.
// -------------------------------------------------
func DeleteDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var rec models.CashCountRecord
		if err := database.DB.First(&rec, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cash day not found")
		}

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		if role != models.RoleOwner {
			if rec.StaffID != userID {
				return fiber.NewError(fiber.StatusForbidden, "You can only delete your own day")
			}
			if rec.IsClosed {
				return fiber.NewError(fiber.StatusForbidden, "Closed days can only be deleted by the owner")
			}
		}

		var laterCount int64
		database.DB.Model(&models.CashCountRecord{}).
			Where("staff_id = ? AND date > ?", rec.StaffID, rec.Date).
			Count(&laterCount)

		before := rec

		if err := database.DB.Delete(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete the day")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "cash_count_record",
				EntityID:    rec.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Day %s deleted for staff %d", before.Date.Format("2006-01-02"), rec.StaffID),
				Before:      before,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{
			"message":          "Cash day deleted",
			"later_days_exist": laterCount > 0,
		})
	}
}

// -------------------------------------------------
// PUT /api/cash-days/:id (owner only, guarded in main)
// Correction endpoint: recounts an opening or closing after the fact.
// Totals are always recomputed from the submitted denominations, never
// accepted directly.
// -------------------------------------------------
func CorrectDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var rec models.CashCountRecord
		if err := database.DB.First(&rec, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cash day not found")
		}

		var body CorrectDayRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := rec

		if body.OpeningNprDenoms != nil {
			total, err := ledger.DenominationTotal(body.OpeningNprDenoms)
			if err != nil {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			raw, err := EncodeDenoms(body.OpeningNprDenoms)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store count")
			}
			rec.OpeningNpr = total
			rec.OpeningNprDenoms = raw
		}
		if body.OpeningInrDenoms != nil {
			total, err := ledger.DenominationTotal(body.OpeningInrDenoms)
			if err != nil {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			raw, err := EncodeDenoms(body.OpeningInrDenoms)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store count")
			}
			rec.OpeningInr = total
			rec.OpeningInrDenoms = raw
		}
		if body.ClosingNprDenoms != nil {
			if !rec.IsClosed {
				return fiber.NewError(fiber.StatusConflict, "Cannot correct the closing of an open day")
			}
			total, err := ledger.DenominationTotal(body.ClosingNprDenoms)
			if err != nil {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			raw, err := EncodeDenoms(body.ClosingNprDenoms)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store count")
			}
			rec.ClosingNpr = &total
			rec.ClosingNprDenoms = &raw
		}
		if body.ClosingInrDenoms != nil {
			if !rec.IsClosed {
				return fiber.NewError(fiber.StatusConflict, "Cannot correct the closing of an open day")
			}
			total, err := ledger.DenominationTotal(body.ClosingInrDenoms)
			if err != nil {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			raw, err := EncodeDenoms(body.ClosingInrDenoms)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store count")
			}
			rec.ClosingInr = &total
			rec.ClosingInrDenoms = &raw
		}
		if body.Notes != nil {
			rec.Notes = *body.Notes
		}

		if err := database.DB.Save(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update the day")
		}

		resp, err := toResponse(rec)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read record")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "cash_count_record",
				EntityID:    rec.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Day %s corrected", resp.Date),
				Before:      before,
				After:       rec,
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.JSON(resp)
	}
}
