package receiving

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
	"github.com/google/uuid"
)

type CreateReceivingRequest struct {
	Amount      float64         `json:"amount"`
	Currency    models.Currency `json:"currency"`
	Method      string          `json:"method"` // esewa | khalti | bank | other
	Timestamp   *string         `json:"timestamp"`
	Description string          `json:"description"`
	StaffID     *uint           `json:"staff_id"`
}

type ReceivingResponse struct {
	ID          uint            `json:"id"`
	Amount      float64         `json:"amount"`
	Currency    models.Currency `json:"currency"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference"`
	IsConfirmed bool            `json:"is_confirmed"`
	ConfirmedBy *uint           `json:"confirmed_by"`
	ConfirmedAt *string         `json:"confirmed_at"`
	StaffID     uint            `json:"staff_id"`
	Timestamp   string          `json:"timestamp"`
	Description string          `json:"description"`
}

func toResponse(rec models.MoneyReceiving) ReceivingResponse {
	var confirmedAt *string
	if rec.ConfirmedAt != nil {
		s := rec.ConfirmedAt.Format(time.RFC3339)
		confirmedAt = &s
	}
	return ReceivingResponse{
		ID:          rec.ID,
		Amount:      rec.Amount,
		Currency:    rec.Currency,
		Method:      rec.Method,
		Reference:   rec.Reference,
		IsConfirmed: rec.IsConfirmed,
		ConfirmedBy: rec.ConfirmedBy,
		ConfirmedAt: confirmedAt,
		StaffID:     rec.StaffID,
		Timestamp:   rec.Timestamp.Format(time.RFC3339),
		Description: rec.Description,
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
// POST /api/receivings
// -------------------------------------------------
func CreateReceivingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateReceivingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than 0")
		}
		if !body.Currency.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Currency must be NPR or INR")
		}
		body.Method = strings.TrimSpace(strings.ToLower(body.Method))
		if body.Method == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Method is required")
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

		rec := models.MoneyReceiving{
			Amount:      body.Amount,
			Currency:    body.Currency,
			Method:      body.Method,
			Reference:   uuid.NewString(),
			IsConfirmed: false,
			StaffID:     staffID,
			Timestamp:   ts,
			Description: body.Description,
		}

		if err := database.DB.Create(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create receiving")
		}

		actorID, actorName, err := getUserInfo(c)
		if err == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "money_receiving",
				EntityID:    rec.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Receiving added: %s %s %.2f", rec.Method, rec.Currency, rec.Amount),
				Before:      nil,
				After:       toResponse(rec),
			}); logErr != nil {
				fmt.Printf("audit log failed: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(rec))
	}
}

// -------------------------------------------------
// GET /api/receivings?staff_id=2&confirmed=false&from=2025-12-01&to=2025-12-31
// -------------------------------------------------
func ListReceivingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		dbq := database.DB.Model(&models.MoneyReceiving{})

		if role == models.RoleStaff {
			dbq = dbq.Where("staff_id = ?", userID)
		} else if sidStr := c.Query("staff_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "staff_id invalid")
			}
			dbq = dbq.Where("staff_id = ?", sid)
		}

		if confStr := c.Query("confirmed"); confStr != "" {
			switch confStr {
			case "true":
				dbq = dbq.Where("is_confirmed = ?", true)
			case "false":
				dbq = dbq.Where("is_confirmed = ?", false)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "confirmed must be true or false")
			}
		}

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

		var recs []models.MoneyReceiving
		if err := dbq.Order("timestamp asc, id asc").Find(&recs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list receivings")
		}

		resp := make([]ReceivingResponse, 0, len(recs))
		for _, rec := range recs {
			resp = append(resp, toResponse(rec))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/receivings/:id/confirm (owner/manager, guarded in main)
// Confirmation never touches historical cash counts; it only drops the
// amount out of future staff-owes queries.
// -------------------------------------------------
func ConfirmReceivingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var rec models.MoneyReceiving
		if err := database.DB.First(&rec, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Receiving not found")
		}

		if rec.IsConfirmed {
			return fiber.NewError(fiber.StatusConflict, "Receiving is already confirmed")
		}

		actorID, actorName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		before := toResponse(rec)

		now := time.Now()
		rec.IsConfirmed = true
		rec.ConfirmedBy = &actorID
		rec.ConfirmedAt = &now

		if err := database.DB.Save(&rec).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not confirm receiving")
		}

		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "money_receiving",
			EntityID:    rec.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Receiving %d confirmed: %s %.2f", rec.ID, rec.Currency, rec.Amount),
			Before:      before,
			After:       toResponse(rec),
		}); logErr != nil {
			fmt.Printf("audit log failed: %v\n", logErr)
		}

		return c.JSON(toResponse(rec))
	}
}

type StaffOwesResponse struct {
	StaffID uint    `json:"staff_id"`
	Npr     float64 `json:"npr"`
	Inr     float64 `json:"inr"`
	Count   int     `json:"count"`
}

// -------------------------------------------------
// GET /api/receivings/staff-owes?staff_id=2
// Open-ended: every unconfirmed receiving counts, whatever day it fell in.
// -------------------------------------------------
func StaffOwesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

		staffID := userID
		if role != models.RoleStaff {
			sidStr := c.Query("staff_id")
			if sidStr == "" {
				return fiber.NewError(fiber.StatusBadRequest, "staff_id is required")
			}
			if _, err := fmt.Sscan(sidStr, &staffID); err != nil || staffID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "staff_id invalid")
			}
		}

		var recs []models.MoneyReceiving
		if err := database.DB.
			Where("staff_id = ? AND is_confirmed = ?", staffID, false).
			Find(&recs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load receivings")
		}

		npr, inr := ledger.UnconfirmedTotals(recs)

		return c.JSON(StaffOwesResponse{
			StaffID: staffID,
			Npr:     npr,
			Inr:     inr,
			Count:   len(recs),
		})
	}
}
