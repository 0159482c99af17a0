package admin

import (
	"exchange-backend/internal/database"
	"exchange-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SettingsResponse struct {
	DayCutoffHour   int `json:"day_cutoff_hour"`
	DayCutoffMinute int `json:"day_cutoff_minute"`
}

type UpdateSettingsRequest struct {
	DayCutoffHour   *int `json:"day_cutoff_hour"`
	DayCutoffMinute *int `json:"day_cutoff_minute"`
}

// GET /api/admin/settings
func GetSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setting := database.Setting()
		return c.JSON(SettingsResponse{
			DayCutoffHour:   setting.DayCutoffHour,
			DayCutoffMinute: setting.DayCutoffMinute,
		})
	}
}

// PUT /api/admin/settings (owner only, guarded in main)
// Moving the cutoff re-buckets which business day raw rows fall into on the
// next read; stored cash count records keep their original dates.
func UpdateSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var setting models.ShopSetting
		if err := database.DB.First(&setting).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Settings row is missing")
		}

		if body.DayCutoffHour != nil {
			if *body.DayCutoffHour < 0 || *body.DayCutoffHour > 23 {
				return fiber.NewError(fiber.StatusBadRequest, "day_cutoff_hour must be 0-23")
			}
			setting.DayCutoffHour = *body.DayCutoffHour
		}
		if body.DayCutoffMinute != nil {
			if *body.DayCutoffMinute < 0 || *body.DayCutoffMinute > 59 {
				return fiber.NewError(fiber.StatusBadRequest, "day_cutoff_minute must be 0-59")
			}
			setting.DayCutoffMinute = *body.DayCutoffMinute
		}

		if err := database.DB.Save(&setting).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update settings")
		}

		return c.JSON(SettingsResponse{
			DayCutoffHour:   setting.DayCutoffHour,
			DayCutoffMinute: setting.DayCutoffMinute,
		})
	}
}
