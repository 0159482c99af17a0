package admin

import (
	"strings"

	"exchange-backend/internal/database"
	"exchange-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateStaffRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"` // manager | staff
}

type UpdateStaffRequest struct {
	Name     *string          `json:"name"`
	Email    *string          `json:"email"`
	Password *string          `json:"password"`
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
}

type StaffResponse struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	IsActive bool            `json:"is_active"`
}

func toStaffResponse(u models.User) StaffResponse {
	return StaffResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// POST /api/admin/staff (owner only, guarded in main)
// Only manager and staff accounts are created here; the single owner comes
// from the bootstrap endpoint.
func CreateStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStaffRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}
		if body.Role != models.RoleManager && body.Role != models.RoleStaff {
			return fiber.NewError(fiber.StatusBadRequest, "Role must be manager or staff")
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Email is already in use")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         body.Role,
			IsActive:     true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(toStaffResponse(user))
	}
}

// GET /api/admin/staff
func ListStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("role asc, name asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		resp := make([]StaffResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toStaffResponse(u))
		}

		return c.JSON(resp)
	}
}

// PUT /api/admin/staff/:id
func UpdateStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		var body UpdateStaffRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			user.Name = name
		}
		if body.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*body.Email))
			if email == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Email cannot be empty")
			}
			var count int64
			database.DB.Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusConflict, "Email is already in use")
			}
			user.Email = email
		}
		if body.Password != nil && *body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
			}
			user.PasswordHash = string(hash)
		}
		if body.Role != nil {
			if user.Role == models.RoleOwner {
				return fiber.NewError(fiber.StatusForbidden, "The owner role cannot be changed")
			}
			if *body.Role != models.RoleManager && *body.Role != models.RoleStaff {
				return fiber.NewError(fiber.StatusBadRequest, "Role must be manager or staff")
			}
			user.Role = *body.Role
		}
		if body.IsActive != nil {
			if user.Role == models.RoleOwner && !*body.IsActive {
				return fiber.NewError(fiber.StatusForbidden, "The owner account cannot be disabled")
			}
			user.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update user")
		}

		return c.JSON(toStaffResponse(user))
	}
}

// DELETE /api/admin/staff/:id
// Accounts with ledger history are deactivated instead of deleted so every
// old record keeps pointing at a real person.
func DeleteStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		if user.Role == models.RoleOwner {
			return fiber.NewError(fiber.StatusForbidden, "The owner account cannot be deleted")
		}

		var txCount, cashCount int64
		database.DB.Model(&models.ExchangeTransaction{}).Where("staff_id = ?", user.ID).Count(&txCount)
		database.DB.Model(&models.CashCountRecord{}).Where("staff_id = ?", user.ID).Count(&cashCount)

		if txCount > 0 || cashCount > 0 {
			user.IsActive = false
			if err := database.DB.Save(&user).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not deactivate user")
			}
			return c.JSON(fiber.Map{"message": "User has history and was deactivated instead"})
		}

		if err := database.DB.Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete user")
		}

		return c.JSON(fiber.Map{"message": "User deleted"})
	}
}
