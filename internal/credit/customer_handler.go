package credit

import (
	"strings"

	"exchange-backend/internal/database"
	"exchange-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type CustomerResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		customer := models.Customer{
			Name:  body.Name,
			Phone: strings.TrimSpace(body.Phone),
			Notes: body.Notes,
		}

		if err := database.DB.Create(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create customer")
		}

		return c.Status(fiber.StatusCreated).JSON(CustomerResponse{
			ID:    customer.ID,
			Name:  customer.Name,
			Phone: customer.Phone,
			Notes: customer.Notes,
		})
	}
}

// GET /api/customers?q=ram
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Customer{})

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("name ILIKE ? OR phone ILIKE ?", like, like)
		}

		var customers []models.Customer
		if err := dbq.Order("name asc").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list customers")
		}

		resp := make([]CustomerResponse, 0, len(customers))
		for _, cu := range customers {
			resp = append(resp, CustomerResponse{ID: cu.ID, Name: cu.Name, Phone: cu.Phone, Notes: cu.Notes})
		}

		return c.JSON(resp)
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name is required")
		}

		customer.Name = body.Name
		customer.Phone = strings.TrimSpace(body.Phone)
		customer.Notes = body.Notes

		if err := database.DB.Save(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update customer")
		}

		return c.JSON(CustomerResponse{ID: customer.ID, Name: customer.Name, Phone: customer.Phone, Notes: customer.Notes})
	}
}

// DELETE /api/customers/:id
// Refused while the customer still has credit rows, the ledger history must
// stay intact.
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}

		var count int64
		database.DB.Model(&models.CreditTransaction{}).Where("customer_id = ?", customer.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Customer has credit history and cannot be deleted")
		}

		if err := database.DB.Delete(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete customer")
		}

		return c.JSON(fiber.Map{"message": "Customer deleted"})
	}
}
