package customers

import (
	"errors"
	"strings"
	"time"

	"water-backend/internal/auth"
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpsertCustomerRequest struct {
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Password    *string `json:"password"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Email       string  `json:"email"`
	JoinDate    *string `json:"joinDate"`    // "2006-01-02"
	RenewalDate *string `json:"renewalDate"` // "2006-01-02"
}

type CustomerResponse struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Phone              string  `json:"phone"`
	Address            string  `json:"address"`
	City               string  `json:"city"`
	Email              string  `json:"email"`
	JoinDate           *string `json:"joinDate"`
	RenewalDate        *string `json:"renewalDate"`
	TotalBottles       int     `json:"totalBottles"`
	MonthlyConsumption int     `json:"monthlyConsumption"`
	IsPaid             bool    `json:"isPaid"`
}

type DeliveryItem struct {
	ID       uint   `json:"id"`
	Quantity int    `json:"quantity"`
	Liters   string `json:"liters"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type PaymentItem struct {
	ID     uint   `json:"id"`
	Amount string `json:"amount"`
	Method string `json:"method"`
	Date   string `json:"date"`
}

type CustomerDetailResponse struct {
	CustomerResponse
	Deliveries []DeliveryItem `json:"deliveries"`
	Payments   []PaymentItem  `json:"payments"`
}

func toResponse(cust *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                 cust.ID,
		Name:               cust.Name,
		Phone:              cust.Phone,
		Address:            cust.Address,
		City:               cust.City,
		Email:              cust.Email,
		JoinDate:           formatDate(cust.JoinDate),
		RenewalDate:        formatDate(cust.RenewalDate),
		TotalBottles:       cust.TotalBottles,
		MonthlyConsumption: cust.MonthlyConsumption,
		IsPaid:             cust.IsPaid,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func validPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range pw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}

// -------------------------------------------------
// GET /api/customers (admin)
// -------------------------------------------------
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var custs []models.Customer
		if err := database.DB.Order("id desc").Find(&custs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list customers")
		}

		resp := make([]CustomerResponse, 0, len(custs))
		for i := range custs {
			resp = append(resp, toResponse(&custs[i]))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/customers/:id  (admin, or the customer itself)
// -------------------------------------------------
func GetCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid customer id")
		}

		userID, role, err := auth.UserFromCtx(c)
		if err != nil {
			return err
		}
		if role == models.RoleCustomer && userID != uint(id) {
			return fiber.NewError(fiber.StatusForbidden, "You can only view your own profile")
		}

		var cust models.Customer
		if err := database.DB.First(&cust, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Customer not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load customer")
		}

		var dels []models.Delivery
		if err := database.DB.Where("customer_id = ?", cust.ID).Order("date desc, id desc").Find(&dels).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load deliveries")
		}
		var pays []models.Payment
		if err := database.DB.Where("customer_id = ?", cust.ID).Order("date desc, id desc").Find(&pays).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load payments")
		}

		resp := CustomerDetailResponse{
			CustomerResponse: toResponse(&cust),
			Deliveries:       make([]DeliveryItem, 0, len(dels)),
			Payments:         make([]PaymentItem, 0, len(pays)),
		}
		for _, d := range dels {
			resp.Deliveries = append(resp.Deliveries, DeliveryItem{
				ID:       d.ID,
				Quantity: d.Quantity,
				Liters:   d.Liters.String(),
				Date:     d.Date.Format("2006-01-02"),
				Time:     d.Time,
			})
		}
		for _, p := range pays {
			resp.Payments = append(resp.Payments, PaymentItem{
				ID:     p.ID,
				Amount: p.Amount.String(),
				Method: string(p.Method),
				Date:   p.Date.Format("2006-01-02"),
			})
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/customers (admin)
// -------------------------------------------------
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpsertCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Phone = strings.TrimSpace(body.Phone)
		if body.Name == "" || len(body.Phone) < 5 {
			return fiber.NewError(fiber.StatusBadRequest, "Name and phone are required")
		}

		passwordHash := ""
		if body.Password != nil && *body.Password != "" {
			if !validPassword(*body.Password) {
				return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters and contain a letter and a number")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
			}
			passwordHash = string(hash)
		}

		joinDate, err := parseDate(body.JoinDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "joinDate must be 'YYYY-MM-DD'")
		}
		renewalDate, err := parseDate(body.RenewalDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "renewalDate must be 'YYYY-MM-DD'")
		}

		cust := models.Customer{
			Name:         body.Name,
			Phone:        body.Phone,
			PasswordHash: passwordHash,
			Address:      body.Address,
			City:         body.City,
			Email:        body.Email,
			JoinDate:     joinDate,
			RenewalDate:  renewalDate,
			TotalBottles: 0,
			IsPaid:       true, // new customers start with a clean slate
		}
		if err := database.DB.Create(&cust).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create customer")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&cust))
	}
}

// -------------------------------------------------
// PUT /api/customers/:id  (admin, or the customer itself)
// -------------------------------------------------
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid customer id")
		}

		userID, role, err := auth.UserFromCtx(c)
		if err != nil {
			return err
		}
		if role == models.RoleCustomer && userID != uint(id) {
			return fiber.NewError(fiber.StatusForbidden, "You can only update your own profile")
		}

		var body UpsertCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Phone = strings.TrimSpace(body.Phone)
		if body.Name == "" || len(body.Phone) < 5 {
			return fiber.NewError(fiber.StatusBadRequest, "Name and phone are required")
		}

		var cust models.Customer
		if err := database.DB.First(&cust, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Customer not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load customer")
		}

		// Profile fields only. Billing counters and the renewal date are owned
		// by the payment/delivery flows.
		updates := map[string]interface{}{
			"name":    body.Name,
			"phone":   body.Phone,
			"address": body.Address,
			"city":    body.City,
			"email":   body.Email,
		}
		if err := database.DB.Model(&cust).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update customer")
		}

		return c.JSON(toResponse(&cust))
	}
}

// -------------------------------------------------
// DELETE /api/customers/:id (admin)
// -------------------------------------------------
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid customer id")
		}

		if err := DeleteCascade(database.DB, uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Customer not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete customer")
		}

		return c.JSON(fiber.Map{"deleted": true})
	}
}

// DeleteCascade removes a customer together with its orders, deliveries and
// payments. Either everything goes or nothing does.
func DeleteCascade(db *gorm.DB, customerID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var cust models.Customer
		if err := tx.First(&cust, customerID).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Delivery{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cust).Error
	})
}
