package reports

import (
	"fmt"
	"time"

	"water-backend/internal/billing"
	"water-backend/internal/config"
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// -------------------------------------------------
// GET /api/reports/customers (admin) — xlsx export with period balances
// -------------------------------------------------
func CustomersReportHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var custs []models.Customer
		if err := database.DB.Order("id asc").Find(&custs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load customers")
		}

		now := time.Now()

		f := excelize.NewFile()
		defer f.Close()
		sheet := "Customers"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"ID", "Name", "Phone", "City", "Total Bottles", "Monthly Consumption", "Monthly Bill", "Paid This Period", "Balance", "Paid", "Renewal Date"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, cust := range custs {
			periodStart := billing.PeriodStart(cust.RenewalDate, now)

			var paid decimal.Decimal
			if err := database.DB.Model(&models.Payment{}).
				Where("customer_id = ? AND date >= ?", cust.ID, periodStart).
				Select("COALESCE(SUM(amount), 0)").
				Scan(&paid).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not compute period payments")
			}

			bill := decimal.NewFromInt(int64(cust.MonthlyConsumption)).Mul(cfg.PricePerBottle)
			balance := bill.Sub(paid)

			renewal := ""
			if cust.RenewalDate != nil {
				renewal = cust.RenewalDate.Format("2006-01-02")
			}

			values := []interface{}{
				cust.ID, cust.Name, cust.Phone, cust.City,
				cust.TotalBottles, cust.MonthlyConsumption,
				bill.InexactFloat64(), paid.InexactFloat64(), balance.InexactFloat64(),
				cust.IsPaid, renewal,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build report")
		}

		filename := fmt.Sprintf("customers-%s.xlsx", now.Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
		return c.Send(buf.Bytes())
	}
}
