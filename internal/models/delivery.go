package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Delivery struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID uint `gorm:"index;not null"`
	Customer   Customer
	Quantity   int             `gorm:"not null"`
	Liters     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Date       time.Time       `gorm:"type:date;not null"`
	Time       string          `gorm:"size:16"`
	CreatedAt  time.Time
}
