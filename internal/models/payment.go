package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodOnline       PaymentMethod = "Online"
)

type Payment struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID uint `gorm:"index;not null"`
	Customer   Customer
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Method     PaymentMethod   `gorm:"size:20;not null"`
	Date       time.Time       `gorm:"type:date;not null"`
	CreatedAt  time.Time
}
