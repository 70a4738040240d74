package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered" // terminal
	OrderStatusCancelled OrderStatus = "cancelled" // terminal
)

type Order struct {
	ID            uint `gorm:"primaryKey"`
	CustomerID    uint `gorm:"index;not null"`
	Customer      Customer
	Quantity      int         `gorm:"not null"`
	Status        OrderStatus `gorm:"size:20;not null;index"`
	Date          time.Time   `gorm:"type:date;not null"`
	Time          string      `gorm:"size:16"` // "03:04 PM"
	DeliveredDate *time.Time  `gorm:"type:date"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
