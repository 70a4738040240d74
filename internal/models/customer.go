package models

import "time"

type Customer struct {
	ID                 uint       `gorm:"primaryKey"`
	Name               string     `gorm:"size:128;not null"`
	Phone              string     `gorm:"size:32;uniqueIndex;not null"`
	PasswordHash       string     `gorm:"size:255"` // empty when the customer has no portal login
	Address            string     `gorm:"size:255"`
	City               string     `gorm:"size:64"`
	Email              string     `gorm:"size:128"`
	JoinDate           *time.Time `gorm:"type:date"`
	RenewalDate        *time.Time `gorm:"type:date"` // billing-period anchor, advances one month on full payment
	TotalBottles       int        `gorm:"not null;default:0"`
	MonthlyConsumption int        `gorm:"not null;default:0"`
	IsPaid             bool       `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
