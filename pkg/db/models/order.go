package models

import "time"

// Order is one unit of one product. InInventory=false reserves that unit.
type Order struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	CustomerID       int64     `gorm:"column:customer_id;not null"`
	Customer         *Customer `gorm:"foreignKey:CustomerID"`
	ProductID        int64     `gorm:"column:product_id;not null;index"`
	Product          *Product  `gorm:"foreignKey:ProductID"`
	DeliveryLocation string    `gorm:"column:delivery_location"`
	Delivered        bool      `gorm:"column:delivered;not null;default:false"`
	InInventory      bool      `gorm:"column:in_inventory;not null;default:false"`
}
