package models

import "time"

// Inventory holds the in-stock count of one product.
type Inventory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:product_id;not null;uniqueIndex"`
	InStock   int       `gorm:"column:in_stock;not null;default:0;check:chk_inventory_in_stock,in_stock >= 0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Inventory) TableName() string {
	return "inventory"
}
