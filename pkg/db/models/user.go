package models

import "time"

// User belongs to exactly one company and carries three independent permission flags.
type User struct {
	ID              int64      `gorm:"primaryKey;autoIncrement"`
	Name            string     `gorm:"column:name;not null"`
	Email           string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash    string     `gorm:"column:password_hash;not null"`
	CompanyID       int64      `gorm:"column:company_id;not null;index"`
	ManageProducts  bool       `gorm:"column:manage_products;not null;default:false"`
	ManageInventory bool       `gorm:"column:manage_inventory;not null;default:false"`
	ManageUsers     bool       `gorm:"column:manage_users;not null;default:false"`
	LastLoginAt     *time.Time `gorm:"column:last_login_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
