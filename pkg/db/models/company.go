package models

import "time"

// Company is the tenant. OwnerID is set after the owner user exists.
type Company struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	OwnerID   *int64    `gorm:"column:owner"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
