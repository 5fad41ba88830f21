package models

// Customer is referenced by orders and reviews. This service never mutates it.
type Customer struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	Name   string `gorm:"column:name;not null"`
	Region string `gorm:"column:region"`
}
