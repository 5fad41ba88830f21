package models

import "time"

// Review rates a product from 1 to 5.
type Review struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	CustomerID int64     `gorm:"column:customer_id;not null"`
	Customer   *Customer `gorm:"foreignKey:CustomerID"`
	ProductID  int64     `gorm:"column:product_id;not null;index"`
	Product    *Product  `gorm:"foreignKey:ProductID"`
	Rating     int       `gorm:"column:rating;not null;check:chk_reviews_rating,rating BETWEEN 1 AND 5"`
	Feedback   string    `gorm:"column:feedback"`
}
