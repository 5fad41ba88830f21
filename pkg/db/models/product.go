package models

import (
	"time"

	"github.com/angelmondragon/backoffice/pkg/types"
	"github.com/shopspring/decimal"
)

// Product is owned by a company. Prices are decimals, images are an ordered JSON list.
type Product struct {
	ID              int64            `gorm:"primaryKey;autoIncrement"`
	Name            string           `gorm:"column:name;not null"`
	CostPrice       decimal.Decimal  `gorm:"column:cost_price;type:numeric(12,2);not null"`
	SellingPrice    decimal.Decimal  `gorm:"column:selling_price;type:numeric(12,2);not null"`
	CategoryID      *int64           `gorm:"column:category_id;index"`
	Category        *Category        `gorm:"foreignKey:CategoryID"`
	Attributes      types.Attributes `gorm:"column:attributes;type:jsonb"`
	Description     *string          `gorm:"column:description"`
	ImageURLs       types.StringList `gorm:"column:image_urls;type:jsonb;not null"`
	CompanyID       int64            `gorm:"column:company_id;not null;index"`
	CreatedByUserID *int64           `gorm:"column:created_by_user_id;index"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
