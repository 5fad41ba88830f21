package inventory

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/backoffice/pkg/db/models"
)

// ProductSummary is the product half of a stock listing.
type ProductSummary struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	ImageURLs []string `json:"imageUrls"`
}

// StockDTO is one inventory row.
type StockDTO struct {
	ProductID int64     `json:"productId"`
	InStock   int       `json:"inStock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item pairs a company product with its stock. Inventory is nil until the first write.
type Item struct {
	Product       ProductSummary `json:"product"`
	Inventory     *StockDTO      `json:"inventory"`
	ReservedCount int64          `json:"reservedCount"`
}

// UpdateItem is one raw line of a bulk request. Both fields accept JSON numbers
// or numeric strings.
type UpdateItem struct {
	ProductID json.Number `json:"productId"`
	InStock   json.Number `json:"inStock"`
}

// BelowReserved reports a requested stock under the product's reserved count.
type BelowReserved struct {
	ProductID     int64 `json:"productId"`
	InStock       int   `json:"inStock"`
	ReservedCount int64 `json:"reservedCount"`
}

// BulkResult lists the rows written by a bulk update, updates first.
type BulkResult struct {
	Updated []StockDTO `json:"updated"`
	Count   int        `json:"count"`
}

func stockFromModel(row *models.Inventory) StockDTO {
	return StockDTO{
		ProductID: row.ProductID,
		InStock:   row.InStock,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
