package products

import (
	"time"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/types"
	"github.com/shopspring/decimal"
)

// CategoryDTO is the joined category shape.
type CategoryDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// ProductDTO is the API representation of a product.
type ProductDTO struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	CostPrice       decimal.Decimal  `json:"costPrice"`
	SellingPrice    decimal.Decimal  `json:"sellingPrice"`
	CategoryID      *int64           `json:"categoryId"`
	Category        *CategoryDTO     `json:"category"`
	Attributes      types.Attributes `json:"attributes"`
	Description     *string          `json:"description"`
	ImageURLs       []string         `json:"imageUrls"`
	CompanyID       int64            `json:"companyId"`
	CreatedByUserID *int64           `json:"createdByUserId"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// DeletedProduct echoes what was removed.
type DeletedProduct struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FromModel maps a product row.
func FromModel(p *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		CostPrice:       p.CostPrice,
		SellingPrice:    p.SellingPrice,
		CategoryID:      p.CategoryID,
		Attributes:      p.Attributes,
		Description:     p.Description,
		ImageURLs:       append([]string{}, p.ImageURLs...),
		CompanyID:       p.CompanyID,
		CreatedByUserID: p.CreatedByUserID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Category != nil {
		dto.Category = &CategoryDTO{ID: p.Category.ID, Name: p.Category.Name, ParentID: p.Category.ParentID}
	}
	return dto
}
