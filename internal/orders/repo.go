package orders

import (
	"context"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) scoped(ctx context.Context, companyID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("JOIN products ON products.id = orders.product_id").
		Where("products.company_id = ?", companyID)
}

func (r *repository) List(ctx context.Context, companyID int64, filter Filter) ([]models.Order, error) {
	q := r.scoped(ctx, companyID).
		Preload("Customer").
		Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("orders.product_id = ?", *filter.ProductID)
	}
	if filter.InInventory != nil {
		q = q.Where("orders.in_inventory = ?", *filter.InInventory)
	}

	var rows []models.Order
	if err := q.Order("orders.created_at DESC").Order("orders.id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type reservedRow struct {
	ProductID int64
	Reserved  int64
}

// ReservedCounts counts not-yet-in-inventory orders per product. Products with no
// reserved orders are absent from the map.
func (r *repository) ReservedCounts(ctx context.Context, companyID int64, productIDs []int64) (map[int64]int64, error) {
	q := r.scoped(ctx, companyID).
		Select("orders.product_id AS product_id, COUNT(*) AS reserved").
		Where("orders.in_inventory = ?", false).
		Group("orders.product_id")
	if productIDs != nil {
		if len(productIDs) == 0 {
			return map[int64]int64{}, nil
		}
		q = q.Where("orders.product_id IN ?", productIDs)
	}

	var rows []reservedRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Reserved
	}
	return out, nil
}

func (r *repository) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *repository) CountByCompany(ctx context.Context, companyID int64) (int64, error) {
	var count int64
	err := r.scoped(ctx, companyID).Count(&count).Error
	return count, err
}
