package inventory

import (
	"context"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

const insertBatchSize = 250

// Repository reads and writes inventory rows. Inventory is owned through its
// product, so company scoping always goes through the products table.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CompanyProducts lists the company's products by id.
func (r *Repository) CompanyProducts(ctx context.Context, companyID int64) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Select("id", "name", "image_urls").
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ByProductIDs loads the inventory rows that exist for the given products.
func (r *Repository) ByProductIDs(ctx context.Context, productIDs []int64) ([]models.Inventory, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []models.Inventory
	err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&rows).Error
	return rows, err
}

// FindForProduct returns the inventory row when the product belongs to companyID.
func (r *Repository) FindForProduct(ctx context.Context, companyID, productID int64) (*models.Inventory, error) {
	var row models.Inventory
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = inventory.product_id").
		Where("inventory.product_id = ? AND products.company_id = ?", productID, companyID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// TotalInStock sums stock over the company's inventory rows.
func (r *Repository) TotalInStock(ctx context.Context, companyID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Select("COALESCE(SUM(inventory.in_stock), 0)").
		Joins("JOIN products ON products.id = inventory.product_id").
		Where("products.company_id = ?", companyID).
		Scan(&total).Error
	return total, err
}

// OwnedProductIDs filters ids down to those owned by companyID.
func (r *Repository) OwnedProductIDs(ctx context.Context, companyID int64, ids []int64) ([]int64, error) {
	var owned []int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Pluck("id", &owned).Error
	return owned, err
}

// ExistingProductIDs returns the subset of ids that already have an inventory row.
func (r *Repository) ExistingProductIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var existing []int64
	err := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("product_id IN ?", ids).
		Pluck("product_id", &existing).Error
	return existing, err
}

// Insert writes new inventory rows in batches.
func (r *Repository) Insert(ctx context.Context, rows []models.Inventory) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&rows, insertBatchSize).Error
}

// SetStock updates one product's stock and returns the written row.
func (r *Repository) SetStock(ctx context.Context, productID int64, inStock int) (*models.Inventory, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("product_id = ?", productID).
		Update("in_stock", inStock)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var row models.Inventory
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
