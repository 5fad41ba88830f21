package products

import (
	"context"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists products. Every read and write filters by company id.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
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

// ListByCompany returns the company's products with their category, by id.
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindInCompany loads one product only when companyID owns it.
func (r *Repository) FindInCompany(ctx context.Context, companyID, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(product).Error
}

// UpdateColumns writes only the supplied columns, scoped by company.
func (r *Repository) UpdateColumns(ctx context.Context, companyID, id int64, columns map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountOrders counts orders referencing the product.
func (r *Repository) CountOrders(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

// DeleteWithDependents removes the product's inventory rows, its reviews, then the
// product itself. Run it inside a transaction.
func (r *Repository) DeleteWithDependents(ctx context.Context, companyID, id int64) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.Inventory{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByCompany counts the company's products.
func (r *Repository) CountByCompany(ctx context.Context, companyID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("company_id = ?", companyID).Count(&count).Error
	return count, err
}
