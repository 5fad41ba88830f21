package reviews

import (
	"context"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads reviews. Company scoping goes through the reviewed product.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a reviews repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByCompany returns reviews of the company's products, newest first.
func (r *Repository) ListByCompany(ctx context.Context, companyID int64, productID *int64) ([]models.Review, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.company_id = ?", companyID).
		Preload("Customer").
		Preload("Product")
	if productID != nil {
		q = q.Where("reviews.product_id = ?", *productID)
	}

	var rows []models.Review
	err := q.Order("reviews.created_at DESC").
		Order("reviews.product_id DESC").
		Order("reviews.customer_id DESC").
		Find(&rows).Error
	return rows, err
}

// ListForProduct returns every review of one product, newest first.
func (r *Repository) ListForProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// Summary is the aggregate rating of one product.
type Summary struct {
	RatingCount   int64
	AverageRating *float64
}

// Summarize computes the rating count and mean in SQL. AverageRating is nil when
// the product has no reviews.
func (r *Repository) Summarize(ctx context.Context, productID int64) (Summary, error) {
	var out Summary
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS rating_count, AVG(CAST(rating AS NUMERIC)) AS average_rating").
		Where("product_id = ?", productID).
		Scan(&out).Error
	return out, err
}
