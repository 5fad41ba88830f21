package companies

import (
	"context"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists companies.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a companies repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a company without an owner.
func (r *Repository) Create(ctx context.Context, name string) (*models.Company, error) {
	company := &models.Company{Name: name}
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// SetOwner points the company at its owner user.
func (r *Repository) SetOwner(ctx context.Context, companyID, ownerID int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("id = ?", companyID).
		Update("owner", ownerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID loads a company.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}
