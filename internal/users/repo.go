package users

import (
	"context"
	"time"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user persistence. Every company-facing method filters by company id.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
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

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided lowercased email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInCompany loads a user only when it belongs to companyID.
func (r *Repository) FindInCompany(ctx context.Context, companyID, userID int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", userID, companyID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByCompany returns the company's users ordered by id.
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdatePermissions writes the supplied flags. It reports gorm.ErrRecordNotFound when
// no row in the company matched.
func (r *Repository) UpdatePermissions(ctx context.Context, companyID, userID int64, flags Permissions) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND company_id = ?", userID, companyID).
		Updates(map[string]any{
			"manage_products":  flags.ManageProducts,
			"manage_inventory": flags.ManageInventory,
			"manage_users":     flags.ManageUsers,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateName renames a user scoped to its company.
func (r *Repository) UpdateName(ctx context.Context, companyID, userID int64, name string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND company_id = ?", userID, companyID).
		Updates(map[string]any{"name": name, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a user scoped to its company. Products the user created keep
// existing with no creator.
func (r *Repository) Delete(ctx context.Context, companyID, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("created_by_user_id = ? AND company_id = ?", userID, companyID).
			UpdateColumn("created_by_user_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND company_id = ?", userID, companyID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
