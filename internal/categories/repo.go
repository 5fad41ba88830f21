package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"gorm.io/gorm"
)

// maxParentSteps bounds the parent-chain walk.
const maxParentSteps = 32

// Repository reads and writes the shared category tree.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a categories repo bound to the provided GORM DB.
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

// List returns every category ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Exists reports whether a category id is present.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create verifies the parent chain and inserts a category. Callers that pair it with
// a product insert must pass a repository bound to the same transaction.
func (r *Repository) Create(ctx context.Context, name string, parentID *int64) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Category name is required")
	}
	if parentID != nil {
		if err := r.checkParentChain(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{Name: name, ParentID: parentID}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return category, nil
}

func (r *Repository) checkParentChain(ctx context.Context, parentID int64) error {
	seen := map[int64]struct{}{}
	current := &parentID
	for steps := 0; current != nil; steps++ {
		if steps >= maxParentSteps {
			return pkgerrors.New(pkgerrors.CodeValidation, "Category hierarchy is too deep")
		}
		if _, dup := seen[*current]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "Category hierarchy contains a cycle")
		}
		seen[*current] = struct{}{}

		var node models.Category
		err := r.db.WithContext(ctx).Select("id", "parent_id").First(&node, "id = ?", *current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Parent category %d does not exist", *current))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load parent category")
		}
		current = node.ParentID
	}
	return nil
}
