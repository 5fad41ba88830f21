package orders

import (
	"context"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines the company-scoped order reads. Orders are owned through
// their product, so every query joins products on company_id.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, companyID int64, filter Filter) ([]models.Order, error)
	ReservedCounts(ctx context.Context, companyID int64, productIDs []int64) (map[int64]int64, error)
	CountByProduct(ctx context.Context, productID int64) (int64, error)
	CountByCompany(ctx context.Context, companyID int64) (int64, error)
}
