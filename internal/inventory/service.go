package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/angelmondragon/backoffice/internal/orders"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
	"gorm.io/gorm"
)

// DefaultMaxItems bounds a bulk batch when no limit is configured.
const DefaultMaxItems = 500

// Service exposes stock reads and the bulk update coordinator.
type Service interface {
	List(ctx context.Context, companyID int64) ([]Item, error)
	Get(ctx context.Context, companyID, productID int64) (*StockDTO, error)
	Total(ctx context.Context, companyID int64) (int64, error)
	BulkUpdate(ctx context.Context, companyID int64, items []UpdateItem) (*BulkResult, error)
}

type service struct {
	db       db.TxRunner
	repo     *Repository
	orders   orders.Repository
	metrics  *metrics.InventoryMetrics
	logg     *logger.Logger
	maxItems int
}

// ServiceParams bundles the dependencies required to build an inventory service.
type ServiceParams struct {
	DB       db.TxRunner
	Repo     *Repository
	Orders   orders.Repository
	Metrics  *metrics.InventoryMetrics
	Logger   *logger.Logger
	MaxItems int
}

// NewService constructs an inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		orders:   params.Orders,
		metrics:  params.Metrics,
		logg:     params.Logger,
		maxItems: maxItems,
	}, nil
}

func (s *service) List(ctx context.Context, companyID int64) ([]Item, error) {
	products, err := s.repo.CompanyProducts(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory products")
	}
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	rows, err := s.repo.ByProductIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory rows")
	}
	stock := make(map[int64]*models.Inventory, len(rows))
	for i := range rows {
		stock[rows[i].ProductID] = &rows[i]
	}

	reserved, err := s.orders.ReservedCounts(ctx, companyID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count reserved orders")
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		item := Item{
			Product:       ProductSummary{ID: p.ID, Name: p.Name, ImageURLs: append([]string{}, p.ImageURLs...)},
			ReservedCount: reserved[p.ID],
		}
		if row, ok := stock[p.ID]; ok {
			dto := stockFromModel(row)
			item.Inventory = &dto
		}
		items = append(items, item)
	}
	return items, nil
}

// Get returns nil without error when the product has no row or is not the company's.
func (s *service) Get(ctx context.Context, companyID, productID int64) (*StockDTO, error) {
	row, err := s.repo.FindForProduct(ctx, companyID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory")
	}
	dto := stockFromModel(row)
	return &dto, nil
}

func (s *service) Total(ctx context.Context, companyID int64) (int64, error) {
	total, err := s.repo.TotalInStock(ctx, companyID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum inventory")
	}
	return total, nil
}

// BulkUpdate validates the whole batch before writing anything, then inserts
// missing rows and updates existing ones in a single transaction. Concurrent
// batches on the same product are last-write-wins.
func (s *service) BulkUpdate(ctx context.Context, companyID int64, items []UpdateItem) (*BulkResult, error) {
	ctx = s.logg.WithFields(ctx, map[string]any{"company_id": companyID, "batch_items": len(items)})

	result, err := s.bulkUpdate(ctx, companyID, items)
	switch {
	case err == nil:
		s.metrics.ObserveBatch(metrics.OutcomeApplied, result.Count)
		s.logg.Info(s.logg.WithField(ctx, "written", result.Count), "inventory bulk update applied")
	case pkgerrors.CodeOf(err) == pkgerrors.CodeInternal:
		s.metrics.ObserveBatch(metrics.OutcomeFailed, 0)
		s.logg.Error(ctx, "inventory bulk update failed", err)
	default:
		s.metrics.ObserveBatch(metrics.OutcomeRejected, 0)
		s.logg.Warn(s.logg.WithField(ctx, "reason", pkgerrors.As(err).Message()), "inventory bulk update rejected")
	}
	return result, err
}

func (s *service) bulkUpdate(ctx context.Context, companyID int64, items []UpdateItem) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "No updates provided")
	}
	if len(items) > s.maxItems {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, fmt.Sprintf("Too many updates. Max is %d", s.maxItems)).
			WithDetails(map[string]any{"max": s.maxItems, "received": len(items)})
	}

	ids, wanted, err := normalize(items)
	if err != nil {
		return nil, err
	}

	owned, err := s.repo.OwnedProductIDs(ctx, companyID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product ownership")
	}
	if missing := difference(ids, owned); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Some products were not found").
			WithDetails(map[string]any{"invalidProductIds": missing})
	}

	reserved, err := s.orders.ReservedCounts(ctx, companyID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count reserved orders")
	}
	var below []BelowReserved
	for _, id := range ids {
		if r := reserved[id]; int64(wanted[id]) < r {
			below = append(below, BelowReserved{ProductID: id, InStock: wanted[id], ReservedCount: r})
		}
	}
	if len(below) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inStock cannot be less than reservedCount").
			WithDetails(map[string]any{"invalid": below})
	}

	result := &BulkResult{}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ExistingProductIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("lookup existing inventory: %w", err)
		}
		has := make(map[int64]struct{}, len(existing))
		for _, id := range existing {
			has[id] = struct{}{}
		}

		var inserts []models.Inventory
		var updates []int64
		for _, id := range ids {
			if _, ok := has[id]; ok {
				updates = append(updates, id)
				continue
			}
			inserts = append(inserts, models.Inventory{ProductID: id, InStock: wanted[id]})
		}

		if err := repo.Insert(ctx, inserts); err != nil {
			return fmt.Errorf("insert inventory: %w", err)
		}
		for _, id := range updates {
			row, err := repo.SetStock(ctx, id, wanted[id])
			if err != nil {
				return fmt.Errorf("update inventory for product %d: %w", id, err)
			}
			result.Updated = append(result.Updated, stockFromModel(row))
		}
		for i := range inserts {
			result.Updated = append(result.Updated, stockFromModel(&inserts[i]))
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply inventory batch")
	}
	result.Count = len(result.Updated)
	return result, nil
}

// normalize parses every line and keeps the last stock value per product. Ids
// are returned in first-seen order.
func normalize(items []UpdateItem) ([]int64, map[int64]int, error) {
	ids := make([]int64, 0, len(items))
	wanted := make(map[int64]int, len(items))
	for _, item := range items {
		id, err := strconv.ParseInt(item.ProductID.String(), 10, 64)
		if err != nil || id <= 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeBadRequest, "Invalid productId in updates")
		}
		stock, err := strconv.Atoi(item.InStock.String())
		if err != nil || stock < 0 || stock > math.MaxInt32 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeBadRequest, "inStock must be a non-negative integer")
		}
		if _, seen := wanted[id]; !seen {
			ids = append(ids, id)
		}
		wanted[id] = stock
	}
	return ids, wanted, nil
}

func difference(ids, present []int64) []int64 {
	set := make(map[int64]struct{}, len(present))
	for _, id := range present {
		set[id] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
