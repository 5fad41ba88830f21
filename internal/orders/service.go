package orders

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// Service exposes the read-only order views.
type Service interface {
	List(ctx context.Context, companyID int64, filter Filter) ([]OrderDTO, error)
	ListForProduct(ctx context.Context, companyID, productID int64) ([]OrderDTO, error)
}

type service struct {
	repo Repository
}

// NewService constructs an orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, companyID int64, filter Filter) ([]OrderDTO, error) {
	return s.list(ctx, companyID, filter, false)
}

// ListForProduct returns an empty list for products outside the company.
func (s *service) ListForProduct(ctx context.Context, companyID, productID int64) ([]OrderDTO, error) {
	return s.list(ctx, companyID, Filter{ProductID: &productID}, true)
}

func (s *service) list(ctx context.Context, companyID int64, filter Filter, withLocation bool) ([]OrderDTO, error) {
	rows, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], withLocation))
	}
	return out, nil
}
