// Package overview serves the dashboard totals for a company.
package overview

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// Totals counts the company's products and the orders placed on them.
type Totals struct {
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
}

// Overview is the response body of the overview endpoint.
type Overview struct {
	Totals Totals `json:"totals"`
}

type companyCounter interface {
	CountByCompany(ctx context.Context, companyID int64) (int64, error)
}

// Service computes the company overview.
type Service interface {
	Get(ctx context.Context, companyID int64) (*Overview, error)
}

type service struct {
	products companyCounter
	orders   companyCounter
}

// NewService constructs an overview service.
func NewService(products, orders companyCounter) (Service, error) {
	if products == nil || orders == nil {
		return nil, fmt.Errorf("product and order counters required")
	}
	return &service{products: products, orders: orders}, nil
}

func (s *service) Get(ctx context.Context, companyID int64) (*Overview, error) {
	products, err := s.products.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	orders, err := s.orders.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	return &Overview{Totals: Totals{Products: products, Orders: orders}}, nil
}
