package reviews

import (
	"context"
	"fmt"
	"math"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// Service exposes review listings.
type Service interface {
	ListByCompany(ctx context.Context, companyID int64, productID *int64) ([]ReviewDTO, error)
	ListForProduct(ctx context.Context, productID int64) (*ProductReviews, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a reviews service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListByCompany(ctx context.Context, companyID int64, productID *int64) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByCompany(ctx, companyID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i], true))
	}
	return out, nil
}

// ListForProduct is unauthenticated and not company scoped.
func (s *service) ListForProduct(ctx context.Context, productID int64) (*ProductReviews, error) {
	summary, err := s.repo.Summarize(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute average rating")
	}
	rows, err := s.repo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list product reviews")
	}

	out := &ProductReviews{
		Reviews:     make([]ReviewDTO, 0, len(rows)),
		RatingCount: summary.RatingCount,
	}
	if summary.RatingCount > 0 && summary.AverageRating != nil {
		avg := math.Round(*summary.AverageRating*100) / 100
		out.AverageRating = &avg
	}
	for i := range rows {
		out.Reviews = append(out.Reviews, fromModel(&rows[i], false))
	}
	return out, nil
}
