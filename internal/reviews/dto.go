package reviews

import (
	"time"

	"github.com/angelmondragon/backoffice/pkg/db/models"
)

// CustomerSummary is the joined customer shape.
type CustomerSummary struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

// ProductSummary is the joined product shape on the company listing.
type ProductSummary struct {
	Name      string   `json:"name"`
	ImageURLs []string `json:"imageUrls"`
}

// ReviewDTO is one review. Product is only set on the company listing.
type ReviewDTO struct {
	ID         int64            `json:"id"`
	CreatedAt  time.Time        `json:"createdAt"`
	CustomerID int64            `json:"customerId"`
	ProductID  int64            `json:"productId"`
	Rating     int              `json:"rating"`
	Feedback   string           `json:"feedback"`
	Customer   *CustomerSummary `json:"customer"`
	Product    *ProductSummary  `json:"product,omitempty"`
}

// ProductReviews is the public per-product view.
type ProductReviews struct {
	Reviews       []ReviewDTO `json:"reviews"`
	RatingCount   int64       `json:"ratingCount"`
	AverageRating *float64    `json:"averageRating"`
}

func fromModel(r *models.Review, withProduct bool) ReviewDTO {
	dto := ReviewDTO{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		CustomerID: r.CustomerID,
		ProductID:  r.ProductID,
		Rating:     r.Rating,
		Feedback:   r.Feedback,
	}
	if r.Customer != nil {
		dto.Customer = &CustomerSummary{Name: r.Customer.Name, Region: r.Customer.Region}
	}
	if withProduct && r.Product != nil {
		dto.Product = &ProductSummary{Name: r.Product.Name, ImageURLs: append([]string{}, r.Product.ImageURLs...)}
	}
	return dto
}
