package orders

import (
	"time"

	"github.com/angelmondragon/backoffice/pkg/db/models"
)

// Filter narrows the company order list.
type Filter struct {
	ProductID   *int64
	InInventory *bool
}

// CustomerSummary is the joined customer shape.
type CustomerSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// OrderDTO is one order as listed for a company.
type OrderDTO struct {
	ID               int64            `json:"id"`
	CreatedAt        time.Time        `json:"createdAt"`
	CustomerID       int64            `json:"customerId"`
	ProductID        int64            `json:"productId"`
	ProductName      string           `json:"productName,omitempty"`
	DeliveryLocation *string          `json:"deliveryLocation,omitempty"`
	Delivered        bool             `json:"delivered"`
	InInventory      bool             `json:"inInventory"`
	Customer         *CustomerSummary `json:"customer"`
}

// FromModel maps an order row. The delivery location is only exposed on the
// per-product view.
func FromModel(o *models.Order, withLocation bool) OrderDTO {
	dto := OrderDTO{
		ID:          o.ID,
		CreatedAt:   o.CreatedAt,
		CustomerID:  o.CustomerID,
		ProductID:   o.ProductID,
		Delivered:   o.Delivered,
		InInventory: o.InInventory,
	}
	if o.Product != nil {
		dto.ProductName = o.Product.Name
	}
	if withLocation {
		loc := o.DeliveryLocation
		dto.DeliveryLocation = &loc
	}
	if o.Customer != nil {
		dto.Customer = &CustomerSummary{ID: o.Customer.ID, Name: o.Customer.Name, Region: o.Customer.Region}
	}
	return dto
}
