package dbtest

import (
	"testing"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tenant is a seeded company with its owner.
type Tenant struct {
	Company models.Company
	Owner   models.User
}

// MustCreateTenant seeds a company and an owner holding every permission.
func MustCreateTenant(t testing.TB, conn *gorm.DB, name string) Tenant {
	t.Helper()

	company := models.Company{Name: name}
	if err := conn.Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	owner := models.User{
		Name:            name + " owner",
		Email:           uuid.NewString() + "@owner.test",
		PasswordHash:    "hash",
		CompanyID:       company.ID,
		ManageProducts:  true,
		ManageInventory: true,
		ManageUsers:     true,
	}
	if err := conn.Create(&owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}
	company.OwnerID = &owner.ID
	if err := conn.Model(&company).Update("owner", owner.ID).Error; err != nil {
		t.Fatalf("set owner: %v", err)
	}
	return Tenant{Company: company, Owner: owner}
}

// MustCreateUser seeds a company member with the given flags.
func MustCreateUser(t testing.TB, conn *gorm.DB, companyID int64, products, inventory, users bool) models.User {
	t.Helper()
	user := models.User{
		Name:            "member",
		Email:           uuid.NewString() + "@member.test",
		PasswordHash:    "hash",
		CompanyID:       companyID,
		ManageProducts:  products,
		ManageInventory: inventory,
		ManageUsers:     users,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// MustCreateProduct seeds a product priced 10/15 with one image.
func MustCreateProduct(t testing.TB, conn *gorm.DB, companyID, creatorID int64, name string) models.Product {
	t.Helper()
	product := models.Product{
		Name:            name,
		CostPrice:       decimal.NewFromInt(10),
		SellingPrice:    decimal.NewFromInt(15),
		ImageURLs:       types.StringList{"https://img.test/" + name + ".png"},
		CompanyID:       companyID,
		CreatedByUserID: &creatorID,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustCreateInventory seeds an inventory row.
func MustCreateInventory(t testing.TB, conn *gorm.DB, productID int64, inStock int) models.Inventory {
	t.Helper()
	row := models.Inventory{ProductID: productID, InStock: inStock}
	if err := conn.Create(&row).Error; err != nil {
		t.Fatalf("create inventory: %v", err)
	}
	return row
}

// MustCreateCustomer seeds a customer.
func MustCreateCustomer(t testing.TB, conn *gorm.DB, name, region string) models.Customer {
	t.Helper()
	customer := models.Customer{Name: name, Region: region}
	if err := conn.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

// MustCreateOrders seeds n orders for the product with the given in-inventory flag.
func MustCreateOrders(t testing.TB, conn *gorm.DB, customerID, productID int64, n int, inInventory bool) []models.Order {
	t.Helper()
	orders := make([]models.Order, 0, n)
	for i := 0; i < n; i++ {
		order := models.Order{
			CustomerID:       customerID,
			ProductID:        productID,
			DeliveryLocation: "warehouse",
			InInventory:      inInventory,
		}
		if err := conn.Create(&order).Error; err != nil {
			t.Fatalf("create order: %v", err)
		}
		orders = append(orders, order)
	}
	return orders
}

// MustCreateReview seeds a review.
func MustCreateReview(t testing.TB, conn *gorm.DB, customerID, productID int64, rating int, feedback string) models.Review {
	t.Helper()
	review := models.Review{CustomerID: customerID, ProductID: productID, Rating: rating, Feedback: feedback}
	if err := conn.Create(&review).Error; err != nil {
		t.Fatalf("create review: %v", err)
	}
	return review
}
