package auth

import (
	"time"

	pkgAuth "github.com/angelmondragon/backoffice/pkg/auth"
)

// RegisterRequest bootstraps a company and its owner.
type RegisterRequest struct {
	CompanyName   string `json:"companyName" validate:"required,min=2"`
	OwnerName     string `json:"ownerName" validate:"required,min=2"`
	OwnerEmail    string `json:"ownerEmail" validate:"required,email"`
	OwnerPassword string `json:"ownerPassword" validate:"required,min=6"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CompanySummary is the public company shape.
type CompanySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserSummary is the public user shape returned by register.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is a freshly minted credential plus who it belongs to.
type Session struct {
	Token    string
	TokenTTL time.Duration
	Company  CompanySummary
	User     UserSummary
	Identity pkgAuth.AccessTokenPayload
}

// RegisterResponse is the JSON body of a successful registration.
type RegisterResponse struct {
	Message string         `json:"message"`
	Company CompanySummary `json:"company"`
	User    UserSummary    `json:"user"`
}

// IdentityResponse is the sanitized identity served from the verified token.
type IdentityResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	CompanyID       int64  `json:"companyId"`
	CompanyName     string `json:"companyName"`
	ManageProducts  bool   `json:"manageProducts"`
	ManageInventory bool   `json:"manageInventory"`
	ManageUsers     bool   `json:"manageUsers"`
}

// IdentityFrom maps token claims to the identity response.
func IdentityFrom(p pkgAuth.AccessTokenPayload) IdentityResponse {
	return IdentityResponse{
		ID:              p.UserID,
		Name:            p.Name,
		Email:           p.Email,
		CompanyID:       p.CompanyID,
		CompanyName:     p.CompanyName,
		ManageProducts:  p.ManageProducts,
		ManageInventory: p.ManageInventory,
		ManageUsers:     p.ManageUsers,
	}
}
