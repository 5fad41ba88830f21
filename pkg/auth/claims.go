package auth

import (
	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the identity snapshot embedded into a token.
type AccessTokenPayload struct {
	UserID          int64
	Name            string
	Email           string
	CompanyID       int64
	CompanyName     string
	ManageProducts  bool
	ManageInventory bool
	ManageUsers     bool
}

// AccessTokenClaims is the signed identity token. Its permission flags are a
// snapshot; mutations re-read them from the database.
type AccessTokenClaims struct {
	UserID          int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	CompanyID       int64  `json:"companyId"`
	CompanyName     string `json:"companyName"`
	ManageProducts  bool   `json:"manageProducts"`
	ManageInventory bool   `json:"manageInventory"`
	ManageUsers     bool   `json:"manageUsers"`
	jwt.RegisteredClaims
}

// Payload returns the identity snapshot carried by the claims.
func (c *AccessTokenClaims) Payload() AccessTokenPayload {
	if c == nil {
		return AccessTokenPayload{}
	}
	return AccessTokenPayload{
		UserID:          c.UserID,
		Name:            c.Name,
		Email:           c.Email,
		CompanyID:       c.CompanyID,
		CompanyName:     c.CompanyName,
		ManageProducts:  c.ManageProducts,
		ManageInventory: c.ManageInventory,
		ManageUsers:     c.ManageUsers,
	}
}

// Has reports whether the snapshot grants the permission.
func (p AccessTokenPayload) Has(perm enums.Permission) bool {
	switch perm {
	case enums.PermissionManageProducts:
		return p.ManageProducts
	case enums.PermissionManageInventory:
		return p.ManageInventory
	case enums.PermissionManageUsers:
		return p.ManageUsers
	}
	return false
}

// PayloadChanges lists self-service fields that can be merged on reissue.
type PayloadChanges struct {
	Name *string
}
