package users

import (
	"time"

	"github.com/angelmondragon/backoffice/pkg/db/models"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	CompanyID       int64      `json:"companyId"`
	ManageProducts  bool       `json:"manageProducts"`
	ManageInventory bool       `json:"manageInventory"`
	ManageUsers     bool       `json:"manageUsers"`
	IsOwner         bool       `json:"isOwner"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Permissions is a full set of flags.
type Permissions struct {
	ManageProducts  bool `json:"manageProducts"`
	ManageInventory bool `json:"manageInventory"`
	ManageUsers     bool `json:"manageUsers"`
}

// AllPermissions grants every flag.
func AllPermissions() Permissions {
	return Permissions{ManageProducts: true, ManageInventory: true, ManageUsers: true}
}

// PermissionPatch carries only the flags the caller supplied.
type PermissionPatch struct {
	ManageProducts  *bool `json:"manageProducts"`
	ManageInventory *bool `json:"manageInventory"`
	ManageUsers     *bool `json:"manageUsers"`
}

// Empty reports whether no flag was supplied.
func (p PermissionPatch) Empty() bool {
	return p.ManageProducts == nil && p.ManageInventory == nil && p.ManageUsers == nil
}

// RevokesAny reports whether any supplied flag is false.
func (p PermissionPatch) RevokesAny() bool {
	for _, v := range []*bool{p.ManageProducts, p.ManageInventory, p.ManageUsers} {
		if v != nil && !*v {
			return true
		}
	}
	return false
}

// Apply merges the patch over current flags.
func (p PermissionPatch) Apply(current Permissions) Permissions {
	if p.ManageProducts != nil {
		current.ManageProducts = *p.ManageProducts
	}
	if p.ManageInventory != nil {
		current.ManageInventory = *p.ManageInventory
	}
	if p.ManageUsers != nil {
		current.ManageUsers = *p.ManageUsers
	}
	return current
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	CompanyID    int64
	Permissions  Permissions
}

// ToModel converts the DTO into a user row.
func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:            c.Name,
		Email:           c.Email,
		PasswordHash:    c.PasswordHash,
		CompanyID:       c.CompanyID,
		ManageProducts:  c.Permissions.ManageProducts,
		ManageInventory: c.Permissions.ManageInventory,
		ManageUsers:     c.Permissions.ManageUsers,
	}
}

// PermissionsOf reads the flags of a user row.
func PermissionsOf(u *models.User) Permissions {
	if u == nil {
		return Permissions{}
	}
	return Permissions{
		ManageProducts:  u.ManageProducts,
		ManageInventory: u.ManageInventory,
		ManageUsers:     u.ManageUsers,
	}
}

// FromModel maps a user row; ownerID marks the company owner.
func FromModel(u *models.User, ownerID *int64) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		CompanyID:       u.CompanyID,
		ManageProducts:  u.ManageProducts,
		ManageInventory: u.ManageInventory,
		ManageUsers:     u.ManageUsers,
		IsOwner:         ownerID != nil && *ownerID == u.ID,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
	}
}
