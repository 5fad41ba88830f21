// Package access re-checks live permissions before a mutation runs.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"gorm.io/gorm"
)

// Authorizer gates actions on the acting user's live permission flags.
type Authorizer interface {
	Authorize(ctx context.Context, userID, companyID int64, perm enums.Permission) (*models.User, error)
}

type userLoader interface {
	FindInCompany(ctx context.Context, companyID, userID int64) (*models.User, error)
}

// Guard implements Authorizer against the users table.
type Guard struct {
	users userLoader
}

// NewGuard builds a guard. The loader must scope lookups by company.
func NewGuard(users userLoader) (*Guard, error) {
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	return &Guard{users: users}, nil
}

// Authorize reloads the user scoped to the claimed company. A missing row means the
// user was deleted or the company claim is stale, which is Unauthorized. A cleared
// flag is Forbidden.
func (g *Guard) Authorize(ctx context.Context, userID, companyID int64, perm enums.Permission) (*models.User, error) {
	if !perm.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "unknown permission")
	}
	if userID <= 0 || companyID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}

	user, err := g.users.FindInCompany(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not in company")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load acting user")
	}

	if !HasPermission(user, perm) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("missing %s", perm))
	}
	return user, nil
}

// HasPermission reads the flag matching perm from the user row.
func HasPermission(user *models.User, perm enums.Permission) bool {
	if user == nil {
		return false
	}
	switch perm {
	case enums.PermissionManageProducts:
		return user.ManageProducts
	case enums.PermissionManageInventory:
		return user.ManageInventory
	case enums.PermissionManageUsers:
		return user.ManageUsers
	}
	return false
}
