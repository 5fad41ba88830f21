package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/backoffice/pkg/auth"
	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/security"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	userNotFound      = "User not found"
)

// Service manages company members.
type Service interface {
	List(ctx context.Context, companyID int64) ([]UserDTO, error)
	Create(ctx context.Context, companyID int64, input CreateInput) (*UserDTO, error)
	UpdatePermissions(ctx context.Context, actorID, companyID, targetID int64, patch PermissionPatch) (*UserDTO, error)
	Delete(ctx context.Context, actorID, companyID, targetID int64) error
	UpdateOwnName(ctx context.Context, claims *pkgAuth.AccessTokenClaims, targetID int64, name string) (*NameUpdateResult, error)
}

// CreateInput is the validated payload for a new member.
type CreateInput struct {
	Name        string
	Email       string
	Password    string
	Permissions Permissions
}

// NameUpdateResult carries the renamed user and the reissued credential.
type NameUpdateResult struct {
	User     UserDTO
	Token    string
	TokenTTL time.Duration
}

type companyLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Company, error)
}

type service struct {
	repo        *Repository
	companies   companyLoader
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           *Repository
	Companies      companyLoader
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
}

// NewService constructs a users service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Companies == nil {
		return nil, fmt.Errorf("companies repository required")
	}
	return &service{
		repo:        params.Repo,
		companies:   params.Companies,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
		now:         time.Now,
	}, nil
}

// List re-forces the owner's flags before reading. The write is idempotent, so
// concurrent readers repeating it is harmless.
func (s *service) List(ctx context.Context, companyID int64) ([]UserDTO, error) {
	ownerID, err := s.ownerOf(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if ownerID != nil {
		err := s.repo.UpdatePermissions(ctx, companyID, *ownerID, AllPermissions())
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore owner permissions")
		}
	}

	rows, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], ownerID))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, companyID int64, input CreateInput) (*UserDTO, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CompanyID:    companyID,
		Permissions:  input.Permissions,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return FromModel(user, nil), nil
}

func (s *service) UpdatePermissions(ctx context.Context, actorID, companyID, targetID int64, patch PermissionPatch) (*UserDTO, error) {
	if actorID == targetID {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "You cannot change your own permissions")
	}
	if patch.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Provide at least one permission field to update")
	}

	target, err := s.repo.FindInCompany(ctx, companyID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, userNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	ownerID, err := s.ownerOf(ctx, companyID)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(PermissionsOf(target))
	if ownerID != nil && *ownerID == target.ID {
		if patch.RevokesAny() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Owner must always keep all permissions")
		}
		next = AllPermissions()
	}

	if err := s.repo.UpdatePermissions(ctx, companyID, target.ID, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, userNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update permissions")
	}

	target.ManageProducts = next.ManageProducts
	target.ManageInventory = next.ManageInventory
	target.ManageUsers = next.ManageUsers
	return FromModel(target, ownerID), nil
}

func (s *service) Delete(ctx context.Context, actorID, companyID, targetID int64) error {
	if actorID == targetID {
		return pkgerrors.New(pkgerrors.CodeBadRequest, "You cannot delete yourself")
	}

	target, err := s.repo.FindInCompany(ctx, companyID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, userNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	ownerID, err := s.ownerOf(ctx, companyID)
	if err != nil {
		return err
	}
	if ownerID != nil && *ownerID == target.ID {
		return pkgerrors.New(pkgerrors.CodeConflict, "Owner cannot be deleted")
	}

	if err := s.repo.Delete(ctx, companyID, target.ID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.New(pkgerrors.CodeNotFound, userNotFound)
		case db.IsForeignKeyViolation(err):
			return pkgerrors.New(pkgerrors.CodeConflict, "User is still referenced by company records")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) UpdateOwnName(ctx context.Context, claims *pkgAuth.AccessTokenClaims, targetID int64, name string) (*NameUpdateResult, error) {
	if claims == nil || claims.UserID != targetID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "can only rename self")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Name is required")
	}

	if err := s.repo.UpdateName(ctx, claims.CompanyID, claims.UserID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not in company")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update name")
	}

	user, err := s.repo.FindInCompany(ctx, claims.CompanyID, claims.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
	}

	token, ttl, err := pkgAuth.ReissueAccessToken(s.jwtCfg, s.now(), claims, pkgAuth.PayloadChanges{Name: &name})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reissue token")
	}

	ownerID, err := s.ownerOf(ctx, claims.CompanyID)
	if err != nil {
		return nil, err
	}
	return &NameUpdateResult{User: *FromModel(user, ownerID), Token: token, TokenTTL: ttl}, nil
}

func (s *service) ownerOf(ctx context.Context, companyID int64) (*int64, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company")
	}
	return company.OwnerID, nil
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
