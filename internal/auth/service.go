package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/backoffice/internal/companies"
	"github.com/angelmondragon/backoffice/internal/users"
	pkgAuth "github.com/angelmondragon/backoffice/pkg/auth"
	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/security"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid email or password"
	duplicateEmailMessage     = "Email already exists"
)

// Service registers companies and logs users in.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type companyRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Company, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	DB             db.TxRunner
	Users          userRepository
	Companies      companyRepository
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
}

type service struct {
	tx          db.TxRunner
	users       userRepository
	companies   companyRepository
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
	now         func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Companies == nil {
		return nil, fmt.Errorf("company repository is required")
	}
	return &service{
		tx:          params.DB,
		users:       params.Users,
		companies:   params.Companies,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
		now:         time.Now,
	}, nil
}

// Register inserts the company, then its owner, then points the company at the
// owner, all in one transaction.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	ownerName := strings.TrimSpace(req.OwnerName)
	email := users.NormalizeEmail(req.OwnerEmail)
	if len(companyName) < 2 || len(ownerName) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company and owner names need at least 2 characters")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(req.OwnerPassword) < 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	}

	passwordHash, err := security.HashPassword(req.OwnerPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		company *models.Company
		owner   *models.User
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		companyRepo := companies.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, duplicateEmailMessage)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		company, err = companyRepo.Create(ctx, companyName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create company")
		}

		owner, err = userRepo.Create(ctx, users.CreateUserDTO{
			Name:         ownerName,
			Email:        email,
			PasswordHash: passwordHash,
			CompanyID:    company.ID,
			Permissions:  users.AllPermissions(),
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, duplicateEmailMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create owner")
		}

		if err := companyRepo.SetOwner(ctx, company.ID, owner.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set company owner")
		}
		company.OwnerID = &owner.ID
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "register company")
	}

	return s.issue(owner, company)
}

// Login answers unknown emails and wrong passwords identically.
func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			security.BurnVerify(req.Password, s.passwordCfg)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	company, err := s.companies.FindByID(ctx, user.CompanyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company")
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	return s.issue(user, company)
}

func (s *service) issue(user *models.User, company *models.Company) (*Session, error) {
	payload := pkgAuth.AccessTokenPayload{
		UserID:          user.ID,
		Name:            user.Name,
		Email:           user.Email,
		CompanyID:       company.ID,
		CompanyName:     company.Name,
		ManageProducts:  user.ManageProducts,
		ManageInventory: user.ManageInventory,
		ManageUsers:     user.ManageUsers,
	}
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &Session{
		Token:    token,
		TokenTTL: s.jwtCfg.TTL(),
		Company:  CompanySummary{ID: company.ID, Name: company.Name},
		User:     UserSummary{ID: user.ID, Name: user.Name, Email: user.Email},
		Identity: payload,
	}, nil
}
