package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	pkgAuth "github.com/linkcart/b2b-backend/pkg/auth"
	"github.com/linkcart/b2b-backend/pkg/auth/session"
	"github.com/linkcart/b2b-backend/pkg/authz"
	"github.com/linkcart/b2b-backend/pkg/config"
	"github.com/linkcart/b2b-backend/pkg/db/models"
	pkgerrors "github.com/linkcart/b2b-backend/pkg/errors"
	"github.com/linkcart/b2b-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type tenantRunner interface {
	RunTenant(ctx context.Context, email string, fn func(ctx context.Context) error) error
}

type customerFinder interface {
	FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, email string) (authz.TenantContext, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type service struct {
	tenant    tenantRunner
	customers customerFinder
	identity  identityResolver
	session   sessionManager
	jwtCfg    config.JWTConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	TenantRunner   tenantRunner
	Customers      customerFinder
	Identity       identityResolver
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TenantRunner == nil {
		return nil, fmt.Errorf("tenant runner is required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer repository is required")
	}
	if params.Identity == nil {
		return nil, fmt.Errorf("identity service is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		tenant:    params.TenantRunner,
		customers: params.Customers,
		identity:  params.Identity,
		session:   params.SessionManager,
		jwtCfg:    params.JWTConfig,
	}, nil
}

// Login verifies the credentials against the customer record and issues
// an access/refresh token pair. The lookup runs in a tenant transaction
// bound to the claimed email: the self-read policy admits exactly the
// caller's own row, so an attacker probing other emails reads nothing.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	tc, err := s.identity.Resolve(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve identity")
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		Email: email,
		JTI:   accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Email:        email,
		Role:         tc.Role,
		CompanyID:    tc.CompanyID,
		StoreIDs:     tc.StoreIDs,
	}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (string, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" || password == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var customer *models.Customer
	err := s.tenant.RunTenant(ctx, input, func(ctx context.Context) error {
		found, err := s.customers.FindCustomerByEmail(ctx, input)
		if err != nil {
			return err
		}
		customer = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	if customer.PasswordHash == nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	valid, err := security.VerifyPassword(password, *customer.PasswordHash)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return customer.Email, nil
}
