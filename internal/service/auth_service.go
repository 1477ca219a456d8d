package service

import (
	"context"
	"time"

	"airportpos/internal/config"
	"airportpos/internal/dto"
	"airportpos/internal/model"
	"airportpos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues access tokens for the three principal kinds.
// Token verification lives in middleware.JWTAuth.
type AuthService interface {
	LoginVendor(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	LoginCashier(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	LoginAdmin(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	vendors  repository.VendorRepository
	cashiers repository.CashierRepository
	admins   repository.AdminRepository
	cfg      *config.Config
}

func NewAuthService(
	vendors repository.VendorRepository,
	cashiers repository.CashierRepository,
	admins repository.AdminRepository,
	cfg *config.Config,
) AuthService {
	return &authService{vendors: vendors, cashiers: cashiers, admins: admins, cfg: cfg}
}

func (s *authService) LoginVendor(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	v, err := s.vendors.FindByEmail(ctx, req.Email)
	if err != nil || !passwordMatches(v.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !v.Approved {
		return nil, ErrVendorNotApproved
	}
	return s.issue(dto.PrincipalResponse{
		ID: v.ID.String(), Name: v.CompanyName, Email: v.Email, Role: model.RoleVendor,
	}, nil)
}

func (s *authService) LoginCashier(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	c, err := s.cashiers.FindByEmail(ctx, req.Email)
	if err != nil || !passwordMatches(c.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	shopID := c.ShopID
	shop := shopID.String()
	return s.issue(dto.PrincipalResponse{
		ID: c.ID.String(), Name: c.Name, Email: c.Email, Role: model.RoleCashier, ShopID: &shop,
	}, &shopID)
}

func (s *authService) LoginAdmin(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	a, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil || !passwordMatches(a.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(dto.PrincipalResponse{
		ID: a.ID.String(), Name: "Admin", Email: a.Email, Role: model.RoleAdmin,
	}, nil)
}

func (s *authService) issue(user dto.PrincipalResponse, shopID *uuid.UUID) (*dto.LoginResponse, error) {
	ttl := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	token, err := GenerateToken(s.cfg.JWTSecret, user.ID, user.Role, shopID, ttl)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
		User:      user,
	}, nil
}

// GenerateToken signs an HS256 token carrying {id, role, shopId?}.
func GenerateToken(secret, id, role string, shopID *uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   id,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if shopID != nil {
		claims["shopId"] = shopID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
