// Package identity resolves opaque bearer credentials into a typed
// principal. It is the only place that understands token format; the
// rest of the system sees principal.Principal values.
package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/config"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	FacilityID   string `json:"facility_id,omitempty"`
	DistrictID   string `json:"district_id"`
	Name         string `json:"name"`
	OperatorName string `json:"operator_name"`
}

// Manager handles JWT operations
type Manager struct {
	config *config.JWTConfig
}

// NewManager creates a new JWT manager
func NewManager(cfg *config.JWTConfig) *Manager {
	return &Manager{config: cfg}
}

// Token is an issued access token
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
}

// Generate issues an access token carrying the principal's identity.
func (m *Manager) Generate(p *principal.Principal) (*Token, error) {
	now := time.Now()
	expiry := now.Add(m.config.AccessExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		UserID:       p.UserID,
		Role:         string(p.Role),
		FacilityID:   p.FacilityID,
		DistrictID:   p.DistrictID,
		Name:         p.DisplayName,
		OperatorName: p.OperatorName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiry,
		Role:        string(p.Role),
	}, nil
}

// Validate validates an access token and returns the principal it carries.
func (m *Manager) Validate(tokenString string) (*principal.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.TokenInvalid()
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.TokenInvalid()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.TokenInvalid()
	}

	role, err := principal.ParseRole(claims.Role)
	if err != nil {
		return nil, errors.TokenInvalid()
	}

	return &principal.Principal{
		UserID:       claims.UserID,
		Role:         role,
		FacilityID:   claims.FacilityID,
		DistrictID:   claims.DistrictID,
		DisplayName:  claims.Name,
		OperatorName: claims.OperatorName,
	}, nil
}

// Expiry returns the access token expiry duration
func (m *Manager) Expiry() time.Duration {
	return m.config.AccessExpiry
}
