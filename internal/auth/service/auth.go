// Package service implements signup and login with token issuance.
package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/auth/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/identity"
	workloaddomain "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// bcrypt rejects passwords longer than 72 bytes.
const maxPasswordBytes = 72

// UserStore is the account persistence the auth service depends on.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// FacilityRegistrar creates the facility record a phc signup brings
// with it. Idempotent on facility id.
type FacilityRegistrar interface {
	CreateFacility(ctx context.Context, f *workloaddomain.Facility) error
}

// AuthService registers accounts and issues access tokens.
type AuthService struct {
	users      UserStore
	facilities FacilityRegistrar
	tokens     *identity.Manager
	capacity   int
	logger     *logger.Logger
}

// NewAuthService creates an AuthService. capacity is the default daily
// patient capacity stamped on new facility records.
func NewAuthService(users UserStore, facilities FacilityRegistrar, tokens *identity.Manager, capacity int, log *logger.Logger) *AuthService {
	return &AuthService{
		users:      users,
		facilities: facilities,
		tokens:     tokens,
		capacity:   capacity,
		logger:     log.WithComponent("auth_service"),
	}
}

// SignupInput registers a new account. FacilityID and DistrictID are
// required for facility accounts; district accounts need DistrictID
// only. For facility accounts Name is the facility's name.
type SignupInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role" validate:"required"`
	FacilityID string `json:"facility_id,omitempty"`
	DistrictID string `json:"district_id" validate:"required"`
}

// Signup creates the account, registers the facility record for phc
// roles and returns an access token.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*identity.Token, error) {
	role, err := principal.ParseRole(input.Role)
	if err != nil {
		return nil, errors.Validation(map[string]string{"role": err.Error()})
	}
	if role == principal.RolePHC && input.FacilityID == "" {
		return nil, errors.Validation(map[string]string{
			"facility_id": "facility_id is required when registering a facility account",
		})
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:     input.Name,
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         role,
		DistrictID:   input.DistrictID,
	}
	if role == principal.RolePHC {
		user.FacilityID = input.FacilityID
		user.FacilityName = input.Name
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if role == principal.RolePHC {
		facility := &workloaddomain.Facility{
			FacilityID:   user.FacilityID,
			FacilityName: user.FacilityName,
			DistrictID:   user.DistrictID,
			Capacity:     s.capacity,
		}
		if err := s.facilities.CreateFacility(ctx, facility); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("email", user.Email).
		Str("role", role.String()).
		Msg("account registered")
	return s.tokens.Generate(user.Principal(input.Name))
}

// LoginInput authenticates an account. OperatorName is the person on
// shift today and is carried into the token.
type LoginInput struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	OperatorName string `json:"operator_name,omitempty"`
}

// Login verifies credentials and returns an access token. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*identity.Token, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(truncatePassword(input.Password))); err != nil {
		return nil, errors.InvalidCredentials()
	}

	return s.tokens.Generate(user.Principal(input.OperatorName))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(truncatePassword(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func truncatePassword(password string) string {
	if len(password) > maxPasswordBytes {
		return password[:maxPasswordBytes]
	}
	return password
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
