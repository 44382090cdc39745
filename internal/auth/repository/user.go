// Package repository contains the PostgreSQL persistence layer for user
// accounts.
package repository

import (
	"context"
	"database/sql"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/auth/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/database"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

// UserRepository persists user accounts.
type UserRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *database.DB, log *logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: log.WithComponent("user_repository"),
	}
}

// Create inserts a user. A duplicate email surfaces as a conflict.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (full_name, email, password_hash, role, facility_id, facility_name, district_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	row := r.db.QueryRowxContext(ctx, query,
		user.FullName, user.Email, user.PasswordHash, user.Role,
		user.FacilityID, user.FacilityName, user.DistrictID)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		return database.MapPQError(err, "failed to create user")
	}
	return nil
}

// GetByEmail returns the account registered under an email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, full_name, email, password_hash, role, facility_id, facility_name, district_id, created_at
		FROM users
		WHERE email = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}
