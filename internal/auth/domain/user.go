// Package domain holds the user account entity.
package domain

import (
	"strconv"
	"time"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// User is an account holder: facility staff or a district authority.
// FacilityID and FacilityName are empty for district accounts.
type User struct {
	ID           int64          `db:"id" json:"id"`
	FullName     string         `db:"full_name" json:"full_name"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Role         principal.Role `db:"role" json:"role"`
	FacilityID   string         `db:"facility_id" json:"facility_id,omitempty"`
	FacilityName string         `db:"facility_name" json:"facility_name,omitempty"`
	DistrictID   string         `db:"district_id" json:"district_id"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Principal builds the typed caller identity carried in tokens.
// operatorName is the person on shift; it falls back to the account
// name.
func (u *User) Principal(operatorName string) *principal.Principal {
	if operatorName == "" {
		operatorName = u.FullName
	}
	return &principal.Principal{
		UserID:       strconv.FormatInt(u.ID, 10),
		Role:         u.Role,
		FacilityID:   u.FacilityID,
		DistrictID:   u.DistrictID,
		DisplayName:  u.FullName,
		OperatorName: operatorName,
	}
}
