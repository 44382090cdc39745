// Package principal provides the typed caller identity passed explicitly
// into every engine call.
//
// A Principal is resolved from an opaque bearer credential by the identity
// middleware and carried on the request context. Services take it as an
// argument rather than reading ambient state.
package principal

import (
	"context"
	"fmt"
)

// Role is the closed set of caller roles.
type Role string

const (
	// RolePHC is a frontline facility operator (Primary Health Centre).
	RolePHC Role = "phc"
	// RoleLGA is a district-level supervisor (LGA / health admin).
	RoleLGA Role = "lga"
)

// ParseRole maps a raw role string onto the closed Role set.
// Historical aliases from older clients are normalized.
func ParseRole(s string) (Role, error) {
	switch s {
	case "phc", "phcuser", "frontline", "frontline_worker":
		return RolePHC, nil
	case "lga", "health", "health_admin", "admin", "healthcare_admin":
		return RoleLGA, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	return r == RolePHC || r == RoleLGA
}

func (r Role) String() string {
	return string(r)
}

// Principal identifies the authenticated caller of an operation.
type Principal struct {
	// UserID is the account identifier.
	UserID string `json:"user_id"`

	// Role determines which operations the caller may perform.
	Role Role `json:"role"`

	// FacilityID is the PHC the caller operates (empty for LGA accounts).
	FacilityID string `json:"facility_id,omitempty"`

	// DistrictID is the LGA jurisdiction the caller belongs to.
	DistrictID string `json:"district_id"`

	// DisplayName is the account name (facility name for PHC accounts).
	DisplayName string `json:"display_name"`

	// OperatorName is the person using the account on this shift.
	OperatorName string `json:"operator_name"`
}

// IsPHC reports whether the caller is a frontline facility operator.
func (p *Principal) IsPHC() bool {
	return p != nil && p.Role == RolePHC
}

// IsLGA reports whether the caller is a district authority.
func (p *Principal) IsLGA() bool {
	return p != nil && p.Role == RoleLGA
}

// String returns a representation of the principal for logging.
func (p *Principal) String() string {
	if p == nil {
		return "anonymous"
	}
	return fmt.Sprintf("%s (%s, %s)", p.DisplayName, p.Role, p.OperatorName)
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

const principalContextKey contextKey = "principal"

// FromContext retrieves the Principal from the context.
// Returns nil if no principal is present.
func FromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	p, ok := ctx.Value(principalContextKey).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalContextKey, p)
}

// MustFromContext retrieves the Principal from the context.
// Panics if none is present. Use only behind the auth middleware.
func MustFromContext(ctx context.Context) *Principal {
	p := FromContext(ctx)
	if p == nil {
		panic("principal not found in context")
	}
	return p
}
