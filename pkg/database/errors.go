package database

import (
	"net/http"
	"strings"

	"github.com/lib/pq"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Errors that are not pq constraint violations are wrapped as internal errors
// so no persistence failure is swallowed.
func MapPQError(err error, message string) error {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return errors.Wrap(err, "INTERNAL_ERROR", message, http.StatusInternalServerError)
	}

	switch pqErr.Code {
	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// Check constraint violation (23514)
	case "23514":
		return errors.BadRequest("data validation failed: " + pqErr.Constraint)

	default:
		return errors.Wrap(err, "INTERNAL_ERROR", message, http.StatusInternalServerError)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "users_email"):
		return "an account with this email already exists"
	case strings.Contains(constraint, "requests_pending"):
		return "a pending restock request already exists for this item"
	case strings.Contains(constraint, "facility_id_date"):
		return "a workload entry already exists for this facility and date"
	case strings.Contains(constraint, "facility_id_month"):
		return "a report already exists for this facility and month"
	default:
		return "a record with these values already exists"
	}
}
