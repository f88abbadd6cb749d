package handlers

import (
	"database/sql"
	"errors"
	"strings"

	"committeeroster/db"
)

// errCommitteeNotFound distinguishes a missing committee from other query
// failures in the shared lookup below.
var errCommitteeNotFound = errors.New("committee not found")

// committeeTerm returns the term a committee belongs to.
func committeeTerm(q db.Queryer, committeeID string) (string, error) {
	var termID string
	err := q.QueryRow(`SELECT term_id FROM committee WHERE id = $1`, committeeID).Scan(&termID)
	if err == sql.ErrNoRows {
		return "", errCommitteeNotFound
	}
	if err != nil {
		return "", err
	}
	return termID, nil
}

// isUniqueViolation recognizes unique-constraint errors from both supported
// drivers. The engine's partial unique indexes turn lost races (duplicate
// seat claims, duplicate live memberships) into these errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
