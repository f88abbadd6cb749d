package seats

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"committeeroster/db"
	"committeeroster/models"
)

// CapacityError means every seat number in range is occupied. It is distinct
// from the evaluator's CAPACITY hard stop: the two can legitimately disagree
// under concurrent writes, and callers need to tell "ineligible by policy"
// apart from "lost the seat race".
type CapacityError struct {
	Cap int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("all %d seats are occupied", e.Cap)
}

// EnsureSeats materializes seat rows for a committee+term up to the
// configured cap, numbered densely from 1. Idempotent: a committee already
// at the cap gets zero new rows. Returns the number of rows created.
func EnsureSeats(q db.Queryer, cfg models.GovernanceConfig, committeeID, termID string) (int, error) {
	var count int
	err := q.QueryRow(`
		SELECT COUNT(*) FROM seat WHERE committee_id = $1 AND term_id = $2
	`, committeeID, termID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count seats: %w", err)
	}

	created := 0
	for n := count + 1; n <= cfg.MaxSeatsPerLted; n++ {
		_, err := q.Exec(`
			INSERT INTO seat (committee_id, term_id, seat_number, is_petitioned, weight)
			VALUES ($1, $2, $3, FALSE, NULL)
		`, committeeID, termID, n)
		if err != nil {
			return created, fmt.Errorf("failed to create seat %d: %w", n, err)
		}
		created++
	}

	return created, nil
}

// NextAvailableSeat returns the lowest seat number in 1..cap not held by an
// ACTIVE membership, or a *CapacityError when all are taken.
//
// This is a read-then-decide operation with no locking of its own; the
// caller must wrap it and the membership write that claims the seat in one
// transaction. The partial unique index on active (committee, term, seat)
// turns a lost race into a retryable constraint violation at commit.
func NextAvailableSeat(q db.Queryer, cfg models.GovernanceConfig, committeeID, termID string) (int, error) {
	rows, err := q.Query(`
		SELECT seat_number FROM membership
		WHERE committee_id = $1 AND term_id = $2 AND status = 'ACTIVE'
		  AND seat_number IS NOT NULL
	`, committeeID, termID)
	if err != nil {
		return 0, fmt.Errorf("failed to query occupied seats: %w", err)
	}
	defer rows.Close()

	occupied := make(map[int]bool)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to scan seat number: %w", err)
		}
		occupied[n] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read occupied seats: %w", err)
	}

	for n := 1; n <= cfg.MaxSeatsPerLted; n++ {
		if !occupied[n] {
			return n, nil
		}
	}

	return 0, &CapacityError{Cap: cfg.MaxSeatsPerLted}
}

// RecomputeSeatWeights rewrites every seat weight for a committee from its
// current lted_weight: weight = lted_weight / max_seats_per_lted, or NULL
// when lted_weight is NULL. The division is decimal, not floating-point, so
// seat weights sum back exactly.
//
// A missing committee is a silent no-op; the caller validated existence
// upstream. Callers changing lted_weight must run the update and this
// recompute in one transaction.
func RecomputeSeatWeights(q db.Queryer, cfg models.GovernanceConfig, committeeID string) error {
	var ltedWeight sql.NullString
	err := q.QueryRow(`
		SELECT lted_weight FROM committee WHERE id = $1
	`, committeeID).Scan(&ltedWeight)

	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load committee: %w", err)
	}

	if !ltedWeight.Valid {
		_, err := q.Exec(`UPDATE seat SET weight = NULL WHERE committee_id = $1`, committeeID)
		if err != nil {
			return fmt.Errorf("failed to clear seat weights: %w", err)
		}
		return nil
	}

	total, err := decimal.NewFromString(ltedWeight.String)
	if err != nil {
		return fmt.Errorf("invalid lted_weight %q: %w", ltedWeight.String, err)
	}

	perSeat := total.Div(decimal.NewFromInt(int64(cfg.MaxSeatsPerLted)))
	_, err = q.Exec(`UPDATE seat SET weight = $1 WHERE committee_id = $2`,
		perSeat.String(), committeeID)
	if err != nil {
		return fmt.Errorf("failed to update seat weights: %w", err)
	}

	return nil
}
