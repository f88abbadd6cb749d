package weights

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"committeeroster/db"
	"committeeroster/governance"
)

// DuplicateOccupancyError reports more than one ACTIVE membership on a
// single seat. That state is impossible under the engine's invariants, so
// the aggregator fails loudly instead of picking a winner or summing both.
type DuplicateOccupancyError struct {
	CommitteeID string
	TermID      string
	SeatNumber  int
}

func (e *DuplicateOccupancyError) Error() string {
	return fmt.Sprintf("data integrity violation: multiple active memberships occupy seat %d of committee %s (term %s)",
		e.SeatNumber, e.CommitteeID, e.TermID)
}

// SeatStatus is the per-seat breakdown of a designation-weight calculation.
type SeatStatus struct {
	SeatNumber             int              `json:"seat_number"`
	IsPetitioned           bool             `json:"is_petitioned"`
	Weight                 *decimal.Decimal `json:"weight"`
	IsOccupied             bool             `json:"is_occupied"`
	OccupantMembershipType string           `json:"occupant_membership_type,omitempty"`
	Contributes            bool             `json:"contributes"`
}

// Summary is the aggregate designation weight a committee contributes.
type Summary struct {
	CommitteeID              string          `json:"committee_id"`
	TermID                   string          `json:"term_id"`
	TotalWeight              decimal.Decimal `json:"total_weight"`
	TotalContributingSeats   int             `json:"total_contributing_seats"`
	Seats                    []SeatStatus    `json:"seats"`
	MissingWeightSeatNumbers []int           `json:"missing_weight_seat_numbers"`
}

// Calculate computes the designation-petition weight a committee contributes
// for a term. An empty termID defaults to the active term.
//
// A seat contributes its weight iff it is petitioned, occupied by an ACTIVE
// membership, and has a non-null weight. Contribution is independent of how
// the occupant arrived (APPOINTED and PETITIONED both count); the weight is
// tied to the seat, not the occupant. Petitioned, occupied seats with a null
// weight are excluded from the total and surfaced in
// MissingWeightSeatNumbers as a data-completeness signal.
//
// Calculate never mutates state.
func Calculate(q db.Queryer, committeeID, termID string) (Summary, error) {
	if termID == "" {
		term, err := governance.ActiveTerm(q)
		if err != nil {
			return Summary{}, err
		}
		termID = term.ID
	}

	seats, err := loadSeats(q, committeeID, termID)
	if err != nil {
		return Summary{}, err
	}

	occupants, err := loadOccupants(q, committeeID, termID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		CommitteeID:              committeeID,
		TermID:                   termID,
		TotalWeight:              decimal.Zero,
		Seats:                    make([]SeatStatus, 0, len(seats)),
		MissingWeightSeatNumbers: []int{},
	}

	for _, seat := range seats {
		occupantType, occupied := occupants[seat.number]

		status := SeatStatus{
			SeatNumber:   seat.number,
			IsPetitioned: seat.isPetitioned,
			Weight:       seat.weight,
			IsOccupied:   occupied,
		}
		if occupied {
			status.OccupantMembershipType = occupantType
		}

		if seat.isPetitioned && occupied {
			if seat.weight == nil {
				summary.MissingWeightSeatNumbers = append(summary.MissingWeightSeatNumbers, seat.number)
			} else {
				status.Contributes = true
				summary.TotalWeight = summary.TotalWeight.Add(*seat.weight)
				summary.TotalContributingSeats++
			}
		}

		summary.Seats = append(summary.Seats, status)
	}

	return summary, nil
}

type seatRow struct {
	number       int
	isPetitioned bool
	weight       *decimal.Decimal
}

func loadSeats(q db.Queryer, committeeID, termID string) ([]seatRow, error) {
	rows, err := q.Query(`
		SELECT seat_number, is_petitioned, weight
		FROM seat
		WHERE committee_id = $1 AND term_id = $2
		ORDER BY seat_number
	`, committeeID, termID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}
	defer rows.Close()

	var seats []seatRow
	for rows.Next() {
		var s seatRow
		var weight sql.NullString
		if err := rows.Scan(&s.number, &s.isPetitioned, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		if weight.Valid {
			w, err := decimal.NewFromString(weight.String)
			if err != nil {
				return nil, fmt.Errorf("invalid seat weight %q: %w", weight.String, err)
			}
			s.weight = &w
		}
		seats = append(seats, s)
	}

	return seats, rows.Err()
}

// loadOccupants maps occupied seat numbers to the occupant's membership
// type, failing on any seat with more than one ACTIVE membership.
func loadOccupants(q db.Queryer, committeeID, termID string) (map[int]string, error) {
	rows, err := q.Query(`
		SELECT seat_number, membership_type
		FROM membership
		WHERE committee_id = $1 AND term_id = $2 AND status = 'ACTIVE'
		  AND seat_number IS NOT NULL
	`, committeeID, termID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active memberships: %w", err)
	}
	defer rows.Close()

	occupants := make(map[int]string)
	for rows.Next() {
		var seatNumber int
		var membershipType string
		if err := rows.Scan(&seatNumber, &membershipType); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		if _, dup := occupants[seatNumber]; dup {
			return nil, &DuplicateOccupancyError{
				CommitteeID: committeeID,
				TermID:      termID,
				SeatNumber:  seatNumber,
			}
		}
		occupants[seatNumber] = membershipType
	}

	return occupants, rows.Err()
}
