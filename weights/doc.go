/*
Package weights aggregates the designation-petition weight a committee
contributes toward primary ballot access.

# Calculation

Calculate joins seat metadata with current occupancy and returns a Summary:

	summary, err := weights.Calculate(conn, committeeID, termID)

An empty termID defaults to the active term. The contribution law:

	contributes ⟺ is_petitioned ∧ occupied ∧ weight ≠ null

Both APPOINTED and PETITIONED occupants of a petitioned seat contribute; the
weight belongs to the seat, not to how its occupant arrived. TotalWeight is
the exact decimal sum over contributing seats (0.25 + 0.25 is 0.5, never
0.49999...).

Petitioned, occupied seats whose weight is unset are excluded from the total
and listed in MissingWeightSeatNumbers so operators can see incomplete data
instead of a silent zero.

# Integrity

Two ACTIVE memberships on one seat violate the engine's invariants.
Calculate returns a *DuplicateOccupancyError naming the seat rather than
picking a winner:

	var dup *weights.DuplicateOccupancyError
	if errors.As(err, &dup) {
		// dup.SeatNumber is double-booked
	}

Calculate is a pure read; it never mutates state.
*/
package weights
