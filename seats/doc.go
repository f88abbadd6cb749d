/*
Package seats maintains the seat table and allocates seat numbers.

# Seat Materialization

Seats are pre-materialized rows, not implicit slots. EnsureSeats creates the
missing rows for a committee+term up to the configured cap:

	created, err := seats.EnsureSeats(tx, cfg, committeeID, termID)

Seat numbers form a dense 1..max_seats_per_lted range once materialized.
Calling again is a no-op (created == 0).

# Allocation

NextAvailableSeat returns the smallest seat number not held by an ACTIVE
membership:

	n, err := seats.NextAvailableSeat(tx, cfg, committeeID, termID)
	var capErr *seats.CapacityError
	if errors.As(err, &capErr) {
		// all seats occupied
	}

Allocation is read-then-decide: callers must wrap the read and the claiming
membership write in one transaction. The storage layer's partial unique
index on active (committee, term, seat) converts a lost race into a
constraint violation the caller can retry.

# Weight Recompute

RecomputeSeatWeights derives every seat's weight from the committee's
lted_weight using exact decimal division; a NULL lted_weight clears all seat
weights. It must run in the same transaction as the lted_weight change — a
committee with a new weight but stale seat weights is worse than no change.
A committee that does not exist is a silent no-op.
*/
package seats
