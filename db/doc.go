/*
Package db handles database schema creation and shared query plumbing.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is portable between PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):
timestamps are RFC3339Nano UTC text, decimals are text, and placeholders use
the $N form both drivers accept.

# Tables

The schema includes:

  - governance_config: jurisdiction-wide eligibility and capacity settings
  - term: committee-election cycles (exactly one active)
  - voter: registered voters with party and import version pair
  - committee: LTED geographic key per term, optional lted_weight
  - lted_crosswalk: LTED key to assembly district mapping
  - seat: numbered, capacity-bounded slots per committee+term
  - membership: voter-committee joins with status lifecycle

# Relationships

	term 1──* committee
	committee 1──* seat
	committee 1──* membership
	voter 1──* membership

# Integrity Constraints

Partial unique indexes enforce the engine's invariants at the storage layer:

  - idx_membership_active_seat: at most one ACTIVE membership per
    (committee, term, seat). Concurrent seat claims lose with a constraint
    violation rather than silently double-booking.
  - idx_membership_live_voter: one SUBMITTED/ACTIVE membership per voter per
    committee+term.
  - idx_term_active / idx_governance_config_active: singletons for the
    active term and active configuration row.

# Queryer

Queryer is the interface both *sql.DB and *sql.Tx satisfy. Engine operations
(eligibility, seat allocation, weight recompute) accept a Queryer so handlers
can run them inside their own transactions:

	tx, _ := conn.Begin()
	defer tx.Rollback()
	seat, err := seats.NextAvailableSeat(tx, cfg, committeeID, termID)
*/
package db
