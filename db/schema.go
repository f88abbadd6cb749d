package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Queryer is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Core operations take a Queryer so callers can compose them with their own
// writes inside a single transaction.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// TimeFormat is how timestamps are stored: RFC3339Nano in UTC, as text.
// Text storage keeps the schema portable between PostgreSQL and SQLite, and
// lexicographic comparison of values matches chronological order.
const TimeFormat = time.RFC3339Nano

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Governance configuration (one active row per deployment)
CREATE TABLE IF NOT EXISTS governance_config (
    id TEXT PRIMARY KEY,
    required_party_code TEXT NOT NULL,
    require_ad_match BOOLEAN NOT NULL DEFAULT FALSE,
    max_seats_per_lted INTEGER NOT NULL,
    non_overridable_reasons TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_governance_config_active
    ON governance_config(is_active) WHERE is_active;

-- Terms
CREATE TABLE IF NOT EXISTS term (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_term_active ON term(is_active) WHERE is_active;

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    registration_id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    party TEXT NOT NULL,
    assembly_district TEXT NOT NULL,
    latest_entry_year INTEGER NOT NULL,
    latest_entry_number INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voter_entry ON voter(latest_entry_year, latest_entry_number);

-- Committees (one LTED per term)
CREATE TABLE IF NOT EXISTS committee (
    id TEXT PRIMARY KEY,
    city_town TEXT NOT NULL,
    legislative_district INTEGER NOT NULL,
    election_district INTEGER NOT NULL,
    term_id TEXT NOT NULL REFERENCES term(id),
    lted_weight TEXT,
    created_at TEXT NOT NULL,
    UNIQUE (city_town, legislative_district, election_district, term_id)
);

CREATE INDEX IF NOT EXISTS idx_committee_term ON committee(term_id);

-- LTED to assembly district crosswalk
CREATE TABLE IF NOT EXISTS lted_crosswalk (
    city_town TEXT NOT NULL,
    legislative_district INTEGER NOT NULL,
    election_district INTEGER NOT NULL,
    assembly_district TEXT NOT NULL,
    PRIMARY KEY (city_town, legislative_district, election_district)
);

-- Seats (pre-materialized, dense 1..max_seats_per_lted)
CREATE TABLE IF NOT EXISTS seat (
    committee_id TEXT NOT NULL REFERENCES committee(id) ON DELETE CASCADE,
    term_id TEXT NOT NULL,
    seat_number INTEGER NOT NULL,
    is_petitioned BOOLEAN NOT NULL DEFAULT FALSE,
    weight TEXT,
    PRIMARY KEY (committee_id, term_id, seat_number)
);

-- Memberships (never hard-deleted; status transitions model removal)
CREATE TABLE IF NOT EXISTS membership (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES voter(registration_id),
    committee_id TEXT NOT NULL REFERENCES committee(id),
    term_id TEXT NOT NULL,
    seat_number INTEGER,
    status TEXT NOT NULL CHECK (status IN (
        'SUBMITTED', 'ACTIVE', 'REJECTED', 'REMOVED', 'RESIGNED',
        'PETITIONED_TIE', 'PETITIONED_LOST')),
    membership_type TEXT NOT NULL DEFAULT 'APPOINTED'
        CHECK (membership_type IN ('APPOINTED', 'PETITIONED')),
    override_reason TEXT,
    removal_reason TEXT,
    removed_at TEXT,
    resigned_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- At most one ACTIVE membership per committee+term+seat. A lost seat race
-- surfaces as a unique-constraint violation instead of a double booking.
CREATE UNIQUE INDEX IF NOT EXISTS idx_membership_active_seat
    ON membership(committee_id, term_id, seat_number) WHERE status = 'ACTIVE';

-- One live (submitted or active) membership per voter per committee+term.
CREATE UNIQUE INDEX IF NOT EXISTS idx_membership_live_voter
    ON membership(voter_id, committee_id, term_id)
    WHERE status IN ('SUBMITTED', 'ACTIVE');

CREATE INDEX IF NOT EXISTS idx_membership_committee ON membership(committee_id, term_id, status);
CREATE INDEX IF NOT EXISTS idx_membership_voter ON membership(voter_id, status);
`
