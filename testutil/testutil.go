package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"committeeroster/cliparse"
	"committeeroster/db"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
// The single-connection pool keeps the memory database alive for the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
	}
}

// CreateTestGovernance inserts the active governance configuration row.
// nonOverridable is a comma-separated reason list ("" for none).
func CreateTestGovernance(t *testing.T, conn *sql.DB, party string, requireADMatch bool, maxSeats int, nonOverridable string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO governance_config (id, required_party_code, require_ad_match,
		                               max_seats_per_lted, non_overridable_reasons, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
	`, uuid.NewString(), party, requireADMatch, maxSeats, nonOverridable, db.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("Failed to create governance config: %v", err)
	}
}

// CreateTestTerm inserts a term and returns its ID
func CreateTestTerm(t *testing.T, conn *sql.DB, active bool) string {
	t.Helper()

	termID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO term (id, name, is_active, created_at)
		VALUES ($1, 'Test Term', $2, $3)
	`, termID, active, db.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("Failed to create test term: %v", err)
	}

	return termID
}

// CreateTestVoter inserts a voter row
func CreateTestVoter(t *testing.T, conn *sql.DB, registrationID, party, assemblyDistrict string, entryYear, entryNumber int) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO voter (registration_id, first_name, last_name, party, assembly_district,
		                   latest_entry_year, latest_entry_number, created_at)
		VALUES ($1, 'Test', 'Voter', $2, $3, $4, $5, $6)
	`, registrationID, party, assemblyDistrict, entryYear, entryNumber, db.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
}

// CreateTestCommittee inserts a committee for a term and returns its ID.
// Seats are NOT materialized; use AddTestSeat or seats.EnsureSeats.
func CreateTestCommittee(t *testing.T, conn *sql.DB, termID, cityTown string, legislativeDistrict, electionDistrict int) string {
	t.Helper()

	committeeID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO committee (id, city_town, legislative_district, election_district, term_id, lted_weight, created_at)
		VALUES ($1, $2, $3, $4, $5, NULL, $6)
	`, committeeID, cityTown, legislativeDistrict, electionDistrict, termID, db.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("Failed to create test committee: %v", err)
	}

	return committeeID
}

// AddTestCrosswalk maps an LTED key to an assembly district
func AddTestCrosswalk(t *testing.T, conn *sql.DB, cityTown string, legislativeDistrict, electionDistrict int, assemblyDistrict string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO lted_crosswalk (city_town, legislative_district, election_district, assembly_district)
		VALUES ($1, $2, $3, $4)
	`, cityTown, legislativeDistrict, electionDistrict, assemblyDistrict)
	if err != nil {
		t.Fatalf("Failed to create test crosswalk: %v", err)
	}
}

// AddTestSeat inserts a seat row. weight "" means NULL.
func AddTestSeat(t *testing.T, conn *sql.DB, committeeID, termID string, seatNumber int, isPetitioned bool, weight string) {
	t.Helper()

	var w sql.NullString
	if weight != "" {
		w = sql.NullString{String: weight, Valid: true}
	}

	_, err := conn.Exec(`
		INSERT INTO seat (committee_id, term_id, seat_number, is_petitioned, weight)
		VALUES ($1, $2, $3, $4, $5)
	`, committeeID, termID, seatNumber, isPetitioned, w)
	if err != nil {
		t.Fatalf("Failed to create test seat: %v", err)
	}
}

// CreateTestMembership inserts a membership and returns its ID.
// seatNumber 0 means NULL (no seat).
func CreateTestMembership(t *testing.T, conn *sql.DB, voterID, committeeID, termID, status, membershipType string, seatNumber int) string {
	t.Helper()

	var seat sql.NullInt64
	if seatNumber > 0 {
		seat = sql.NullInt64{Int64: int64(seatNumber), Valid: true}
	}

	membershipID := uuid.NewString()
	now := db.FormatTime(time.Now())
	_, err := conn.Exec(`
		INSERT INTO membership (id, voter_id, committee_id, term_id, seat_number, status,
		                        membership_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, membershipID, voterID, committeeID, termID, seat, status, membershipType, now, now)
	if err != nil {
		t.Fatalf("Failed to create test membership: %v", err)
	}

	return membershipID
}

// MarkResigned flips a membership to RESIGNED at the given time
func MarkResigned(t *testing.T, conn *sql.DB, membershipID string, resignedAt time.Time) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE membership SET status = 'RESIGNED', resigned_at = $1, updated_at = $2 WHERE id = $3
	`, db.FormatTime(resignedAt), db.FormatTime(time.Now()), membershipID)
	if err != nil {
		t.Fatalf("Failed to mark membership resigned: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
