package handlers

import (
	"database/sql"
	"net/http/httptest"
	"sync"
	"testing"

	"committeeroster/eligibility"
	"committeeroster/models"
	"committeeroster/testutil"
)

// seedWorkflow builds the standard fixture for membership tests: config,
// active term, one committee with a crosswalk entry, and eligible voter V1.
func seedWorkflow(t *testing.T, conn *sql.DB, maxSeats int) (termID, committeeID string) {
	t.Helper()

	testutil.CreateTestGovernance(t, conn, "DEM", true, maxSeats, "NOT_REGISTERED")
	termID = testutil.CreateTestTerm(t, conn, true)
	committeeID = testutil.CreateTestCommittee(t, conn, termID, "Springfield", 3, 12)
	testutil.AddTestCrosswalk(t, conn, "Springfield", 3, 12, "AD-61")
	testutil.CreateTestVoter(t, conn, "V1", "DEM", "AD-61", 2025, 40)

	return termID, committeeID
}

func membershipState(t *testing.T, conn *sql.DB, membershipID string) (status string, seatNumber sql.NullInt64) {
	t.Helper()
	err := conn.QueryRow(`SELECT status, seat_number FROM membership WHERE id = $1`,
		membershipID).Scan(&status, &seatNumber)
	if err != nil {
		t.Fatalf("Failed to load membership %s: %v", membershipID, err)
	}
	return status, seatNumber
}

func TestAddMembership(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/memberships", models.AddMembershipRequest{
		VoterID:     "V1",
		CommitteeID: committeeID,
	}, nil)
	w := httptest.NewRecorder()
	handler.Add(w, req)

	testutil.AssertStatus(t, w, 201)

	var resp models.AddMembershipResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != models.StatusSubmitted {
		t.Errorf("Expected status SUBMITTED, got %s", resp.Status)
	}

	// Submission never allocates a seat
	status, seat := membershipState(t, conn, resp.MembershipID)
	if status != models.StatusSubmitted {
		t.Errorf("Expected stored status SUBMITTED, got %s", status)
	}
	if seat.Valid {
		t.Errorf("Expected no seat at submission time, got %d", seat.Int64)
	}
}

func TestAddMembershipIneligible(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	testutil.CreateTestVoter(t, conn, "V2", "REP", "AD-61", 2025, 40)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/memberships", models.AddMembershipRequest{
		VoterID:     "V2",
		CommitteeID: committeeID,
	}, nil)
	w := httptest.NewRecorder()
	handler.Add(w, req)

	testutil.AssertStatus(t, w, 422)

	var res eligibility.Result
	testutil.AssertJSON(t, w, &res)
	if res.Eligible {
		t.Error("Expected ineligible verdict in response body")
	}
	if len(res.HardStops) != 1 || res.HardStops[0] != models.ReasonPartyMismatch {
		t.Errorf("Expected PARTY_MISMATCH hard stop, got %v", res.HardStops)
	}

	// A rejected submission leaves no row behind
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM membership`).Scan(&count); err != nil {
		t.Fatalf("Failed to count memberships: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no membership rows, got %d", count)
	}
}

func TestAddMembershipForced(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	testutil.CreateTestVoter(t, conn, "V2", "REP", "AD-61", 2025, 40)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/memberships", models.AddMembershipRequest{
		VoterID:        "V2",
		CommitteeID:    committeeID,
		ForceAdd:       true,
		OverrideReason: "county chair approved",
	}, nil)
	w := httptest.NewRecorder()
	handler.Add(w, req)

	testutil.AssertStatus(t, w, 201)

	var resp models.AddMembershipResponse
	testutil.AssertJSON(t, w, &resp)

	// The override reason is persisted for decision-time re-validation
	var stored sql.NullString
	err := conn.QueryRow(`SELECT override_reason FROM membership WHERE id = $1`,
		resp.MembershipID).Scan(&stored)
	if err != nil {
		t.Fatalf("Failed to load membership: %v", err)
	}
	if !stored.Valid || stored.String != "county chair approved" {
		t.Errorf("Expected persisted override reason, got %v", stored)
	}
}

func TestAddMembershipForcedWithoutReason(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	testutil.CreateTestVoter(t, conn, "V2", "REP", "AD-61", 2025, 40)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/memberships", models.AddMembershipRequest{
		VoterID:     "V2",
		CommitteeID: committeeID,
		ForceAdd:    true,
	}, nil)
	w := httptest.NewRecorder()
	handler.Add(w, req)

	testutil.AssertStatus(t, w, 422)

	var res eligibility.Result
	testutil.AssertJSON(t, w, &res)
	if res.ValidationError == "" {
		t.Error("Expected a validation error for force_add without override_reason")
	}
}

func TestAddMembershipCommitteeNotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/memberships", models.AddMembershipRequest{
		VoterID:     "V1",
		CommitteeID: "no-such-committee",
	}, nil)
	w := httptest.NewRecorder()
	handler.Add(w, req)

	testutil.AssertStatus(t, w, 404)
}

func TestAddMembershipDuplicate(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	body := models.AddMembershipRequest{VoterID: "V1", CommitteeID: committeeID}

	w := httptest.NewRecorder()
	handler.Add(w, testutil.MakeRequest("POST", "/memberships", body, nil))
	testutil.AssertStatus(t, w, 201)

	// Second live submission for the same voter and committee conflicts
	w = httptest.NewRecorder()
	handler.Add(w, testutil.MakeRequest("POST", "/memberships", body, nil))
	testutil.AssertStatus(t, w, 409)
}

func TestAddMembershipValidation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	tests := []struct {
		name string
		body models.AddMembershipRequest
	}{
		{name: "missing voter_id", body: models.AddMembershipRequest{CommitteeID: committeeID}},
		{name: "missing committee_id", body: models.AddMembershipRequest{VoterID: "V1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Add(w, testutil.MakeRequest("POST", "/memberships", tt.body, nil))
			testutil.AssertStatus(t, w, 400)
		})
	}
}

func submitMembership(t *testing.T, handler *MembershipHandler, voterID, committeeID string) string {
	t.Helper()

	req := testutil.MakeRequest("POST", "/memberships", models.AddMembershipRequest{
		VoterID:     voterID,
		CommitteeID: committeeID,
	}, nil)
	w := httptest.NewRecorder()
	handler.Add(w, req)
	testutil.AssertStatus(t, w, 201)

	var resp models.AddMembershipResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.MembershipID
}

func confirmMembership(t *testing.T, handler *MembershipHandler, membershipID string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/memberships/"+membershipID+"/confirm", nil, nil)
	req.SetPathValue("id", membershipID)
	w := httptest.NewRecorder()
	handler.Confirm(w, req)
	return w
}

func TestConfirmMembership(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	membershipID := submitMembership(t, handler, "V1", committeeID)
	w := confirmMembership(t, handler, membershipID)
	testutil.AssertStatus(t, w, 200)

	var resp models.DecideMembershipResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != models.StatusActive {
		t.Errorf("Expected status ACTIVE, got %s", resp.Status)
	}
	if resp.SeatNumber == nil || *resp.SeatNumber != 1 {
		t.Errorf("Expected seat 1, got %v", resp.SeatNumber)
	}

	status, seat := membershipState(t, conn, membershipID)
	if status != models.StatusActive || !seat.Valid || seat.Int64 != 1 {
		t.Errorf("Expected stored ACTIVE on seat 1, got %s seat %v", status, seat)
	}
}

func TestConfirmAllocatesLowestFreeSeat(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	termID, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	// Seats 1 and 3 already held
	testutil.CreateTestVoter(t, conn, "HOLD1", "DEM", "AD-61", 2025, 40)
	testutil.CreateTestVoter(t, conn, "HOLD3", "DEM", "AD-61", 2025, 40)
	testutil.CreateTestMembership(t, conn, "HOLD1", committeeID, termID, models.StatusActive, models.TypeAppointed, 1)
	testutil.CreateTestMembership(t, conn, "HOLD3", committeeID, termID, models.StatusActive, models.TypeAppointed, 3)

	membershipID := submitMembership(t, handler, "V1", committeeID)
	w := confirmMembership(t, handler, membershipID)
	testutil.AssertStatus(t, w, 200)

	var resp models.DecideMembershipResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.SeatNumber == nil || *resp.SeatNumber != 2 {
		t.Errorf("Expected lowest free seat 2, got %v", resp.SeatNumber)
	}
}

func TestConfirmNotSubmitted(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	membershipID := submitMembership(t, handler, "V1", committeeID)
	testutil.AssertStatus(t, confirmMembership(t, handler, membershipID), 200)

	// Confirming an already-active membership conflicts
	testutil.AssertStatus(t, confirmMembership(t, handler, membershipID), 409)
}

func TestConfirmNotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	testutil.AssertStatus(t, confirmMembership(t, handler, "no-such-membership"), 404)
}

func TestConfirmRevalidatesCapacity(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	termID, committeeID := seedWorkflow(t, conn, 2)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	// The submission passed when capacity was free; the committee filled
	// before the decision.
	membershipID := submitMembership(t, handler, "V1", committeeID)
	for i := 1; i <= 2; i++ {
		vid := "FILLER" + string(rune('0'+i))
		testutil.CreateTestVoter(t, conn, vid, "DEM", "AD-61", 2025, 40)
		testutil.CreateTestMembership(t, conn, vid, committeeID, termID, models.StatusActive, models.TypeAppointed, i)
	}

	w := confirmMembership(t, handler, membershipID)
	testutil.AssertStatus(t, w, 422)

	var res eligibility.Result
	testutil.AssertJSON(t, w, &res)
	if len(res.HardStops) != 1 || res.HardStops[0] != models.ReasonCapacity {
		t.Errorf("Expected CAPACITY hard stop at decision time, got %v", res.HardStops)
	}

	status, _ := membershipState(t, conn, membershipID)
	if status != models.StatusSubmitted {
		t.Errorf("Expected membership to stay SUBMITTED, got %s", status)
	}
}

func TestConfirmHonorsPersistedOverride(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	testutil.CreateTestVoter(t, conn, "V2", "REP", "AD-61", 2025, 40)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	// Forced add persists the override; the decision-time re-validation
	// must honor it even though the party mismatch still holds.
	req := testutil.MakeRequest("POST", "/memberships", models.AddMembershipRequest{
		VoterID:        "V2",
		CommitteeID:    committeeID,
		ForceAdd:       true,
		OverrideReason: "county chair approved",
	}, nil)
	w := httptest.NewRecorder()
	handler.Add(w, req)
	testutil.AssertStatus(t, w, 201)

	var resp models.AddMembershipResponse
	testutil.AssertJSON(t, w, &resp)

	testutil.AssertStatus(t, confirmMembership(t, handler, resp.MembershipID), 200)
}

func transitionRequest(t *testing.T, handler *MembershipHandler, action, membershipID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/memberships/"+membershipID+"/"+action, body, nil)
	req.SetPathValue("id", membershipID)
	w := httptest.NewRecorder()

	switch action {
	case "reject":
		handler.Reject(w, req)
	case "resign":
		handler.Resign(w, req)
	case "remove":
		handler.Remove(w, req)
	case "resubmit":
		handler.Resubmit(w, req)
	default:
		t.Fatalf("Unknown action %s", action)
	}
	return w
}

func TestRejectMembership(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	membershipID := submitMembership(t, handler, "V1", committeeID)
	w := transitionRequest(t, handler, "reject", membershipID, nil)
	testutil.AssertStatus(t, w, 200)

	status, _ := membershipState(t, conn, membershipID)
	if status != models.StatusRejected {
		t.Errorf("Expected status REJECTED, got %s", status)
	}
}

func TestRejectNonSubmitted(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	membershipID := submitMembership(t, handler, "V1", committeeID)
	testutil.AssertStatus(t, confirmMembership(t, handler, membershipID), 200)

	testutil.AssertStatus(t, transitionRequest(t, handler, "reject", membershipID, nil), 409)
}

func TestResignMembership(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	membershipID := submitMembership(t, handler, "V1", committeeID)
	testutil.AssertStatus(t, confirmMembership(t, handler, membershipID), 200)

	w := transitionRequest(t, handler, "resign", membershipID, nil)
	testutil.AssertStatus(t, w, 200)

	var status string
	var resignedAt sql.NullString
	err := conn.QueryRow(`SELECT status, resigned_at FROM membership WHERE id = $1`,
		membershipID).Scan(&status, &resignedAt)
	if err != nil {
		t.Fatalf("Failed to load membership: %v", err)
	}
	if status != models.StatusResigned {
		t.Errorf("Expected status RESIGNED, got %s", status)
	}
	if !resignedAt.Valid {
		t.Error("Expected resigned_at to be set")
	}
}

func TestRemoveMembership(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	membershipID := submitMembership(t, handler, "V1", committeeID)
	testutil.AssertStatus(t, confirmMembership(t, handler, membershipID), 200)

	// Removal requires a stated reason
	w := transitionRequest(t, handler, "remove", membershipID, models.RemoveMembershipRequest{})
	testutil.AssertStatus(t, w, 400)

	w = transitionRequest(t, handler, "remove", membershipID, models.RemoveMembershipRequest{
		Reason: "moved out of district",
	})
	testutil.AssertStatus(t, w, 200)

	var status string
	var removalReason sql.NullString
	err := conn.QueryRow(`SELECT status, removal_reason FROM membership WHERE id = $1`,
		membershipID).Scan(&status, &removalReason)
	if err != nil {
		t.Fatalf("Failed to load membership: %v", err)
	}
	if status != models.StatusRemoved {
		t.Errorf("Expected status REMOVED, got %s", status)
	}
	if !removalReason.Valid || removalReason.String != "moved out of district" {
		t.Errorf("Expected persisted removal reason, got %v", removalReason)
	}
}

func TestRemovalFreesSeat(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	testutil.CreateTestVoter(t, conn, "V2", "DEM", "AD-61", 2025, 40)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	first := submitMembership(t, handler, "V1", committeeID)
	testutil.AssertStatus(t, confirmMembership(t, handler, first), 200)
	testutil.AssertStatus(t, transitionRequest(t, handler, "remove", first, models.RemoveMembershipRequest{
		Reason: "moved out of district",
	}), 200)

	// The freed seat 1 goes to the next confirmation
	second := submitMembership(t, handler, "V2", committeeID)
	w := confirmMembership(t, handler, second)
	testutil.AssertStatus(t, w, 200)

	var resp models.DecideMembershipResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.SeatNumber == nil || *resp.SeatNumber != 1 {
		t.Errorf("Expected freed seat 1 to be reallocated, got %v", resp.SeatNumber)
	}
}

func TestResubmitMembership(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	membershipID := submitMembership(t, handler, "V1", committeeID)
	testutil.AssertStatus(t, transitionRequest(t, handler, "reject", membershipID, nil), 200)

	w := transitionRequest(t, handler, "resubmit", membershipID, nil)
	testutil.AssertStatus(t, w, 200)

	status, seat := membershipState(t, conn, membershipID)
	if status != models.StatusSubmitted {
		t.Errorf("Expected status SUBMITTED after resubmit, got %s", status)
	}
	if seat.Valid {
		t.Errorf("Expected no seat after resubmit, got %d", seat.Int64)
	}
}

func TestResubmitActiveConflicts(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	membershipID := submitMembership(t, handler, "V1", committeeID)
	testutil.AssertStatus(t, confirmMembership(t, handler, membershipID), 200)

	testutil.AssertStatus(t, transitionRequest(t, handler, "resubmit", membershipID, nil), 409)
}

func TestPetitionOutcomeWon(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/memberships/petition-outcome", models.PetitionOutcomeRequest{
		VoterID:     "V1",
		CommitteeID: committeeID,
		Outcome:     models.OutcomeWon,
	}, nil)
	w := httptest.NewRecorder()
	handler.PetitionOutcome(w, req)

	testutil.AssertStatus(t, w, 201)

	var resp models.DecideMembershipResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != models.StatusActive {
		t.Errorf("Expected status ACTIVE, got %s", resp.Status)
	}
	if resp.SeatNumber == nil || *resp.SeatNumber != 1 {
		t.Errorf("Expected seat 1, got %v", resp.SeatNumber)
	}

	var membershipType string
	err := conn.QueryRow(`SELECT membership_type FROM membership WHERE id = $1`,
		resp.MembershipID).Scan(&membershipType)
	if err != nil {
		t.Fatalf("Failed to load membership: %v", err)
	}
	if membershipType != models.TypePetitioned {
		t.Errorf("Expected membership type PETITIONED, got %s", membershipType)
	}
}

func TestPetitionOutcomeTieAndLost(t *testing.T) {
	tests := []struct {
		outcome    string
		wantStatus string
	}{
		{outcome: models.OutcomeTie, wantStatus: models.StatusPetitionedTie},
		{outcome: models.OutcomeLost, wantStatus: models.StatusPetitionedLost},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			conn := testutil.SetupTestDB(t)
			defer conn.Close()
			_, committeeID := seedWorkflow(t, conn, 4)
			handler := NewMembershipHandler(conn, testutil.GetTestConfig())

			req := testutil.MakeRequest("POST", "/memberships/petition-outcome", models.PetitionOutcomeRequest{
				VoterID:     "V1",
				CommitteeID: committeeID,
				Outcome:     tt.outcome,
			}, nil)
			w := httptest.NewRecorder()
			handler.PetitionOutcome(w, req)

			testutil.AssertStatus(t, w, 201)

			var resp models.DecideMembershipResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Status != tt.wantStatus {
				t.Errorf("Expected status %s, got %s", tt.wantStatus, resp.Status)
			}
			// Losses and ties never hold a seat
			if resp.SeatNumber != nil {
				t.Errorf("Expected no seat, got %d", *resp.SeatNumber)
			}
		})
	}
}

func TestPetitionOutcomeInvalid(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/memberships/petition-outcome", models.PetitionOutcomeRequest{
		VoterID:     "V1",
		CommitteeID: committeeID,
		Outcome:     "MAYBE",
	}, nil)
	w := httptest.NewRecorder()
	handler.PetitionOutcome(w, req)

	testutil.AssertStatus(t, w, 400)
}

func TestPetitionOutcomeWonIneligible(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	testutil.CreateTestVoter(t, conn, "V2", "REP", "AD-61", 2025, 40)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	// A win still has to clear the eligibility gate
	req := testutil.MakeRequest("POST", "/memberships/petition-outcome", models.PetitionOutcomeRequest{
		VoterID:     "V2",
		CommitteeID: committeeID,
		Outcome:     models.OutcomeWon,
	}, nil)
	w := httptest.NewRecorder()
	handler.PetitionOutcome(w, req)

	testutil.AssertStatus(t, w, 422)
}

func TestCheckEligibility(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	testutil.CreateTestVoter(t, conn, "V2", "REP", "AD-61", 2025, 40)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	tests := []struct {
		name         string
		voterID      string
		wantEligible bool
	}{
		{name: "eligible voter", voterID: "V1", wantEligible: true},
		{name: "ineligible voter", voterID: "V2", wantEligible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/eligibility/check", models.EligibilityCheckRequest{
				VoterID:     tt.voterID,
				CommitteeID: committeeID,
			}, nil)
			w := httptest.NewRecorder()
			handler.CheckEligibility(w, req)

			// The dry run reports, never rejects
			testutil.AssertStatus(t, w, 200)

			var res eligibility.Result
			testutil.AssertJSON(t, w, &res)
			if res.Eligible != tt.wantEligible {
				t.Errorf("Expected eligible=%v, got %v (stops %v)", tt.wantEligible, res.Eligible, res.HardStops)
			}
		})
	}

	// The dry run writes nothing
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM membership`).Scan(&count); err != nil {
		t.Fatalf("Failed to count memberships: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no membership rows after dry runs, got %d", count)
	}
}

func TestConcurrentConfirms(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	_, committeeID := seedWorkflow(t, conn, 4)
	handler := NewMembershipHandler(conn, testutil.GetTestConfig())

	voters := []string{"V1", "C2", "C3", "C4"}
	for _, v := range voters[1:] {
		testutil.CreateTestVoter(t, conn, v, "DEM", "AD-61", 2025, 40)
	}

	ids := make([]string, len(voters))
	for i, v := range voters {
		ids[i] = submitMembership(t, handler, v, committeeID)
	}

	var wg sync.WaitGroup
	results := make([]*httptest.ResponseRecorder, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = confirmMembership(t, handler, id)
		}(i, id)
	}
	wg.Wait()

	// Every confirmation lands on its own seat
	seen := make(map[int]bool)
	for i, w := range results {
		testutil.AssertStatus(t, w, 200)
		var resp models.DecideMembershipResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.SeatNumber == nil {
			t.Fatalf("Confirmation %d returned no seat", i)
		}
		if seen[*resp.SeatNumber] {
			t.Errorf("Seat %d allocated twice", *resp.SeatNumber)
		}
		seen[*resp.SeatNumber] = true
	}
}
