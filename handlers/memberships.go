package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"committeeroster/cliparse"
	"committeeroster/db"
	"committeeroster/eligibility"
	"committeeroster/governance"
	"committeeroster/middleware"
	"committeeroster/models"
	"committeeroster/seats"
)

type MembershipHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewMembershipHandler(db *sql.DB, cfg cliparse.Config) *MembershipHandler {
	return &MembershipHandler{db: db, cfg: cfg}
}

// membershipRow is the subset of columns the decision workflows need.
type membershipRow struct {
	ID             string
	VoterID        string
	CommitteeID    string
	TermID         string
	Status         string
	OverrideReason sql.NullString
}

func loadMembership(q db.Queryer, id string) (membershipRow, error) {
	var m membershipRow
	err := q.QueryRow(`
		SELECT id, voter_id, committee_id, term_id, status, override_reason
		FROM membership
		WHERE id = $1
	`, id).Scan(&m.ID, &m.VoterID, &m.CommitteeID, &m.TermID, &m.Status, &m.OverrideReason)
	return m, err
}

// Add handles POST /memberships
// Submits a membership request: runs the eligibility evaluator (honoring a
// forced add) and creates a SUBMITTED membership with no seat. Seats are
// allocated at decision time, not submission time.
func (h *MembershipHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddMembershipRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}
	if req.CommitteeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committee_id is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	cfg, err := governance.Config(tx)
	if err != nil {
		slog.Error("failed to load governance config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	termID, err := committeeTerm(tx, req.CommitteeID)
	if err != nil {
		if err == errCommitteeNotFound {
			middleware.ErrorResponse(w, http.StatusNotFound, "Committee not found")
			return
		}
		slog.Error("failed to query committee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	res, err := eligibility.Validate(tx, cfg, req.VoterID, req.CommitteeID, termID, eligibility.Options{
		ForceAdd:       req.ForceAdd,
		OverrideReason: req.OverrideReason,
	})
	if err != nil {
		slog.Error("eligibility evaluation failed", "error", err, "voter_id", req.VoterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Eligibility evaluation failed")
		return
	}

	if !res.Eligible {
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, res)
		return
	}

	// Persist the override reason when hard stops were bypassed, so the
	// decision-time re-validation can honor the same override.
	var overrideReason sql.NullString
	if len(res.BypassedReasons) > 0 {
		overrideReason = sql.NullString{String: req.OverrideReason, Valid: true}
	}

	membershipID := uuid.NewString()
	now := db.FormatTime(time.Now())
	_, err = tx.Exec(`
		INSERT INTO membership (id, voter_id, committee_id, term_id, seat_number, status,
		                        membership_type, override_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $6, $7, $8, $9)
	`, membershipID, req.VoterID, req.CommitteeID, termID, models.StatusSubmitted,
		models.TypeAppointed, overrideReason, now, now)

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Voter already has a pending or active membership in this committee")
			return
		}
		slog.Error("failed to insert membership", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit membership")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit membership")
		return
	}

	slog.Info("membership submitted", "membership_id", membershipID,
		"voter_id", req.VoterID, "committee_id", req.CommitteeID,
		"bypassed_reasons", res.BypassedReasons)

	middleware.JSONResponse(w, http.StatusCreated, models.AddMembershipResponse{
		MembershipID: membershipID,
		Status:       models.StatusSubmitted,
	})
}

// Confirm handles POST /memberships/{id}/confirm
// The decision step: re-validates eligibility against live counts, allocates
// the lowest free seat, and activates the membership — all in one
// transaction so a concurrent claim on the same seat loses at commit.
func (h *MembershipHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	membershipID := r.PathValue("id")
	if membershipID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "membership_id is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	m, err := loadMembership(tx, membershipID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Membership not found")
		return
	}
	if err != nil {
		slog.Error("failed to query membership", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if m.Status != models.StatusSubmitted {
		middleware.ErrorResponse(w, http.StatusConflict, "Membership is not awaiting decision")
		return
	}

	cfg, err := governance.Config(tx)
	if err != nil {
		slog.Error("failed to load governance config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Re-validate at decision time: two submissions can both pass the
	// request-time check before either commits. A persisted override from
	// the original forced add still applies here.
	opts := eligibility.Options{}
	if m.OverrideReason.Valid {
		opts.ForceAdd = true
		opts.OverrideReason = m.OverrideReason.String
	}
	res, err := eligibility.Validate(tx, cfg, m.VoterID, m.CommitteeID, m.TermID, opts)
	if err != nil {
		slog.Error("eligibility evaluation failed", "error", err, "membership_id", membershipID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Eligibility evaluation failed")
		return
	}
	if !res.Eligible {
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, res)
		return
	}

	seatNumber, err := seats.NextAvailableSeat(tx, cfg, m.CommitteeID, m.TermID)
	if err != nil {
		var capErr *seats.CapacityError
		if errors.As(err, &capErr) {
			middleware.ErrorResponse(w, http.StatusConflict, capErr.Error())
			return
		}
		slog.Error("seat allocation failed", "error", err, "membership_id", membershipID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Seat allocation failed")
		return
	}

	_, err = tx.Exec(`
		UPDATE membership SET status = $1, seat_number = $2, updated_at = $3 WHERE id = $4
	`, models.StatusActive, seatNumber, db.FormatTime(time.Now()), membershipID)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Seat was claimed concurrently; retry the confirmation")
			return
		}
		slog.Error("failed to activate membership", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to confirm membership")
		return
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Seat was claimed concurrently; retry the confirmation")
			return
		}
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to confirm membership")
		return
	}

	slog.Info("membership confirmed", "membership_id", membershipID,
		"committee_id", m.CommitteeID, "seat_number", seatNumber)

	middleware.JSONResponse(w, http.StatusOK, models.DecideMembershipResponse{
		MembershipID: membershipID,
		Status:       models.StatusActive,
		SeatNumber:   &seatNumber,
	})
}

// Reject handles POST /memberships/{id}/reject
func (h *MembershipHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", models.StatusSubmitted, models.StatusRejected, nil)
}

// Resign handles POST /memberships/{id}/resign
func (h *MembershipHandler) Resign(w http.ResponseWriter, r *http.Request) {
	now := db.FormatTime(time.Now())
	h.transition(w, r, "resign", models.StatusActive, models.StatusResigned, func(tx *sql.Tx, id string) error {
		_, err := tx.Exec(`UPDATE membership SET resigned_at = $1 WHERE id = $2`, now, id)
		return err
	})
}

// Remove handles POST /memberships/{id}/remove
func (h *MembershipHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveMembershipRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Reason == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "reason is required")
		return
	}

	now := db.FormatTime(time.Now())
	h.transition(w, r, "remove", models.StatusActive, models.StatusRemoved, func(tx *sql.Tx, id string) error {
		_, err := tx.Exec(`UPDATE membership SET removal_reason = $1, removed_at = $2 WHERE id = $3`,
			req.Reason, now, id)
		return err
	})
}

// transition moves a membership from one status to another, applying any
// extra writes in the same transaction. Statuses other than `from` conflict.
func (h *MembershipHandler) transition(w http.ResponseWriter, r *http.Request, action, from, to string, extra func(*sql.Tx, string) error) {
	membershipID := r.PathValue("id")
	if membershipID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "membership_id is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	m, err := loadMembership(tx, membershipID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Membership not found")
		return
	}
	if err != nil {
		slog.Error("failed to query membership", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if m.Status != from {
		middleware.ErrorResponse(w, http.StatusConflict, "Membership is not "+from)
		return
	}

	_, err = tx.Exec(`UPDATE membership SET status = $1, updated_at = $2 WHERE id = $3`,
		to, db.FormatTime(time.Now()), membershipID)
	if err != nil {
		slog.Error("failed to update membership", "error", err, "action", action)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action+" membership")
		return
	}

	if extra != nil {
		if err := extra(tx, membershipID); err != nil {
			slog.Error("failed to update membership metadata", "error", err, "action", action)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action+" membership")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action+" membership")
		return
	}

	slog.Info("membership "+to, "membership_id", membershipID, "committee_id", m.CommitteeID)

	middleware.JSONResponse(w, http.StatusOK, models.DecideMembershipResponse{
		MembershipID: membershipID,
		Status:       to,
	})
}

// Resubmit handles POST /memberships/{id}/resubmit
// Returns a decided (rejected/removed/resigned) membership to the SUBMITTED
// state after passing a fresh eligibility evaluation.
func (h *MembershipHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	membershipID := r.PathValue("id")
	if membershipID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "membership_id is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	m, err := loadMembership(tx, membershipID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Membership not found")
		return
	}
	if err != nil {
		slog.Error("failed to query membership", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	switch m.Status {
	case models.StatusRejected, models.StatusRemoved, models.StatusResigned:
	default:
		middleware.ErrorResponse(w, http.StatusConflict, "Only rejected, removed, or resigned memberships can be resubmitted")
		return
	}

	cfg, err := governance.Config(tx)
	if err != nil {
		slog.Error("failed to load governance config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, err := eligibility.Validate(tx, cfg, m.VoterID, m.CommitteeID, m.TermID, eligibility.Options{})
	if err != nil {
		slog.Error("eligibility evaluation failed", "error", err, "membership_id", membershipID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Eligibility evaluation failed")
		return
	}
	if !res.Eligible {
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, res)
		return
	}

	_, err = tx.Exec(`
		UPDATE membership SET status = $1, seat_number = NULL, updated_at = $2 WHERE id = $3
	`, models.StatusSubmitted, db.FormatTime(time.Now()), membershipID)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Voter already has a pending or active membership in this committee")
			return
		}
		slog.Error("failed to resubmit membership", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to resubmit membership")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to resubmit membership")
		return
	}

	slog.Info("membership resubmitted", "membership_id", membershipID, "committee_id", m.CommitteeID)

	middleware.JSONResponse(w, http.StatusOK, models.DecideMembershipResponse{
		MembershipID: membershipID,
		Status:       models.StatusSubmitted,
	})
}

// PetitionOutcome handles POST /memberships/petition-outcome
// Records the result of a designating petition: a win seats the voter as a
// PETITIONED member; a tie or loss is recorded with no seat.
func (h *MembershipHandler) PetitionOutcome(w http.ResponseWriter, r *http.Request) {
	var req models.PetitionOutcomeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}
	if req.CommitteeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committee_id is required")
		return
	}

	var status string
	switch req.Outcome {
	case models.OutcomeWon:
		status = models.StatusActive
	case models.OutcomeTie:
		status = models.StatusPetitionedTie
	case models.OutcomeLost:
		status = models.StatusPetitionedLost
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "outcome must be WON, TIE, or LOST")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	cfg, err := governance.Config(tx)
	if err != nil {
		slog.Error("failed to load governance config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	termID, err := committeeTerm(tx, req.CommitteeID)
	if err != nil {
		if err == errCommitteeNotFound {
			middleware.ErrorResponse(w, http.StatusNotFound, "Committee not found")
			return
		}
		slog.Error("failed to query committee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var seatNumber sql.NullInt64
	if status == models.StatusActive {
		res, err := eligibility.Validate(tx, cfg, req.VoterID, req.CommitteeID, termID, eligibility.Options{})
		if err != nil {
			slog.Error("eligibility evaluation failed", "error", err, "voter_id", req.VoterID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Eligibility evaluation failed")
			return
		}
		if !res.Eligible {
			middleware.JSONResponse(w, http.StatusUnprocessableEntity, res)
			return
		}

		n, err := seats.NextAvailableSeat(tx, cfg, req.CommitteeID, termID)
		if err != nil {
			var capErr *seats.CapacityError
			if errors.As(err, &capErr) {
				middleware.ErrorResponse(w, http.StatusConflict, capErr.Error())
				return
			}
			slog.Error("seat allocation failed", "error", err, "voter_id", req.VoterID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Seat allocation failed")
			return
		}
		seatNumber = sql.NullInt64{Int64: int64(n), Valid: true}
	}

	membershipID := uuid.NewString()
	now := db.FormatTime(time.Now())
	_, err = tx.Exec(`
		INSERT INTO membership (id, voter_id, committee_id, term_id, seat_number, status,
		                        membership_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, membershipID, req.VoterID, req.CommitteeID, termID, seatNumber, status,
		models.TypePetitioned, now, now)

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Conflicting membership or seat claim; retry")
			return
		}
		slog.Error("failed to insert membership", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record petition outcome")
		return
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Conflicting membership or seat claim; retry")
			return
		}
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record petition outcome")
		return
	}

	slog.Info("petition outcome recorded", "membership_id", membershipID,
		"voter_id", req.VoterID, "outcome", req.Outcome, "status", status)

	resp := models.DecideMembershipResponse{
		MembershipID: membershipID,
		Status:       status,
	}
	if seatNumber.Valid {
		n := int(seatNumber.Int64)
		resp.SeatNumber = &n
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// CheckEligibility handles POST /eligibility/check
// A read-only dry run of the evaluator; always returns the full verdict.
func (h *MembershipHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req models.EligibilityCheckRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}
	if req.CommitteeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committee_id is required")
		return
	}

	cfg, err := governance.Config(h.db)
	if err != nil {
		slog.Error("failed to load governance config", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	termID, err := committeeTerm(h.db, req.CommitteeID)
	if err != nil {
		if err == errCommitteeNotFound {
			middleware.ErrorResponse(w, http.StatusNotFound, "Committee not found")
			return
		}
		slog.Error("failed to query committee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	res, err := eligibility.Validate(h.db, cfg, req.VoterID, req.CommitteeID, termID, eligibility.Options{
		ForceAdd:       req.ForceAdd,
		OverrideReason: req.OverrideReason,
	})
	if err != nil {
		slog.Error("eligibility evaluation failed", "error", err, "voter_id", req.VoterID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Eligibility evaluation failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, res)
}
