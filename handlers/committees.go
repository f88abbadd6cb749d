package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"committeeroster/cliparse"
	"committeeroster/db"
	"committeeroster/governance"
	"committeeroster/middleware"
	"committeeroster/models"
	"committeeroster/seats"
	"committeeroster/weights"
)

type CommitteeHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCommitteeHandler(db *sql.DB, cfg cliparse.Config) *CommitteeHandler {
	return &CommitteeHandler{db: db, cfg: cfg}
}

// Create handles POST /committees
// Creates the committee row and materializes its seat table in one
// transaction.
func (h *CommitteeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCommitteeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CityTown == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "city_town is required")
		return
	}
	if req.LegislativeDistrict <= 0 || req.ElectionDistrict <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "legislative_district and election_district must be positive")
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

	termID := req.TermID
	if termID == "" {
		term, err := governance.ActiveTerm(tx)
		if err != nil {
			slog.Error("failed to load active term", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		termID = term.ID
	}

	committeeID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO committee (id, city_town, legislative_district, election_district, term_id, lted_weight, created_at)
		VALUES ($1, $2, $3, $4, $5, NULL, $6)
	`, committeeID, req.CityTown, req.LegislativeDistrict, req.ElectionDistrict,
		termID, db.FormatTime(time.Now()))

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Committee already exists for this LTED and term")
			return
		}
		slog.Error("failed to insert committee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create committee")
		return
	}

	created, err := seats.EnsureSeats(tx, cfg, committeeID, termID)
	if err != nil {
		slog.Error("failed to materialize seats", "error", err, "committee_id", committeeID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create seats")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create committee")
		return
	}

	slog.Info("committee created", "committee_id", committeeID,
		"city_town", req.CityTown, "seats_created", created)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateCommitteeResponse{
		CommitteeID:  committeeID,
		SeatsCreated: created,
	})
}

// SetWeight handles PUT /committees/{id}/weight
// Updates lted_weight and recomputes every dependent seat weight in one
// transaction; a failure partway rolls back the lted_weight change too.
func (h *CommitteeHandler) SetWeight(w http.ResponseWriter, r *http.Request) {
	committeeID := r.PathValue("id")
	if committeeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committee_id is required")
		return
	}

	var req models.SetCommitteeWeightRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var weightText sql.NullString
	if req.Weight != nil {
		parsed, err := decimal.NewFromString(*req.Weight)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "weight must be a decimal number")
			return
		}
		if parsed.IsNegative() {
			middleware.ErrorResponse(w, http.StatusBadRequest, "weight must not be negative")
			return
		}
		weightText = sql.NullString{String: parsed.String(), Valid: true}
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

	result, err := tx.Exec(`UPDATE committee SET lted_weight = $1 WHERE id = $2`,
		weightText, committeeID)
	if err != nil {
		slog.Error("failed to update lted_weight", "error", err, "committee_id", committeeID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update weight")
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update weight")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Committee not found")
		return
	}

	if err := seats.RecomputeSeatWeights(tx, cfg, committeeID); err != nil {
		slog.Error("failed to recompute seat weights", "error", err, "committee_id", committeeID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to recompute seat weights")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update weight")
		return
	}

	slog.Info("committee weight updated", "committee_id", committeeID,
		"weight", weightText.String, "cleared", !weightText.Valid)

	w.WriteHeader(http.StatusNoContent)
}

// SetSeatPetitioned handles PUT /committees/{id}/seats/{n}/petitioned
func (h *CommitteeHandler) SetSeatPetitioned(w http.ResponseWriter, r *http.Request) {
	committeeID := r.PathValue("id")
	if committeeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committee_id is required")
		return
	}

	seatNumber, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || seatNumber < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "seat number must be a positive integer")
		return
	}

	var req models.SetSeatPetitionedRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.db.Exec(`
		UPDATE seat SET is_petitioned = $1 WHERE committee_id = $2 AND seat_number = $3
	`, req.IsPetitioned, committeeID, seatNumber)
	if err != nil {
		slog.Error("failed to update seat", "error", err, "committee_id", committeeID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update seat")
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update seat")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Seat not found")
		return
	}

	slog.Info("seat petition flag updated", "committee_id", committeeID,
		"seat_number", seatNumber, "is_petitioned", req.IsPetitioned)

	w.WriteHeader(http.StatusNoContent)
}

// GetDesignationWeight handles GET /committees/{id}/designation-weight
// Pure read path; term_id query parameter defaults to the active term.
func (h *CommitteeHandler) GetDesignationWeight(w http.ResponseWriter, r *http.Request) {
	committeeID := r.PathValue("id")
	if committeeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committee_id is required")
		return
	}

	if _, err := committeeTerm(h.db, committeeID); err != nil {
		if err == errCommitteeNotFound {
			middleware.ErrorResponse(w, http.StatusNotFound, "Committee not found")
			return
		}
		slog.Error("failed to query committee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	summary, err := weights.Calculate(h.db, committeeID, r.URL.Query().Get("term_id"))
	if err != nil {
		var dup *weights.DuplicateOccupancyError
		if errors.As(err, &dup) {
			slog.Error("duplicate seat occupancy detected", "error", err,
				"committee_id", committeeID, "seat_number", dup.SeatNumber)
			middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		if errors.Is(err, governance.ErrNoActiveTerm) {
			middleware.ErrorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		slog.Error("failed to calculate designation weight", "error", err, "committee_id", committeeID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to calculate designation weight")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}
