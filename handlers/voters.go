package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"committeeroster/cliparse"
	"committeeroster/db"
	"committeeroster/middleware"
	"committeeroster/models"
)

type VoterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoterHandler(db *sql.DB, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{db: db, cfg: cfg}
}

// Create handles POST /voters
// Registers a voter row directly; production voter records arrive through
// the import pipeline, this endpoint covers seeding and testing.
func (h *VoterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.RegistrationID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "registration_id is required")
		return
	}
	if req.Party == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "party is required")
		return
	}
	if req.AssemblyDistrict == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "assembly_district is required")
		return
	}

	_, err := h.db.Exec(`
		INSERT INTO voter (registration_id, first_name, last_name, party, assembly_district,
		                   latest_entry_year, latest_entry_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, req.RegistrationID, req.FirstName, req.LastName, req.Party, req.AssemblyDistrict,
		req.LatestEntryYear, req.LatestEntryNumber, db.FormatTime(time.Now()))

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Voter already registered")
			return
		}
		slog.Error("failed to insert voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	slog.Info("voter registered", "registration_id", req.RegistrationID, "party", req.Party)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateVoterResponse{
		RegistrationID: req.RegistrationID,
	})
}
