package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"committeeroster/cliparse"
	"committeeroster/db"
	"committeeroster/middleware"
	"committeeroster/models"
)

type TermHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewTermHandler(db *sql.DB, cfg cliparse.Config) *TermHandler {
	return &TermHandler{db: db, cfg: cfg}
}

// Create handles POST /terms
func (h *TermHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTermRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	termID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO term (id, name, is_active, created_at)
		VALUES ($1, $2, FALSE, $3)
	`, termID, req.Name, db.FormatTime(time.Now()))

	if err != nil {
		slog.Error("failed to insert term", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create term")
		return
	}

	slog.Info("term created", "term_id", termID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateTermResponse{
		TermID: termID,
	})
}

// Activate handles POST /terms/{id}/activate
// Exactly one term is active at a time; activation deactivates the previous
// term in the same transaction.
func (h *TermHandler) Activate(w http.ResponseWriter, r *http.Request) {
	termID := r.PathValue("id")
	if termID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "term_id is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Deactivate first; the partial unique index allows only one active row.
	_, err = tx.Exec(`UPDATE term SET is_active = FALSE WHERE is_active`)
	if err != nil {
		slog.Error("failed to deactivate terms", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to activate term")
		return
	}

	result, err := tx.Exec(`UPDATE term SET is_active = TRUE WHERE id = $1`, termID)
	if err != nil {
		slog.Error("failed to activate term", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to activate term")
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to read rows affected", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to activate term")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Term not found")
		return
	}

	var name string
	if err := tx.QueryRow(`SELECT name FROM term WHERE id = $1`, termID).Scan(&name); err != nil {
		slog.Error("failed to query term", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to activate term")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to activate term")
		return
	}

	slog.Info("term activated", "term_id", termID, "name", name)

	middleware.JSONResponse(w, http.StatusOK, models.Term{ID: termID, Name: name, IsActive: true})
}
