package router

import (
	"database/sql"
	"net/http"

	"committeeroster/cliparse"
	"committeeroster/handlers"
	"committeeroster/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voterHandler := handlers.NewVoterHandler(db, cfg)
	termHandler := handlers.NewTermHandler(db, cfg)
	committeeHandler := handlers.NewCommitteeHandler(db, cfg)
	membershipHandler := handlers.NewMembershipHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Reference data
	mux.HandleFunc("POST /voters", middleware.WithLogging(voterHandler.Create))
	mux.HandleFunc("POST /terms", middleware.WithLogging(termHandler.Create))
	mux.HandleFunc("POST /terms/{id}/activate", middleware.WithLogging(termHandler.Activate))

	// Committee administration
	mux.HandleFunc("POST /committees", middleware.WithLogging(committeeHandler.Create))
	mux.HandleFunc("PUT /committees/{id}/weight", middleware.WithLogging(committeeHandler.SetWeight))
	mux.HandleFunc("PUT /committees/{id}/seats/{n}/petitioned", middleware.WithLogging(committeeHandler.SetSeatPetitioned))
	mux.HandleFunc("GET /committees/{id}/designation-weight", middleware.WithLogging(committeeHandler.GetDesignationWeight))

	// Membership workflow
	mux.HandleFunc("POST /memberships", middleware.WithLogging(membershipHandler.Add))
	mux.HandleFunc("POST /memberships/{id}/confirm", middleware.WithLogging(membershipHandler.Confirm))
	mux.HandleFunc("POST /memberships/{id}/reject", middleware.WithLogging(membershipHandler.Reject))
	mux.HandleFunc("POST /memberships/{id}/resubmit", middleware.WithLogging(membershipHandler.Resubmit))
	mux.HandleFunc("POST /memberships/{id}/resign", middleware.WithLogging(membershipHandler.Resign))
	mux.HandleFunc("POST /memberships/{id}/remove", middleware.WithLogging(membershipHandler.Remove))
	mux.HandleFunc("POST /memberships/petition-outcome", middleware.WithLogging(membershipHandler.PetitionOutcome))

	// Eligibility dry run
	mux.HandleFunc("POST /eligibility/check", middleware.WithLogging(membershipHandler.CheckEligibility))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("committee roster API v1"))
	})

	return mux
}
