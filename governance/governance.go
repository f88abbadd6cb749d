package governance

import (
	"database/sql"
	"errors"
	"fmt"

	"committeeroster/db"
	"committeeroster/models"
)

var (
	// ErrNoConfig means no active governance configuration row exists.
	// Eligibility and capacity cannot be evaluated without one, so callers
	// must propagate this rather than defaulting.
	ErrNoConfig = errors.New("no active governance configuration")

	// ErrNoActiveTerm means no term is marked active.
	ErrNoActiveTerm = errors.New("no active term")
)

// Config returns the single active governance configuration row.
func Config(q db.Queryer) (models.GovernanceConfig, error) {
	var cfg models.GovernanceConfig
	var reasons string
	err := q.QueryRow(`
		SELECT id, required_party_code, require_ad_match, max_seats_per_lted, non_overridable_reasons
		FROM governance_config
		WHERE is_active
	`).Scan(&cfg.ID, &cfg.RequiredPartyCode, &cfg.RequireAssemblyDistrictMatch,
		&cfg.MaxSeatsPerLted, &reasons)

	if err == sql.ErrNoRows {
		return models.GovernanceConfig{}, ErrNoConfig
	}
	if err != nil {
		return models.GovernanceConfig{}, fmt.Errorf("failed to load governance config: %w", err)
	}

	cfg.NonOverridableReasons = models.ParseReasonList(reasons)
	return cfg, nil
}

// ActiveTerm returns the single active term. Seat and membership operations
// default to it when no term is given explicitly.
func ActiveTerm(q db.Queryer) (models.Term, error) {
	var t models.Term
	err := q.QueryRow(`
		SELECT id, name, is_active FROM term WHERE is_active
	`).Scan(&t.ID, &t.Name, &t.IsActive)

	if err == sql.ErrNoRows {
		return models.Term{}, ErrNoActiveTerm
	}
	if err != nil {
		return models.Term{}, fmt.Errorf("failed to load active term: %w", err)
	}

	return t, nil
}
