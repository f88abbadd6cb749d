package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Membership status constants
const (
	StatusSubmitted      = "SUBMITTED"
	StatusActive         = "ACTIVE"
	StatusRejected       = "REJECTED"
	StatusRemoved        = "REMOVED"
	StatusResigned       = "RESIGNED"
	StatusPetitionedTie  = "PETITIONED_TIE"
	StatusPetitionedLost = "PETITIONED_LOST"
)

// Membership type constants
const (
	TypeAppointed  = "APPOINTED"
	TypePetitioned = "PETITIONED"
)

// Petition outcome constants
const (
	OutcomeWon  = "WON"
	OutcomeTie  = "TIE"
	OutcomeLost = "LOST"
)

// Reason is an eligibility hard-stop code.
type Reason string

const (
	ReasonNotRegistered            Reason = "NOT_REGISTERED"
	ReasonPartyMismatch            Reason = "PARTY_MISMATCH"
	ReasonAssemblyDistrictMismatch Reason = "ASSEMBLY_DISTRICT_MISMATCH"
	ReasonCapacity                 Reason = "CAPACITY"
	ReasonAlreadyInCommittee       Reason = "ALREADY_IN_ANOTHER_COMMITTEE"
)

// Warning codes (advisory, never block eligibility)
const (
	WarnPossiblyInactive  = "POSSIBLY_INACTIVE"
	WarnRecentResignation = "RECENT_RESIGNATION"
	WarnPendingElsewhere  = "PENDING_IN_ANOTHER_COMMITTEE"
)

// Request types

type CreateVoterRequest struct {
	RegistrationID    string `json:"registration_id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Party             string `json:"party"`
	AssemblyDistrict  string `json:"assembly_district"`
	LatestEntryYear   int    `json:"latest_entry_year"`
	LatestEntryNumber int    `json:"latest_entry_number"`
}

type CreateTermRequest struct {
	Name string `json:"name"`
}

type CreateCommitteeRequest struct {
	CityTown            string `json:"city_town"`
	LegislativeDistrict int    `json:"legislative_district"`
	ElectionDistrict    int    `json:"election_district"`
	TermID              string `json:"term_id,omitempty"` // defaults to the active term
}

// SetCommitteeWeightRequest carries the new LTED weight as a decimal string,
// or null to clear it. Seat weights are recomputed in the same transaction.
type SetCommitteeWeightRequest struct {
	Weight *string `json:"weight"`
}

type SetSeatPetitionedRequest struct {
	IsPetitioned bool `json:"is_petitioned"`
}

type AddMembershipRequest struct {
	VoterID        string `json:"voter_id"`
	CommitteeID    string `json:"committee_id"`
	ForceAdd       bool   `json:"force_add,omitempty"`
	OverrideReason string `json:"override_reason,omitempty"`
}

type EligibilityCheckRequest struct {
	VoterID        string `json:"voter_id"`
	CommitteeID    string `json:"committee_id"`
	ForceAdd       bool   `json:"force_add,omitempty"`
	OverrideReason string `json:"override_reason,omitempty"`
}

type RemoveMembershipRequest struct {
	Reason string `json:"reason"`
}

type PetitionOutcomeRequest struct {
	VoterID     string `json:"voter_id"`
	CommitteeID string `json:"committee_id"`
	Outcome     string `json:"outcome"` // WON, TIE, or LOST
}

// Response types

type CreateVoterResponse struct {
	RegistrationID string `json:"registration_id"`
}

type CreateTermResponse struct {
	TermID string `json:"term_id"`
}

type CreateCommitteeResponse struct {
	CommitteeID  string `json:"committee_id"`
	SeatsCreated int    `json:"seats_created"`
}

type AddMembershipResponse struct {
	MembershipID string `json:"membership_id"`
	Status       string `json:"status"`
}

type DecideMembershipResponse struct {
	MembershipID string `json:"membership_id"`
	Status       string `json:"status"`
	SeatNumber   *int   `json:"seat_number,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Voter struct {
	RegistrationID    string `json:"registration_id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Party             string `json:"party"`
	AssemblyDistrict  string `json:"assembly_district"`
	LatestEntryYear   int    `json:"latest_entry_year"`
	LatestEntryNumber int    `json:"latest_entry_number"`
}

type Term struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type Committee struct {
	ID                  string           `json:"id"`
	CityTown            string           `json:"city_town"`
	LegislativeDistrict int              `json:"legislative_district"`
	ElectionDistrict    int              `json:"election_district"`
	TermID              string           `json:"term_id"`
	LtedWeight          *decimal.Decimal `json:"lted_weight,omitempty"`
}

type Seat struct {
	CommitteeID  string           `json:"committee_id"`
	TermID       string           `json:"term_id"`
	SeatNumber   int              `json:"seat_number"`
	IsPetitioned bool             `json:"is_petitioned"`
	Weight       *decimal.Decimal `json:"weight,omitempty"`
}

type Membership struct {
	ID             string     `json:"id"`
	VoterID        string     `json:"voter_id"`
	CommitteeID    string     `json:"committee_id"`
	TermID         string     `json:"term_id"`
	SeatNumber     *int       `json:"seat_number,omitempty"`
	Status         string     `json:"status"`
	MembershipType string     `json:"membership_type"`
	OverrideReason *string    `json:"override_reason,omitempty"`
	RemovalReason  *string    `json:"removal_reason,omitempty"`
	RemovedAt      *time.Time `json:"removed_at,omitempty"`
	ResignedAt     *time.Time `json:"resigned_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type LtedCrosswalk struct {
	CityTown            string `json:"city_town"`
	LegislativeDistrict int    `json:"legislative_district"`
	ElectionDistrict    int    `json:"election_district"`
	AssemblyDistrict    string `json:"assembly_district"`
}

// GovernanceConfig is the single active jurisdiction-wide configuration row.
// Read-only from the engine's perspective; administered elsewhere.
type GovernanceConfig struct {
	ID                           string   `json:"id"`
	RequiredPartyCode            string   `json:"required_party_code"`
	RequireAssemblyDistrictMatch bool     `json:"require_assembly_district_match"`
	MaxSeatsPerLted              int      `json:"max_seats_per_lted"`
	NonOverridableReasons        []Reason `json:"non_overridable_reasons"`
}

// IsOverridable reports whether a hard stop may be bypassed by a forced add.
func (c GovernanceConfig) IsOverridable(r Reason) bool {
	for _, nr := range c.NonOverridableReasons {
		if nr == r {
			return false
		}
	}
	return true
}

// ParseReasonList decodes the comma-separated reason list stored on the
// governance_config row. Empty input yields an empty set.
func ParseReasonList(s string) []Reason {
	var out []Reason
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, Reason(part))
		}
	}
	return out
}

// JoinReasonList is the inverse of ParseReasonList.
func JoinReasonList(reasons []Reason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
