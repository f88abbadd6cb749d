/*
Package handlers contains HTTP request handlers for the committee roster API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - VoterHandler: voter registration (seeding/testing surface)
  - TermHandler: term creation and activation
  - CommitteeHandler: committees, seat flags, weights, designation reports
  - MembershipHandler: the membership decision workflow

Handlers are created via constructor functions that accept *sql.DB and Config:

	membershipHandler := handlers.NewMembershipHandler(db, cfg)

# Membership Workflow

Memberships progress through a status lifecycle:

	POST /memberships                     → Add (evaluator; SUBMITTED, no seat)
	POST /memberships/{id}/confirm        → Confirm (re-validate + allocate seat; ACTIVE)
	POST /memberships/{id}/reject         → Reject (SUBMITTED → REJECTED)
	POST /memberships/{id}/resubmit       → Resubmit (decided → SUBMITTED, re-validated)
	POST /memberships/{id}/resign         → Resign (ACTIVE → RESIGNED)
	POST /memberships/{id}/remove         → Remove (ACTIVE → REMOVED, reason required)
	POST /memberships/petition-outcome    → PetitionOutcome (WON/TIE/LOST)
	POST /eligibility/check               → CheckEligibility (dry run)

Every mutating workflow runs evaluator → allocator → persist inside one
transaction, and re-validates eligibility at decision time rather than
trusting the request-time check: two submissions can both pass before either
commits.

# Status Code Mapping

  - 422 Unprocessable Entity: ineligible; body is the full eligibility
    verdict (hard stops, warnings, validation error)
  - 409 Conflict: capacity exhausted, seat race lost, duplicate live
    membership, or wrong lifecycle state
  - 404 Not Found: unknown committee, membership, term, or seat
  - 500 Internal Server Error: missing governance config or active term,
    duplicate-occupancy integrity violations, database failures

# Committee Administration

	POST /committees                              → Create (+ seat materialization)
	PUT  /committees/{id}/weight                  → SetWeight (+ atomic seat recompute)
	PUT  /committees/{id}/seats/{n}/petitioned    → SetSeatPetitioned
	GET  /committees/{id}/designation-weight      → GetDesignationWeight
*/
package handlers
