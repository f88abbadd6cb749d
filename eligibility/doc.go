/*
Package eligibility decides whether a voter may join a committee seat.

# Evaluation

Validate runs a fixed sequence of hard-stop checks and advisory warnings for
a (voter, committee, term) triple and returns a structured Result:

	res, err := eligibility.Validate(tx, cfg, voterID, committeeID, termID, opts)

Hard stops, in evaluation order:

  - NOT_REGISTERED: voter record does not exist (reported alone; no other
    check can run meaningfully without voter fields)
  - PARTY_MISMATCH: voter's party differs from the required party code
  - ASSEMBLY_DISTRICT_MISMATCH: committee's crosswalk assembly district
    differs from the voter's (only when the config requires the match; a
    missing crosswalk entry fails closed and counts as a mismatch)
  - CAPACITY: active membership count has reached max_seats_per_lted
  - ALREADY_IN_ANOTHER_COMMITTEE: voter holds an ACTIVE membership in a
    different committee

Checks accumulate rather than short-circuit so the caller always sees the
complete reason set.

Warnings never block eligibility:

  - POSSIBLY_INACTIVE: voter's import version pair predates the latest import
  - RECENT_RESIGNATION: a resignation within the last 90 days
  - PENDING_IN_ANOTHER_COMMITTEE: a SUBMITTED membership elsewhere

# Overrides

A forced add (Options.ForceAdd with a non-empty OverrideReason) bypasses
every hard stop the governance config marks overridable. The result becomes
eligible only when all hard stops were bypassed; one non-overridable reason
keeps the full hard-stop set in place. ForceAdd without a reason sets
ValidationError on the result instead of failing the call.

# Totality

Validate never fails for a missing voter; that is the NOT_REGISTERED verdict.
Errors are reserved for database failures and ErrCommitteeNotFound.
*/
package eligibility
