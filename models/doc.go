/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateVoterRequest: registration_id, party, assembly_district, entry pair
  - CreateTermRequest: name
  - CreateCommitteeRequest: city_town, legislative_district, election_district, term_id
  - SetCommitteeWeightRequest: weight (decimal string or null)
  - SetSeatPetitionedRequest: is_petitioned
  - AddMembershipRequest: voter_id, committee_id, force_add, override_reason
  - EligibilityCheckRequest: same shape as AddMembershipRequest
  - RemoveMembershipRequest: reason
  - PetitionOutcomeRequest: voter_id, committee_id, outcome

# Response Types

Types for JSON responses:

  - CreateVoterResponse: registration_id
  - CreateTermResponse: term_id
  - CreateCommitteeResponse: committee_id, seats_created
  - AddMembershipResponse: membership_id, status
  - DecideMembershipResponse: membership_id, status, seat_number
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Voter: registered voter with party, assembly district, import version pair
  - Term: bounded committee-election cycle; exactly one is active
  - Committee: LTED geographic key plus term and optional lted_weight
  - Seat: numbered slot within a committee+term (is_petitioned, weight)
  - Membership: voter-committee join with status and seat occupancy
  - LtedCrosswalk: maps an LTED key to its assembly district
  - GovernanceConfig: jurisdiction-wide eligibility and capacity settings

Decimal-valued fields (lted_weight, seat weight) use shopspring/decimal so
weight sums and divisions are exact.

# Constants

Membership statuses:

	SUBMITTED, ACTIVE, REJECTED, REMOVED, RESIGNED,
	PETITIONED_TIE, PETITIONED_LOST

Membership types:

	APPOINTED, PETITIONED

Eligibility hard-stop reasons:

	NOT_REGISTERED, PARTY_MISMATCH, ASSEMBLY_DISTRICT_MISMATCH,
	CAPACITY, ALREADY_IN_ANOTHER_COMMITTEE

Warning codes:

	POSSIBLY_INACTIVE, RECENT_RESIGNATION, PENDING_IN_ANOTHER_COMMITTEE
*/
package models
