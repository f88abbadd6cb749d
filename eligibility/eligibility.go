package eligibility

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"committeeroster/db"
	"committeeroster/models"
)

// ErrCommitteeNotFound is returned when the committee under evaluation does
// not exist. Unlike a missing voter (which is the NOT_REGISTERED hard stop),
// a missing committee is a caller error, not an eligibility outcome.
var ErrCommitteeNotFound = errors.New("committee not found")

// recentResignationWindow is how far back a resignation still warrants a
// RECENT_RESIGNATION warning.
const recentResignationWindow = 90 * 24 * time.Hour

// Options modifies an eligibility evaluation.
type Options struct {
	// ForceAdd requests that overridable hard stops be bypassed.
	// OverrideReason is mandatory when ForceAdd is set.
	ForceAdd       bool
	OverrideReason string
}

// Warning is an advisory note that never blocks eligibility.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the structured verdict of an eligibility evaluation.
type Result struct {
	Eligible        bool            `json:"eligible"`
	HardStops       []models.Reason `json:"hard_stops"`
	Warnings        []Warning       `json:"warnings"`
	BypassedReasons []models.Reason `json:"bypassed_reasons,omitempty"`
	ValidationError string          `json:"validation_error,omitempty"`
}

// Validate decides whether a voter may join a committee seat for a term.
//
// All hard-stop checks run and accumulate (no short-circuiting) so callers
// see the complete reason set; the one exception is NOT_REGISTERED, which is
// reported alone because the remaining checks need voter fields. Warnings
// are always additive and never affect the verdict.
//
// Validate is total over its domain inputs: a non-existent voter yields an
// ineligible Result, not an error. Errors are reserved for infrastructure
// failures and a missing committee (ErrCommitteeNotFound).
func Validate(q db.Queryer, cfg models.GovernanceConfig, voterID, committeeID, termID string, opts Options) (Result, error) {
	res := Result{
		HardStops: []models.Reason{},
		Warnings:  []Warning{},
	}

	// A forced add without a stated reason is a validation error; the
	// evaluation still runs so the caller sees the full reason set, but no
	// override is applied and the result stays ineligible.
	if opts.ForceAdd && strings.TrimSpace(opts.OverrideReason) == "" {
		res.ValidationError = "override_reason is required when force_add is set"
	}

	committee, err := loadCommittee(q, committeeID)
	if err != nil {
		return Result{}, err
	}

	voter, found, err := loadVoter(q, voterID)
	if err != nil {
		return Result{}, err
	}
	if !found {
		res.HardStops = append(res.HardStops, models.ReasonNotRegistered)
		applyOverride(&res, cfg, opts)
		return res, nil
	}

	// Ordered hard-stop rules. Each runs unconditionally and appends its
	// reason on failure; adding a rule is a one-line addition here.
	checks := []struct {
		reason models.Reason
		failed func() (bool, error)
	}{
		{models.ReasonPartyMismatch, func() (bool, error) {
			return voter.Party != cfg.RequiredPartyCode, nil
		}},
		{models.ReasonAssemblyDistrictMismatch, func() (bool, error) {
			if !cfg.RequireAssemblyDistrictMatch {
				return false, nil
			}
			ad, found, err := crosswalkDistrict(q, committee)
			if err != nil {
				return false, err
			}
			// Missing crosswalk entry fails closed.
			if !found {
				return true, nil
			}
			return ad != voter.AssemblyDistrict, nil
		}},
		{models.ReasonCapacity, func() (bool, error) {
			count, err := activeMembershipCount(q, committeeID, termID)
			if err != nil {
				return false, err
			}
			return count >= cfg.MaxSeatsPerLted, nil
		}},
		{models.ReasonAlreadyInCommittee, func() (bool, error) {
			return hasMembershipElsewhere(q, voterID, committeeID, models.StatusActive)
		}},
	}

	for _, c := range checks {
		failed, err := c.failed()
		if err != nil {
			return Result{}, fmt.Errorf("eligibility check %s: %w", c.reason, err)
		}
		if failed {
			res.HardStops = append(res.HardStops, c.reason)
		}
	}

	if err := appendWarnings(q, &res, voter, voterID, committeeID); err != nil {
		return Result{}, err
	}

	applyOverride(&res, cfg, opts)
	return res, nil
}

// applyOverride finalizes the verdict, bypassing overridable hard stops when
// a valid forced add was requested. Eligible becomes true only when every
// hard stop was overridable; a single non-overridable reason leaves the full
// hard-stop set in place with nothing bypassed.
func applyOverride(res *Result, cfg models.GovernanceConfig, opts Options) {
	if opts.ForceAdd && res.ValidationError == "" && len(res.HardStops) > 0 {
		allOverridable := true
		for _, r := range res.HardStops {
			if !cfg.IsOverridable(r) {
				allOverridable = false
				break
			}
		}
		if allOverridable {
			res.BypassedReasons = res.HardStops
			res.HardStops = []models.Reason{}
		}
	}

	res.Eligible = len(res.HardStops) == 0 && res.ValidationError == ""
}

type committeeRow struct {
	cityTown            string
	legislativeDistrict int
	electionDistrict    int
}

func loadCommittee(q db.Queryer, committeeID string) (committeeRow, error) {
	var c committeeRow
	err := q.QueryRow(`
		SELECT city_town, legislative_district, election_district
		FROM committee
		WHERE id = $1
	`, committeeID).Scan(&c.cityTown, &c.legislativeDistrict, &c.electionDistrict)

	if err == sql.ErrNoRows {
		return committeeRow{}, ErrCommitteeNotFound
	}
	if err != nil {
		return committeeRow{}, fmt.Errorf("failed to load committee: %w", err)
	}
	return c, nil
}

type voterRow struct {
	Party             string
	AssemblyDistrict  string
	LatestEntryYear   int
	LatestEntryNumber int
}

func loadVoter(q db.Queryer, voterID string) (voterRow, bool, error) {
	var v voterRow
	err := q.QueryRow(`
		SELECT party, assembly_district, latest_entry_year, latest_entry_number
		FROM voter
		WHERE registration_id = $1
	`, voterID).Scan(&v.Party, &v.AssemblyDistrict, &v.LatestEntryYear, &v.LatestEntryNumber)

	if err == sql.ErrNoRows {
		return voterRow{}, false, nil
	}
	if err != nil {
		return voterRow{}, false, fmt.Errorf("failed to load voter: %w", err)
	}
	return v, true, nil
}

func crosswalkDistrict(q db.Queryer, c committeeRow) (string, bool, error) {
	var ad string
	err := q.QueryRow(`
		SELECT assembly_district
		FROM lted_crosswalk
		WHERE city_town = $1 AND legislative_district = $2 AND election_district = $3
	`, c.cityTown, c.legislativeDistrict, c.electionDistrict).Scan(&ad)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load crosswalk: %w", err)
	}
	return ad, true, nil
}

func activeMembershipCount(q db.Queryer, committeeID, termID string) (int, error) {
	var count int
	err := q.QueryRow(`
		SELECT COUNT(*) FROM membership
		WHERE committee_id = $1 AND term_id = $2 AND status = 'ACTIVE'
	`, committeeID, termID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// hasMembershipElsewhere reports whether the voter holds a membership with
// the given status in any committee other than committeeID.
func hasMembershipElsewhere(q db.Queryer, voterID, committeeID, status string) (bool, error) {
	var exists bool
	err := q.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM membership
			WHERE voter_id = $1 AND committee_id <> $2 AND status = $3
		)
	`, voterID, committeeID, status).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func appendWarnings(q db.Queryer, res *Result, voter voterRow, voterID, committeeID string) error {
	// POSSIBLY_INACTIVE: the voter's import version pair is older than the
	// newest pair across all voters (year first, then entry number).
	var maxYear, maxNum int
	err := q.QueryRow(`
		SELECT latest_entry_year, latest_entry_number
		FROM voter
		ORDER BY latest_entry_year DESC, latest_entry_number DESC
		LIMIT 1
	`).Scan(&maxYear, &maxNum)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to load max voter file entry: %w", err)
	}
	if err == nil {
		older := voter.LatestEntryYear < maxYear ||
			(voter.LatestEntryYear == maxYear && voter.LatestEntryNumber < maxNum)
		if older {
			res.Warnings = append(res.Warnings, Warning{
				Code: models.WarnPossiblyInactive,
				Message: fmt.Sprintf("voter file entry %d-%d predates the most recent import %d-%d; the record may be stale",
					voter.LatestEntryYear, voter.LatestEntryNumber, maxYear, maxNum),
			})
		}
	}

	// RECENT_RESIGNATION: any resignation within the window.
	var resignedAtText sql.NullString
	err = q.QueryRow(`
		SELECT resigned_at FROM membership
		WHERE voter_id = $1 AND status = 'RESIGNED' AND resigned_at IS NOT NULL
		ORDER BY resigned_at DESC
		LIMIT 1
	`, voterID).Scan(&resignedAtText)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to load resignations: %w", err)
	}
	if err == nil && resignedAtText.Valid {
		resignedAt, err := db.ParseTime(resignedAtText.String)
		if err != nil {
			return err
		}
		if time.Since(resignedAt) < recentResignationWindow {
			res.Warnings = append(res.Warnings, Warning{
				Code:    models.WarnRecentResignation,
				Message: "resigned from a committee " + humanize.Time(resignedAt),
			})
		}
	}

	// PENDING_IN_ANOTHER_COMMITTEE: an undecided submission elsewhere.
	pending, err := hasMembershipElsewhere(q, voterID, committeeID, models.StatusSubmitted)
	if err != nil {
		return fmt.Errorf("failed to check pending memberships: %w", err)
	}
	if pending {
		res.Warnings = append(res.Warnings, Warning{
			Code:    models.WarnPendingElsewhere,
			Message: "has a submitted membership awaiting decision in another committee",
		})
	}

	return nil
}
