/*
Package governance reads the jurisdiction-wide configuration the rest of the
engine depends on.

# Configuration

Config returns the single active governance_config row:

	cfg, err := governance.Config(tx)
	if err != nil {
		// ErrNoConfig is a fatal precondition failure; never default it.
	}

The row carries the required party code, whether assembly districts must
match, the per-committee seat cap, and which ineligibility reasons can never
be bypassed by a forced add.

Config is deliberately a function of its Queryer argument rather than ambient
state, so the evaluator and allocator stay pure functions of explicit inputs
and can be unit-tested with different configs per test.

# Active Term

ActiveTerm returns the single term flagged active:

	term, err := governance.ActiveTerm(tx)

All seat and membership operations default to the active term unless a term
is given explicitly. ErrNoActiveTerm, like ErrNoConfig, is unrecoverable
locally and must be propagated.
*/
package governance
