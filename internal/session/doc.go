// Package session is the simulation state and parameter continuity
// engine. A Session ties a black-box model to a scenario: it discovers
// the model's state entries, maps symbolic parameter names to model
// locations, tracks parameter and initial-value overrides across runs,
// drives the two-mode (fresh vs. continued) simulation protocol, and
// resolves values from start metadata, the last run or the override set.
//
// Sessions are single-threaded by design: one operation completes before
// the next begins, matching the interactive exploration workflow. A
// continued run is only valid after at least one successful fresh run;
// the driver enforces this rather than trusting the caller.
package session
