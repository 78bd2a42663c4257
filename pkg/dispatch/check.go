package dispatch

import (
	"context"
	"slices"
)

// CheckResult is the tri-state outcome of a check: allow, deny, or deny with
// a reason. Checks never mutate shared state; they may read ambient context
// (caller identity, channel) from the invocation.
type CheckResult struct {
	allowed bool
	reason  string
}

// Allow lets the invocation proceed.
func Allow() CheckResult { return CheckResult{allowed: true} }

// Deny stops the invocation without an explanation.
func Deny() CheckResult { return CheckResult{} }

// DenyReason stops the invocation and attaches a reason observable through
// the error handler.
func DenyReason(reason string) CheckResult { return CheckResult{reason: reason} }

// Allowed reports whether the invocation may proceed.
func (r CheckResult) Allowed() bool { return r.allowed }

// Reason returns the denial reason, if one was given.
func (r CheckResult) Reason() string { return r.reason }

// CheckFunc is a predicate gating whether an invocation may proceed. Checks
// may perform asynchronous work (lookups) under the given context.
type CheckFunc func(ctx context.Context, inv *Invocation) CheckResult

// Checks combines several checks into one, evaluated in order with a
// short-circuit on the first deny.
func Checks(checks ...CheckFunc) CheckFunc {
	return func(ctx context.Context, inv *Invocation) CheckResult {
		for _, check := range checks {
			if res := check(ctx, inv); !res.Allowed() {
				return res
			}
		}
		return Allow()
	}
}

// runChecks evaluates the global check followed by the command's own check,
// short-circuiting on the first deny. Owners bypass the pipeline only when
// the integrator opted in; by default checks apply to everyone.
func (d *Dispatcher) runChecks(ctx context.Context, inv *Invocation) *CheckError {
	if d.opts.SkipChecksForOwners && slices.Contains(d.opts.OwnerIDs, inv.Event.AuthorID) {
		return nil
	}
	for _, check := range []CheckFunc{d.opts.GlobalCheck, inv.Command.Check} {
		if check == nil {
			continue
		}
		if res := check(ctx, inv); !res.Allowed() {
			return &CheckError{Command: inv.Command.Name, Reason: res.Reason()}
		}
	}
	return nil
}
