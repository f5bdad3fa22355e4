// Package gate implements the Gate Engine: pre- and post-command policy
// hooks that evaluate Rails state, artifact presence, theme, intent, and
// environment prerequisites, and emit ALLOW, WARN, or BLOCK (spec.md §4.2).
//
// The shape is lifted directly from the teacher's guards package: a
// Severity-ranked Result, a composable Check interface, and a Runner that
// executes a set of checks and aggregates the outcome. Where the teacher
// has four severities (Suggestion/Warning/SoftBlock/HardBlock) this
// package keeps the same granularity internally — spec.md's three-way
// ALLOW/WARN/BLOCK is the Outcome's collapsed view (see Outcome.Decision).
package gate

import (
	"context"
	"fmt"
	"strings"
)

// Severity indicates how a failing check affects the command's outcome.
type Severity int

const (
	// Suggestion is advisory only.
	Suggestion Severity = iota
	// Warning is advisory; the command proceeds but the warning is surfaced.
	Warning
	// SoftBlock stops the command unless the caller forced it.
	SoftBlock
	// HardBlock stops the command unconditionally.
	HardBlock
)

func (s Severity) String() string {
	switch s {
	case Suggestion:
		return "SUGGESTION"
	case Warning:
		return "WARNING"
	case SoftBlock:
		return "SOFT_BLOCK"
	case HardBlock:
		return "HARD_BLOCK"
	default:
		return "UNKNOWN"
	}
}

// Decision is the spec.md §4.2 three-way gate outcome.
type Decision string

const (
	Allow Decision = "ALLOW"
	Warn  Decision = "WARN"
	Block Decision = "BLOCK"
)

// Result is the outcome of a single check.
type Result struct {
	CheckName string   `json:"check_name"`
	Passed    bool     `json:"passed"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Remedy    string   `json:"remedy,omitempty"`
}

// Outcome aggregates every check run for one gate pass.
type Outcome struct {
	Results []Result `json:"results"`
}

// Decision collapses the four internal severities into the spec's
// three-way ALLOW/WARN/BLOCK: any HardBlock, or any SoftBlock not
// overridden by force, is a BLOCK; otherwise any Warning makes it WARN;
// otherwise ALLOW. Suggestions never affect the decision.
func (o *Outcome) Decision(force bool) Decision {
	sawWarning := false
	for _, r := range o.Results {
		if r.Passed {
			continue
		}
		switch r.Severity {
		case HardBlock:
			return Block
		case SoftBlock:
			if !force {
				return Block
			}
		case Warning:
			sawWarning = true
		}
	}
	if sawWarning {
		return Warn
	}
	return Allow
}

func (o *Outcome) filter(sev Severity) []Result {
	var out []Result
	for _, r := range o.Results {
		if !r.Passed && r.Severity == sev {
			out = append(out, r)
		}
	}
	return out
}

// HardBlocks returns all failing hard-block results.
func (o *Outcome) HardBlocks() []Result { return o.filter(HardBlock) }

// SoftBlocks returns all failing soft-block results.
func (o *Outcome) SoftBlocks() []Result { return o.filter(SoftBlock) }

// Warnings returns all failing warning results.
func (o *Outcome) Warnings() []Result { return o.filter(Warning) }

// Suggestions returns all failing suggestion results.
func (o *Outcome) Suggestions() []Result { return o.filter(Suggestion) }

// FormatBlockMessage renders a human-readable explanation of every
// blocking result, if any. Returns "" when the outcome is not a BLOCK
// under the given force flag.
func (o *Outcome) FormatBlockMessage(force bool) string {
	if o.Decision(force) != Block {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Blocked by gate:\n")
	for _, r := range o.HardBlocks() {
		sb.WriteString(fmt.Sprintf("\n[HARD_BLOCK] %s: %s", r.CheckName, r.Message))
		if r.Remedy != "" {
			sb.WriteString(fmt.Sprintf("\n  Remedy: %s", r.Remedy))
		}
	}
	if !force {
		for _, r := range o.SoftBlocks() {
			sb.WriteString(fmt.Sprintf("\n[SOFT_BLOCK] %s: %s", r.CheckName, r.Message))
			if r.Remedy != "" {
				sb.WriteString(fmt.Sprintf("\n  Remedy: %s", r.Remedy))
			}
		}
		sb.WriteString("\n\nUse --force to override soft blocks.")
	}
	return sb.String()
}

// Check is a single, composable gate condition.
type Check interface {
	Name() string
	Evaluate(ctx context.Context, gctx *Context) Result
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context, gctx *Context) Result
}

// NewCheckFunc builds a Check from a plain function.
func NewCheckFunc(name string, fn func(ctx context.Context, gctx *Context) Result) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (c *CheckFunc) Name() string { return c.name }
func (c *CheckFunc) Evaluate(ctx context.Context, gctx *Context) Result {
	return c.fn(ctx, gctx)
}

// Pass builds a passing Result for the named check.
func Pass(name string) Result { return Result{CheckName: name, Passed: true} }

// Fail builds a failing Result at the given severity.
func Fail(name string, sev Severity, message, remedy string) Result {
	return Result{CheckName: name, Passed: false, Severity: sev, Message: message, Remedy: remedy}
}

// Runner executes an ordered list of checks and returns the aggregated Outcome.
type Runner struct{}

// NewRunner constructs a Runner.
func NewRunner() *Runner { return &Runner{} }

// Run evaluates every check in order against gctx.
func (r *Runner) Run(ctx context.Context, gctx *Context, checks []Check) *Outcome {
	outcome := &Outcome{}
	for _, c := range checks {
		outcome.Results = append(outcome.Results, c.Evaluate(ctx, gctx))
	}
	return outcome
}
