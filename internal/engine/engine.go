// Package engine wires the Gate Engine, Rails State Machine, Evidence
// Ledger, Intelligence Pipeline, and Brand Validator together behind
// one call per CLI verb (spec.md §2's "Command dispatcher → pre-gate →
// stage handler → post-gate → Evidence Ledger write → Trust Bundle
// render" control flow).
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/preston-fay/kie-v3-sub001/internal/brand"
	"github.com/preston-fay/kie-v3-sub001/internal/config"
	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/gate"
	"github.com/preston-fay/kie-v3-sub001/internal/ledger"
	"github.com/preston-fay/kie-v3-sub001/internal/rails"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

// Engine bundles every subsystem a command handler needs.
type Engine struct {
	Workspace *workspace.Workspace
	Rails     *rails.Machine
	Ledger    *ledger.Ledger
	Config    *config.Config
	Log       zerolog.Logger
	Gate      *gate.Runner
}

// New constructs an Engine rooted at a workspace.
func New(ws *workspace.Workspace, cfg *config.Config, log zerolog.Logger) *Engine {
	return &Engine{
		Workspace: ws,
		Rails:     rails.New(ws),
		Ledger:    ledger.New(ws),
		Config:    cfg,
		Log:       log,
		Gate:      gate.NewRunner(),
	}
}

// Outcome is the fully-resolved result of a command run, ready for the
// CLI entrypoint to translate into an exit code.
type Outcome struct {
	Decision      gate.Decision
	Message       string
	RecoveryPlan  *domain.RecoveryPlan
	GateOutcome   *gate.Outcome
}

// ExitCode maps an Outcome's decision to spec.md §6's exit codes.
func (o *Outcome) ExitCode() int {
	switch o.Decision {
	case gate.Block:
		return 2
	case gate.Warn:
		return 4
	default:
		return 0
	}
}

// handlerFunc is a stage handler: given a populated gate Context, it
// does the command's actual work and reports success, outputs, and any
// warnings. It must not mutate Rails state itself — Run does that
// through the single AttemptTransition surface, after the post-gate
// passes.
type handlerFunc func(ctx context.Context, e *Engine, gctx *gate.Context, args []string) (handlerResult, error)

type handlerResult struct {
	Success     bool
	Outputs     []domain.ArtifactRef
	Inputs      []domain.ArtifactRef
	Warnings    []string
	TargetStage domain.Stage // "" if this command does not advance Rails
	BrandReport *brand.Report
	Message     string
	SkillsRun   []string
}

// Run executes one full command lifecycle: pre-gate, handler, post-gate,
// Evidence Ledger write, Trust Bundle render, and (on WARN/BLOCK/FAIL) a
// Recovery Plan.
func (e *Engine) Run(ctx context.Context, command string, args []string, force bool, buildTarget string) (*Outcome, error) {
	runID := ledger.NewRunID()
	started := time.Now()

	st, err := e.Rails.ReadState()
	if err != nil {
		return nil, fmt.Errorf("reading rails state: %w", err)
	}
	sp, specErr := ReadSpec(e.Workspace)

	gctx := gate.PopulateWorkspaceState(e.Workspace, st, sp, specErr)
	gctx.Command = command
	gctx.Force = force
	gctx.BuildTarget = buildTarget
	gctx.Env = gate.ProbeEnvironment()

	preOutcome := e.Gate.Run(ctx, gctx, gate.PreGateChecks(e.Config.Toolchain.NodeFloor))
	if preOutcome.Decision(force) == gate.Block {
		return e.finishBlocked(runID, started, command, args, st.CurrentStage, preOutcome)
	}

	handler, ok := handlers[command]
	if !ok {
		return nil, fmt.Errorf("no handler registered for command %q", command)
	}

	result, handlerErr := handler(ctx, e, gctx, args)
	if handlerErr != nil {
		return e.finishFailed(runID, started, command, args, st.CurrentStage, handlerErr)
	}

	var criticalBrand []string
	if result.BrandReport != nil {
		criticalBrand = result.BrandReport.CriticalMessages()
	}
	postResult := gate.Run(gate.PostGateInput{
		DeclaredOutputs:         result.Outputs,
		CriticalBrandViolations: criticalBrand,
	})

	success := result.Success && postResult.Decision != gate.Block

	var newState *domain.RailsState
	if success && result.TargetStage != "" {
		produced := map[string]string{}
		for _, o := range result.Outputs {
			produced[o.Path] = o.SHA256
		}
		newState, err = e.Rails.AttemptTransition(result.TargetStage, true, produced)
		if err != nil {
			success = false
			result.Warnings = append(result.Warnings, fmt.Sprintf("rails transition failed: %v", err))
		}
	}
	if newState == nil {
		newState = st
	}

	decision := gate.Allow
	switch {
	case !success:
		decision = gate.Block
	case len(result.Warnings) > 0 || preOutcome.Decision(force) == gate.Warn:
		decision = gate.Warn
	}

	rec := &domain.EvidenceRecord{
		RunID:       runID,
		Timestamp:   started,
		Command:     command,
		Args:        args,
		StageBefore: st.CurrentStage,
		StageAfter:  newState.CurrentStage,
		Env:         ledger.EnvSnapshotNow(gctx.Env.PythonVersion, gctx.Env.NodeVersion),
		Inputs:      result.Inputs,
		Outputs:     result.Outputs,
		SkillsExecuted: result.SkillsRun,
		Success:     success,
		Warnings:    result.Warnings,
	}
	if decision == gate.Block {
		rec.Blocks = append(rec.Blocks, postResult.Problems...)
	}
	if err := e.Ledger.Write(rec); err != nil {
		return nil, fmt.Errorf("writing evidence record: %w", err)
	}

	if err := e.renderTrustBundle(sp, newState.CurrentStage, started); err != nil {
		return nil, fmt.Errorf("rendering trust bundle: %w", err)
	}

	outcome := &Outcome{Decision: decision, Message: result.Message}
	if decision != gate.Allow {
		plan := ledger.RecoveryPlanForBlock(result.Message, nil)
		if err := e.writeRecoveryPlan(plan); err != nil {
			return nil, err
		}
		outcome.RecoveryPlan = plan
	}
	return outcome, nil
}

func (e *Engine) finishBlocked(runID string, started time.Time, command string, args []string, stageBefore domain.Stage, out *gate.Outcome) (*Outcome, error) {
	rec := &domain.EvidenceRecord{
		RunID:       runID,
		Timestamp:   started,
		Command:     command,
		Args:        args,
		StageBefore: stageBefore,
		StageAfter:  stageBefore,
		Success:     false,
		Blocks:      messagesOf(out.HardBlocks()),
		Warnings:    messagesOf(out.Warnings()),
	}
	if err := e.Ledger.Write(rec); err != nil {
		return nil, fmt.Errorf("writing evidence record: %w", err)
	}
	if err := e.renderTrustBundle(nil, stageBefore, started); err != nil {
		return nil, fmt.Errorf("rendering trust bundle: %w", err)
	}

	var remedies []string
	for _, r := range out.HardBlocks() {
		if r.Remedy != "" {
			remedies = append(remedies, r.Remedy)
		}
	}
	plan := ledger.RecoveryPlanForBlock(out.FormatBlockMessage(false), remedies)
	if err := e.writeRecoveryPlan(plan); err != nil {
		return nil, err
	}

	return &Outcome{Decision: gate.Block, Message: out.FormatBlockMessage(false), RecoveryPlan: plan, GateOutcome: out}, nil
}

func (e *Engine) finishFailed(runID string, started time.Time, command string, args []string, stageBefore domain.Stage, handlerErr error) (*Outcome, error) {
	rec := &domain.EvidenceRecord{
		RunID:       runID,
		Timestamp:   started,
		Command:     command,
		Args:        args,
		StageBefore: stageBefore,
		StageAfter:  stageBefore,
		Success:     false,
		Blocks:      []string{handlerErr.Error()},
	}
	if err := e.Ledger.Write(rec); err != nil {
		return nil, fmt.Errorf("writing evidence record after handler failure: %w", err)
	}
	if err := e.renderTrustBundle(nil, stageBefore, started); err != nil {
		return nil, fmt.Errorf("rendering trust bundle: %w", err)
	}
	plan := ledger.RecoveryPlanForCrash(command)
	if err := e.writeRecoveryPlan(plan); err != nil {
		return nil, err
	}
	return &Outcome{Decision: gate.Block, Message: handlerErr.Error(), RecoveryPlan: plan}, nil
}

func messagesOf(results []gate.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Message
	}
	return out
}

func (e *Engine) renderTrustBundle(sp *domain.Spec, stage domain.Stage, now time.Time) error {
	identity := "untitled project"
	if sp != nil && sp.ProjectName != "" {
		identity = sp.ProjectName
	}
	tb, err := e.Ledger.BuildTrustBundle(identity, stage, now)
	if err != nil {
		return err
	}
	return e.Ledger.WriteTrustBundle(tb)
}

func (e *Engine) writeRecoveryPlan(plan *domain.RecoveryPlan) error {
	path := e.Workspace.Path("project_state", "recovery_plan.md")
	return workspace.WriteFileAtomic(path, []byte(renderRecoveryPlanMarkdown(plan)))
}

func renderRecoveryPlanMarkdown(plan *domain.RecoveryPlan) string {
	s := "# Recovery Plan\n\n" + plan.Reason + "\n\n"
	for _, tier := range plan.Tiers {
		s += "## " + tier.Title + "\n\n"
		if len(tier.Commands) == 0 {
			s += "_None._\n\n"
			continue
		}
		for _, c := range tier.Commands {
			s += "- `" + c + "`\n"
		}
		s += "\n"
	}
	return s
}
