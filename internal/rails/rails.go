// Package rails implements the Rails State Machine: the persistent
// workflow tracker that advances through startkie → spec → eda →
// analyze → build → preview. Transitions happen only on successful
// command completion for the target stage (spec.md §4.1).
package rails

import (
	"errors"
	"fmt"
	"time"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

// Common transition errors, mirrored on the teacher's validation package
// shape (one sentinel per failure mode rather than a single generic error).
var (
	ErrNotSequential  = errors.New("target stage does not immediately follow the latest completed stage")
	ErrAlreadyCurrent = errors.New("already at target stage")
	ErrCommandFailed  = errors.New("command did not succeed; stage not advanced")
)

// StatePath returns the path to rails_state.json within a workspace.
func StatePath(ws *workspace.Workspace) string {
	return ws.Path("project_state", "rails_state.json")
}

// Machine mediates reads of and transitions on a single workspace's Rails
// state. It is the only thing permitted to write rails_state.json.
type Machine struct {
	ws *workspace.Workspace
}

// New creates a Machine bound to a workspace.
func New(ws *workspace.Workspace) *Machine {
	return &Machine{ws: ws}
}

// ReadState loads the current Rails state, defaulting to stage
// "startkie" with no completed stages if the file does not yet exist.
func (m *Machine) ReadState() (*domain.RailsState, error) {
	path := StatePath(m.ws)
	if !workspace.Exists(path) {
		return &domain.RailsState{
			CurrentStage:  domain.StageStartKIE,
			ArtifactPaths: map[domain.Stage]string{},
			UpdatedAt:     time.Now(),
		}, nil
	}
	var st domain.RailsState
	if err := workspace.ReadJSON(path, &st); err != nil {
		return nil, fmt.Errorf("reading rails state: %w", err)
	}
	if st.ArtifactPaths == nil {
		st.ArtifactPaths = map[domain.Stage]string{}
	}
	return &st, nil
}

// writeState persists state atomically. Unexported: only AttemptTransition
// and Reset may call it, keeping the single-mutation-surface invariant.
func (m *Machine) writeState(st *domain.RailsState) error {
	st.UpdatedAt = time.Now()
	return workspace.WriteJSONAtomic(StatePath(m.ws), st)
}

// NextStage returns the stage that should follow the current one, or ""
// if the current stage is the last (preview).
func NextStage(current domain.Stage) domain.Stage {
	idx := domain.StageIndex(current)
	if idx < 0 || idx+1 >= len(domain.StageOrder) {
		return ""
	}
	return domain.StageOrder[idx+1]
}

// AttemptTransition advances the Rails state to target, but only if:
//
//   - commandSucceeded is true (a failed command never advances the stage);
//   - target is exactly the stage that immediately follows the latest
//     completed stage (no skipping, no re-entering an earlier stage through
//     this path — use Reset for that).
//
// On success it records one produced artifact path against the new
// stage (ArtifactPaths holds a single path per stage; when several
// artifacts were produced, map iteration order decides which is kept)
// and persists the state. On failure it returns an error and never
// writes to disk.
func (m *Machine) AttemptTransition(target domain.Stage, commandSucceeded bool, producedArtifacts map[string]string) (*domain.RailsState, error) {
	if !commandSucceeded {
		return nil, ErrCommandFailed
	}

	st, err := m.ReadState()
	if err != nil {
		return nil, err
	}

	if target == st.CurrentStage {
		return nil, ErrAlreadyCurrent
	}

	expected := NextStage(st.CurrentStage)
	if expected == "" || target != expected {
		return nil, fmt.Errorf("%w: current=%s target=%s expected=%s", ErrNotSequential, st.CurrentStage, target, expected)
	}

	if !st.Completed(st.CurrentStage) {
		st.CompletedStages = append(st.CompletedStages, st.CurrentStage)
	}
	st.CurrentStage = target
	for path, produced := range producedArtifacts {
		_ = produced
		st.ArtifactPaths[target] = path
	}

	if err := m.writeState(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Reset explicitly rewinds the Rails state to a given stage. Only
// `spec --repair` may call this; it is never reached from a normal
// command failure path.
func (m *Machine) Reset(to domain.Stage) (*domain.RailsState, error) {
	if domain.StageIndex(to) < 0 {
		return nil, fmt.Errorf("unknown stage %q", to)
	}
	st, err := m.ReadState()
	if err != nil {
		return nil, err
	}
	st.CurrentStage = to
	var kept []domain.Stage
	targetIdx := domain.StageIndex(to)
	for _, c := range st.CompletedStages {
		if domain.StageIndex(c) < targetIdx {
			kept = append(kept, c)
		}
	}
	st.CompletedStages = kept
	if err := m.writeState(st); err != nil {
		return nil, err
	}
	return st, nil
}

// NextSuggestedCommand maps the current stage to the verb to run next,
// for `status`/`rails`. `go` picks its verb from NextStage instead.
func NextSuggestedCommand(current domain.Stage) string {
	switch current {
	case domain.StageStartKIE:
		return "interview (or spec --init)"
	case domain.StageSpec:
		return "eda"
	case domain.StageEDA:
		return "analyze"
	case domain.StageAnalyze:
		return "build"
	case domain.StageBuild:
		return "preview"
	case domain.StagePreview:
		return "(workflow complete — re-run build to iterate)"
	default:
		return "bootstrap"
	}
}
