package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

// TrustBundlePaths returns the human-readable and machine-readable Trust
// Bundle paths for a workspace. Both are regenerated in full on every
// command — neither is ever hand-edited or partially updated.
func TrustBundlePaths(ws *workspace.Workspace) (md, jsonPath string) {
	return ws.Path("project_state", "trust_bundle.md"), ws.Path("project_state", "trust_bundle.json")
}

// BuildTrustBundle derives a TrustBundle from the most recent records in
// the ledger. identity is the consultant-facing project name. now is
// injected by the caller since this package does not call time.Now itself.
func (l *Ledger) BuildTrustBundle(identity string, stage domain.Stage, now time.Time) (*domain.TrustBundle, error) {
	records, err := l.All()
	if err != nil {
		return nil, err
	}

	tb := &domain.TrustBundle{
		Identity:    identity,
		Stage:       stage,
		GeneratedAt: now,
	}

	seenArtifact := map[string]bool{}
	seenSkill := map[string]bool{}

	for _, rec := range records {
		tb.Executed = append(tb.Executed, rec.Command)
		for _, a := range rec.Outputs {
			if !seenArtifact[a.Path] {
				seenArtifact[a.Path] = true
				tb.Artifacts = append(tb.Artifacts, a)
			}
		}
		for _, s := range rec.SkillsExecuted {
			if !seenSkill[s] {
				seenSkill[s] = true
				tb.Skills = append(tb.Skills, s)
			}
		}
		if !rec.Success {
			tb.Warnings = append(tb.Warnings, rec.Warnings...)
			tb.Blocks = append(tb.Blocks, rec.Blocks...)
		}
	}

	for _, a := range tb.Artifacts {
		if !workspace.Exists(a.Path) {
			tb.Missing = append(tb.Missing, a.Path)
		}
	}

	tb.NextActions = nextActionsFor(stage, tb.Missing)
	return tb, nil
}

// nextActionsFor never returns an empty slice — the Trust Bundle must
// always tell the reader what to do next (spec.md §4.3, §8 invariant 5).
func nextActionsFor(stage domain.Stage, missing []string) []string {
	if len(missing) > 0 {
		return []string{"Re-run the command that produced the missing artifact(s): " + strings.Join(missing, ", ")}
	}
	// stage is the latest completed stage, so each action names the
	// command for the stage that follows it.
	switch stage {
	case domain.StageStartKIE:
		return []string{"Run `kie bootstrap` if the workspace is not bootstrapped yet, then `kie interview` (or `kie spec --init`)."}
	case domain.StageSpec:
		return []string{"Add a data file under data/ and run `kie eda`."}
	case domain.StageEDA:
		return []string{"Run `kie analyze` to generate insights and a visualization plan."}
	case domain.StageAnalyze:
		return []string{"Run `kie build` to assemble the declared build targets."}
	case domain.StageBuild:
		return []string{"Run `kie preview` to verify the build, or `kie validate` for a standalone brand check."}
	case domain.StagePreview:
		return []string{"Workflow complete. Re-run `kie build` to iterate, or `kie validate` for a standalone brand check."}
	default:
		return []string{"Run `kie status` to see the current Rails stage."}
	}
}

// WriteTrustBundle renders the Trust Bundle to both its markdown and JSON forms,
// atomically, and writes both even if one is stale relative to the
// other only for the instant between the two renames.
func (l *Ledger) WriteTrustBundle(tb *domain.TrustBundle) error {
	mdPath, jsonPath := TrustBundlePaths(l.ws)
	if err := workspace.WriteFileAtomic(mdPath, []byte(RenderTrustBundleMarkdown(tb))); err != nil {
		return fmt.Errorf("writing trust bundle markdown: %w", err)
	}
	if err := workspace.WriteJSONAtomic(jsonPath, tb); err != nil {
		return fmt.Errorf("writing trust bundle json: %w", err)
	}
	return nil
}

// RenderTrustBundleMarkdown renders the human-facing form of a TrustBundle.
func RenderTrustBundleMarkdown(tb *domain.TrustBundle) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Trust Bundle — %s\n\n", tb.Identity)
	fmt.Fprintf(&sb, "Stage: **%s**\n", tb.Stage)
	fmt.Fprintf(&sb, "Generated: %s\n\n", tb.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Executed\n\n")
	if len(tb.Executed) == 0 {
		sb.WriteString("_Nothing has run yet._\n\n")
	} else {
		for _, c := range tb.Executed {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Artifacts\n\n")
	if len(tb.Artifacts) == 0 {
		sb.WriteString("_None produced yet._\n\n")
	} else {
		for _, a := range tb.Artifacts {
			mark := ""
			if contains(tb.Missing, a.Path) {
				mark = " **(MISSING)**"
			}
			fmt.Fprintf(&sb, "- `%s` (sha256:%s)%s\n", a.Path, shortHash(a.SHA256), mark)
		}
		sb.WriteString("\n")
	}

	if len(tb.Skills) > 0 {
		sb.WriteString("## Skills Invoked\n\n")
		for _, s := range tb.Skills {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
		sb.WriteString("\n")
	}

	if len(tb.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range tb.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		sb.WriteString("\n")
	}

	if len(tb.Blocks) > 0 {
		sb.WriteString("## Blocks\n\n")
		for _, b := range tb.Blocks {
			fmt.Fprintf(&sb, "- %s\n", b)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Next Actions\n\n")
	for _, n := range tb.NextActions {
		fmt.Fprintf(&sb, "- %s\n", n)
	}

	return sb.String()
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
