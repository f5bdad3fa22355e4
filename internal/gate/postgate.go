package gate

import (
	"fmt"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

// PostGateInput carries everything the post-gate needs to confirm a
// command actually did what it claims to have done.
type PostGateInput struct {
	// DeclaredOutputs is what the command says it produced.
	DeclaredOutputs []domain.ArtifactRef
	// CriticalBrandViolations is non-empty if the Brand Validator raised
	// any CRITICAL finding against this command's output.
	CriticalBrandViolations []string
}

// PostGateResult is the outcome of the post-gate pass.
type PostGateResult struct {
	Decision Decision
	Problems []string
}

// Run confirms every declared output exists on disk with a matching
// hash, and that no critical brand violation was raised. Any failure
// downgrades the command's success to BLOCK — the Rails state must not
// advance on a post-gate failure (spec.md §4.2, §8 invariant 1 and 6).
func Run(in PostGateInput) PostGateResult {
	var problems []string

	for _, ref := range in.DeclaredOutputs {
		if !workspace.Exists(ref.Path) {
			problems = append(problems, fmt.Sprintf("declared output %s does not exist on disk", ref.Path))
			continue
		}
		actual, err := workspace.SHA256File(ref.Path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("could not hash %s: %v", ref.Path, err))
			continue
		}
		if actual != ref.SHA256 {
			problems = append(problems, fmt.Sprintf("%s hash mismatch: declared %s, actual %s", ref.Path, ref.SHA256, actual))
		}
	}

	if len(in.CriticalBrandViolations) > 0 {
		for _, v := range in.CriticalBrandViolations {
			problems = append(problems, "critical brand violation: "+v)
		}
	}

	if len(problems) > 0 {
		return PostGateResult{Decision: Block, Problems: problems}
	}
	return PostGateResult{Decision: Allow}
}
