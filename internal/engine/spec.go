package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// SpecPath returns the path to the persisted spec within a workspace.
func SpecPath(ws *workspace.Workspace) string {
	return ws.Path("project_state", "spec.yaml")
}

// ReadSpec loads the spec from disk. A missing file is not an error —
// it returns (nil, nil), distinct from a file that exists but fails
// validation (returned alongside its validation error so callers can
// still inspect what's there, e.g. for `spec --repair`).
func ReadSpec(ws *workspace.Workspace) (*domain.Spec, error) {
	path := SpecPath(ws)
	if !workspace.Exists(path) {
		return nil, nil
	}
	var sp domain.Spec
	if err := workspace.ReadYAML(path, &sp); err != nil {
		return nil, fmt.Errorf("parsing spec.yaml: %w", err)
	}
	if err := ValidateSpec(&sp); err != nil {
		return &sp, err
	}
	return &sp, nil
}

// ValidateSpec runs struct-tag validation (required fields, closed
// enums for project_type and theme) via go-playground/validator.
func ValidateSpec(sp *domain.Spec) error {
	return structValidator.Struct(sp)
}

// WriteSpec persists a spec atomically and stamps UpdatedAt.
func WriteSpec(ws *workspace.Workspace, sp *domain.Spec, now time.Time) error {
	sp.UpdatedAt = now
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = now
	}
	return workspace.WriteYAMLAtomic(SpecPath(ws), sp)
}

// ApplySet mutates a spec field named by a "key=value" pair, the form
// `kie spec --set key=value` accepts. Unknown keys are an error rather
// than a silent no-op.
func ApplySet(sp *domain.Spec, kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("malformed --set argument %q, expected key=value", kv)
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)

	switch {
	case key == "project_name":
		sp.ProjectName = value
	case key == "objective":
		sp.Objective = value
	case key == "project_type":
		sp.ProjectType = domain.ProjectType(value)
	case key == "client":
		sp.Client = value
	case key == "theme":
		sp.Theme = domain.Theme(value)
	case key == "data_source":
		sp.DataSources = append(sp.DataSources, domain.DataSource{Path: value})
	case strings.HasPrefix(key, "column_mapping."):
		role := domain.Role(strings.TrimPrefix(key, "column_mapping."))
		if sp.ColumnMapping == nil {
			sp.ColumnMapping = map[domain.Role]string{}
		}
		sp.ColumnMapping[role] = value
	default:
		return fmt.Errorf("unknown spec key %q", key)
	}
	return nil
}

// ParseKVArgs finds every "key=value" positional argument in args,
// applying them in order, and returns the first non key=value argument
// encountered (if any) so callers can still find e.g. a subcommand.
func ParseKVArgs(sp *domain.Spec, args []string) error {
	for _, a := range args {
		if !strings.Contains(a, "=") {
			continue
		}
		if err := ApplySet(sp, a); err != nil {
			return err
		}
	}
	return nil
}

// repairSpec fills in the minimum viable defaults for a spec that failed
// validation, so `spec --repair` always produces a spec the gate accepts,
// favoring a usable placeholder over leaving the workspace stuck.
func repairSpec(sp *domain.Spec) []string {
	var fixed []string
	if sp.ProjectName == "" {
		sp.ProjectName = "untitled project"
		fixed = append(fixed, "project_name")
	}
	if sp.Objective == "" {
		sp.Objective = "understand the provided data"
		fixed = append(fixed, "objective")
	}
	if sp.ProjectType == "" {
		sp.ProjectType = domain.ProjectAnalytics
		fixed = append(fixed, "project_type")
	}
	return fixed
}

// formatFloat renders a float with the same fixed precision the CLI uses
// throughout its summaries.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
