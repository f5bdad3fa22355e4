package gate

import (
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

// Context carries everything checks need to make a decision, populated
// once by the caller before running a check set. This mirrors the
// teacher's GuardContext: a flat struct of booleans and counts so no
// individual check needs to re-derive state.
type Context struct {
	// Command being gated, and whether the caller passed --force.
	Command string
	Force   bool

	// Workspace/Rails state.
	WorkspaceBootstrapped bool
	CurrentStage          domain.Stage

	// Spec completeness.
	HasSpec    bool
	SpecValid  bool
	HasTheme   bool

	// Stage artifact presence.
	HasDataFile          bool
	HasEDAProfile        bool
	HasVisualizationPlan bool

	// Environment.
	Env EnvProbe

	// Build target, when Command is "build".
	BuildTarget string
}

// EnvProbe is a snapshot of locally available toolchains.
type EnvProbe struct {
	PythonVersion string
	NodeVersion   string
	PythonFound   bool
	NodeFound     bool
}

var versionRe = regexp.MustCompile(`\d+(\.\d+)+`)

// ProbeEnvironment shells out to python3/node --version. Missing
// toolchains are not themselves an error — individual checks decide
// whether a given command requires them.
func ProbeEnvironment() EnvProbe {
	probe := EnvProbe{}
	if out, err := exec.Command("python3", "--version").CombinedOutput(); err == nil {
		probe.PythonFound = true
		probe.PythonVersion = versionRe.FindString(string(out))
	}
	if out, err := exec.Command("node", "--version").CombinedOutput(); err == nil {
		probe.NodeFound = true
		probe.NodeVersion = strings.TrimPrefix(versionRe.FindString(string(out)), "v")
	}
	return probe
}

// PopulateWorkspaceState fills the bootstrap/stage/artifact-presence
// fields of a Context from the filesystem and Rails state. It does not
// touch Command, Force, or Env, which the caller sets directly.
func PopulateWorkspaceState(ws *workspace.Workspace, st *domain.RailsState, sp *domain.Spec, specErr error) *Context {
	gctx := &Context{
		WorkspaceBootstrapped: ws.IsBootstrapped(),
		CurrentStage:          st.CurrentStage,
	}

	gctx.HasSpec = sp != nil
	gctx.SpecValid = sp != nil && specErr == nil
	gctx.HasTheme = sp != nil && sp.HasTheme()

	gctx.HasDataFile = hasAnyDataFile(ws)
	gctx.HasEDAProfile = workspace.Exists(ws.Path("outputs", "eda_profile.json"))
	gctx.HasVisualizationPlan = workspace.Exists(ws.Path("outputs", "visualization_plan.json"))

	return gctx
}

func hasAnyDataFile(ws *workspace.Workspace) bool {
	entries, err := os.ReadDir(ws.Path("data"))
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			return true
		}
	}
	return false
}
