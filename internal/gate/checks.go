package gate

import (
	"context"
)

// --- Pre-gate checks ---
// Each check implements one row of spec.md §4.2's pre-gate decision table.

// WorkspaceMarkerPresent blocks every command except bootstrap itself
// until the workspace has been bootstrapped.
var WorkspaceMarkerPresent = NewCheckFunc("workspace_marker_present", func(_ context.Context, gctx *Context) Result {
	if gctx.WorkspaceBootstrapped || gctx.Command == "bootstrap" {
		return Pass("workspace_marker_present")
	}
	return Fail("workspace_marker_present", HardBlock,
		"This directory has not been bootstrapped as a KIE workspace.",
		"Run `kie bootstrap`.",
	)
})

// SpecRequired blocks analyze/build/preview/go when the spec is missing
// or fails validation.
var SpecRequired = NewCheckFunc("spec_required", func(_ context.Context, gctx *Context) Result {
	switch gctx.Command {
	case "analyze", "build", "preview", "go":
	default:
		return Pass("spec_required")
	}
	if gctx.HasSpec && gctx.SpecValid {
		return Pass("spec_required")
	}
	return Fail("spec_required", HardBlock,
		"No complete spec found for this workspace.",
		"Run `kie interview` or `kie spec --init`.",
	)
})

// ThemeRequiredForBuild blocks build until a theme has been set.
var ThemeRequiredForBuild = NewCheckFunc("theme_required_for_build", func(_ context.Context, gctx *Context) Result {
	if gctx.Command != "build" {
		return Pass("theme_required_for_build")
	}
	if gctx.HasTheme {
		return Pass("theme_required_for_build")
	}
	return Fail("theme_required_for_build", HardBlock,
		"Spec has no theme set. Builds must declare dark or light.",
		"Run `kie theme dark` or `kie theme light`.",
	)
})

// DataFileRequiredForEDA blocks eda when no data file is present.
var DataFileRequiredForEDA = NewCheckFunc("data_file_required_for_eda", func(_ context.Context, gctx *Context) Result {
	if gctx.Command != "eda" {
		return Pass("data_file_required_for_eda")
	}
	if gctx.HasDataFile {
		return Pass("data_file_required_for_eda")
	}
	return Fail("data_file_required_for_eda", HardBlock,
		"No data file found under data/.",
		"Add a CSV, Excel, Parquet, or JSON file to the workspace's data/ directory.",
	)
})

// EDAProfileRequiredForAnalyze blocks analyze without a prior EDA profile.
var EDAProfileRequiredForAnalyze = NewCheckFunc("eda_profile_required_for_analyze", func(_ context.Context, gctx *Context) Result {
	if gctx.Command != "analyze" {
		return Pass("eda_profile_required_for_analyze")
	}
	if gctx.HasEDAProfile {
		return Pass("eda_profile_required_for_analyze")
	}
	return Fail("eda_profile_required_for_analyze", HardBlock,
		"No EDA profile found. Analysis requires a schema/quality profile first.",
		"Run `kie eda`.",
	)
})

// VisualizationPlanRequiredForBuild blocks build without a visualization plan.
var VisualizationPlanRequiredForBuild = NewCheckFunc("visualization_plan_required_for_build", func(_ context.Context, gctx *Context) Result {
	if gctx.Command != "build" {
		return Pass("visualization_plan_required_for_build")
	}
	if gctx.HasVisualizationPlan {
		return Pass("visualization_plan_required_for_build")
	}
	return Fail("visualization_plan_required_for_build", HardBlock,
		"No visualization plan found. Builds consume the planner's output.",
		"Run `kie analyze`.",
	)
})

// ToolchainFloorForDashboard hard-blocks `build dashboard` when Node is
// below the configured floor version (dashboards are assembled with a
// Node-based bundler downstream).
type ToolchainFloorForDashboard struct {
	NodeFloor string
}

func (c ToolchainFloorForDashboard) Name() string { return "toolchain_floor_for_dashboard" }
func (c ToolchainFloorForDashboard) Evaluate(_ context.Context, gctx *Context) Result {
	if gctx.Command != "build" || gctx.BuildTarget != "dashboard" {
		return Pass(c.Name())
	}
	if !gctx.Env.NodeFound {
		return Fail(c.Name(), HardBlock,
			"Node.js was not found, but `build dashboard` requires it.",
			"Install Node.js "+c.NodeFloor+" or newer.",
		)
	}
	if versionBelow(gctx.Env.NodeVersion, c.NodeFloor) {
		return Fail(c.Name(), HardBlock,
			"Node.js "+gctx.Env.NodeVersion+" is below the required floor "+c.NodeFloor+" for dashboard assembly.",
			"Upgrade Node.js to "+c.NodeFloor+" or newer.",
		)
	}
	return Pass(c.Name())
}

// OptionalToolchainWarning warns (does not block) when a non-required
// target's optional toolchain is missing.
var OptionalToolchainWarning = NewCheckFunc("optional_toolchain_present", func(_ context.Context, gctx *Context) Result {
	if gctx.Command != "build" || gctx.BuildTarget == "dashboard" {
		return Pass("optional_toolchain_present")
	}
	if gctx.Env.NodeFound {
		return Pass("optional_toolchain_present")
	}
	return Fail("optional_toolchain_present", Warning,
		"Node.js was not found. Not required for this build target, but some export post-processing will be skipped.",
		"Install Node.js if you plan to also build a dashboard.",
	)
})

// PreGateChecks returns the full ordered pre-gate check set for a command.
func PreGateChecks(nodeFloor string) []Check {
	return []Check{
		WorkspaceMarkerPresent,
		SpecRequired,
		ThemeRequiredForBuild,
		DataFileRequiredForEDA,
		EDAProfileRequiredForAnalyze,
		VisualizationPlanRequiredForBuild,
		ToolchainFloorForDashboard{NodeFloor: nodeFloor},
		OptionalToolchainWarning,
	}
}

// versionBelow does a lenient component-wise numeric comparison, with
// missing trailing components counted as zero; malformed versions are
// treated as satisfying the floor (fail open on parse error, since this
// is a secondary advisory check backed by the hard require above when
// the toolchain is missing entirely).
func versionBelow(have, floor string) bool {
	hp := parseVersion(have)
	fp := parseVersion(floor)
	if len(hp) == 0 || len(fp) == 0 {
		return false
	}
	for i := 0; i < len(fp); i++ {
		h := 0
		if i < len(hp) {
			h = hp[i]
		}
		if h != fp[i] {
			return h < fp[i]
		}
	}
	return false
}

func parseVersion(v string) []int {
	var out []int
	cur := 0
	has := false
	for _, r := range v {
		if r >= '0' && r <= '9' {
			cur = cur*10 + int(r-'0')
			has = true
		} else if r == '.' {
			out = append(out, cur)
			cur = 0
			has = false
		}
	}
	if has {
		out = append(out, cur)
	}
	return out
}
