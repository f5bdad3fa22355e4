package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/preston-fay/kie-v3-sub001/internal/brand"
	"github.com/preston-fay/kie-v3-sub001/internal/domain"
	"github.com/preston-fay/kie-v3-sub001/internal/gate"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/analyzer"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/loader"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/mapper"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/planner"
	"github.com/preston-fay/kie-v3-sub001/internal/intelligence/triage"
	"github.com/preston-fay/kie-v3-sub001/internal/rails"
	"github.com/preston-fay/kie-v3-sub001/internal/workspace"
)

// handlers is the full verb table Run dispatches into once the pre-gate
// passes. "rails" is an alias for "status" — both just read and report
// current position, never mutate it.
var handlers = map[string]handlerFunc{
	"bootstrap": handleBootstrap,
	"doctor":    handleDoctor,
	"status":    handleStatus,
	"rails":     handleStatus,
	"interview": handleInterview,
	"spec":      handleSpec,
	"theme":     handleTheme,
	"eda":       handleEDA,
	"analyze":   handleAnalyze,
	"build":     handleBuild,
	"preview":   handlePreview,
	"validate":  handleValidate,
	"go":        handleGo,
}

func handleBootstrap(_ context.Context, e *Engine, _ *gate.Context, _ []string) (handlerResult, error) {
	if err := e.Workspace.Bootstrap(); err != nil {
		return handlerResult{}, fmt.Errorf("bootstrapping workspace: %w", err)
	}
	sum, err := workspace.SHA256File(e.Workspace.MarkerPath())
	if err != nil {
		return handlerResult{}, fmt.Errorf("hashing workspace marker: %w", err)
	}
	return handlerResult{
		Success: true,
		Outputs: []domain.ArtifactRef{{Path: e.Workspace.MarkerPath(), SHA256: sum}},
		Message: "Workspace bootstrapped at " + e.Workspace.Root,
	}, nil
}

// handleDoctor never blocks — it is the one command the Recovery Plan's
// Diagnose tier always points at, so it must always run to completion
// and explain what it finds rather than failing itself.
func handleDoctor(_ context.Context, e *Engine, gctx *gate.Context, _ []string) (handlerResult, error) {
	var lines []string
	lines = append(lines, fmt.Sprintf("workspace bootstrapped: %v", e.Workspace.IsBootstrapped()))
	lines = append(lines, fmt.Sprintf("rails stage: %s", gctx.CurrentStage))
	lines = append(lines, fmt.Sprintf("spec present: %v, spec valid: %v", gctx.HasSpec, gctx.SpecValid))
	lines = append(lines, fmt.Sprintf("theme set: %v", gctx.HasTheme))
	lines = append(lines, fmt.Sprintf("data file present: %v", gctx.HasDataFile))
	lines = append(lines, fmt.Sprintf("eda profile present: %v", gctx.HasEDAProfile))
	lines = append(lines, fmt.Sprintf("visualization plan present: %v", gctx.HasVisualizationPlan))
	lines = append(lines, fmt.Sprintf("python: found=%v version=%s", gctx.Env.PythonFound, gctx.Env.PythonVersion))
	lines = append(lines, fmt.Sprintf("node: found=%v version=%s", gctx.Env.NodeFound, gctx.Env.NodeVersion))

	latest, err := e.Ledger.Latest()
	if err != nil {
		return handlerResult{}, fmt.Errorf("reading latest evidence record: %w", err)
	}
	if latest == nil {
		lines = append(lines, "evidence ledger: empty")
	} else {
		lines = append(lines, fmt.Sprintf("last run: %s (%s) success=%v at %s", latest.Command, latest.RunID, latest.Success, latest.Timestamp.Format(time.RFC3339)))
	}

	return handlerResult{Success: true, Message: strings.Join(lines, "\n")}, nil
}

func handleStatus(_ context.Context, e *Engine, gctx *gate.Context, _ []string) (handlerResult, error) {
	st, err := e.Rails.ReadState()
	if err != nil {
		return handlerResult{}, err
	}
	next := rails.NextSuggestedCommand(st.CurrentStage)
	msg := fmt.Sprintf("stage: %s\ncompleted: %v\nnext suggested command: kie %s", st.CurrentStage, st.CompletedStages, next)
	return handlerResult{Success: true, Message: msg}, nil
}

// handleInterview drives the spec interview non-interactively: its
// positional args are the same "key=value" pairs `spec --set` accepts,
// since kie has no TTY prompt loop in this form — the consultant
// supplies answers as CLI arguments instead.
func handleInterview(_ context.Context, e *Engine, gctx *gate.Context, args []string) (handlerResult, error) {
	sp, _ := ReadSpec(e.Workspace)
	if sp == nil {
		sp = &domain.Spec{}
	}
	if err := ParseKVArgs(sp, args); err != nil {
		return handlerResult{}, err
	}
	if err := WriteSpec(e.Workspace, sp, time.Now()); err != nil {
		return handlerResult{}, fmt.Errorf("writing spec: %w", err)
	}

	var warnings []string
	success := true
	if err := ValidateSpec(sp); err != nil {
		warnings = append(warnings, "spec incomplete: "+err.Error())
		success = gctx.CurrentStage != domain.StageStartKIE // still lets bootstrap->spec advance happen once required fields land
	}

	sum, err := workspace.SHA256File(SpecPath(e.Workspace))
	if err != nil {
		return handlerResult{}, err
	}
	result := handlerResult{
		Success:  success && err == nil,
		Outputs:  []domain.ArtifactRef{{Path: SpecPath(e.Workspace), SHA256: sum}},
		Warnings: warnings,
		Message:  "Spec updated.",
	}
	if success && gctx.CurrentStage == domain.StageStartKIE && sp.ProjectName != "" && sp.Objective != "" && sp.ProjectType != "" {
		result.TargetStage = domain.StageSpec
	}
	return result, nil
}

// handleSpec implements `spec --init`, `spec --set key=value`, and
// `spec --repair`.
func handleSpec(_ context.Context, e *Engine, gctx *gate.Context, args []string) (handlerResult, error) {
	sp, specErr := ReadSpec(e.Workspace)

	switch {
	case containsArg(args, "--init"):
		if sp == nil {
			sp = &domain.Spec{}
		}
		if err := ParseKVArgs(sp, args); err != nil {
			return handlerResult{}, err
		}

	case containsArg(args, "--repair"):
		if sp == nil {
			sp = &domain.Spec{}
		}
		fixed := repairSpec(sp)
		if _, err := e.Rails.Reset(domain.StageSpec); err != nil && gctx.CurrentStage != domain.StageStartKIE {
			return handlerResult{}, fmt.Errorf("resetting rails for repair: %w", err)
		}
		if err := WriteSpec(e.Workspace, sp, time.Now()); err != nil {
			return handlerResult{}, err
		}
		sum, err := workspace.SHA256File(SpecPath(e.Workspace))
		if err != nil {
			return handlerResult{}, err
		}
		return handlerResult{
			Success: true,
			Outputs: []domain.ArtifactRef{{Path: SpecPath(e.Workspace), SHA256: sum}},
			Message: fmt.Sprintf("Repaired spec fields: %v. Rails reset to stage %q.", fixed, domain.StageSpec),
		}, nil

	case containsArg(args, "--set"):
		if sp == nil {
			return handlerResult{}, fmt.Errorf("no spec to set fields on; run `kie spec --init` first")
		}
		if specErr != nil {
			// still allow repairing a broken spec via --set
		}
		if err := ParseKVArgs(sp, args); err != nil {
			return handlerResult{}, err
		}

	default:
		if sp == nil {
			return handlerResult{Success: true, Message: "No spec yet. Run `kie spec --init project_name=... objective=... project_type=...`."}, nil
		}
		return handlerResult{Success: true, Message: fmt.Sprintf("%+v", *sp)}, nil
	}

	if err := WriteSpec(e.Workspace, sp, time.Now()); err != nil {
		return handlerResult{}, fmt.Errorf("writing spec: %w", err)
	}
	sum, err := workspace.SHA256File(SpecPath(e.Workspace))
	if err != nil {
		return handlerResult{}, err
	}

	result := handlerResult{
		Success: true,
		Outputs: []domain.ArtifactRef{{Path: SpecPath(e.Workspace), SHA256: sum}},
		Message: "Spec written.",
	}
	if verr := ValidateSpec(sp); verr != nil {
		result.Warnings = append(result.Warnings, "spec incomplete: "+verr.Error())
	} else if gctx.CurrentStage == domain.StageStartKIE {
		result.TargetStage = domain.StageSpec
	}
	return result, nil
}

func handleTheme(_ context.Context, e *Engine, _ *gate.Context, args []string) (handlerResult, error) {
	if len(args) == 0 {
		return handlerResult{}, fmt.Errorf("usage: kie theme {dark|light}")
	}
	theme := domain.Theme(args[0])
	if theme != domain.ThemeDark && theme != domain.ThemeLight {
		return handlerResult{}, fmt.Errorf("unknown theme %q, must be dark or light", args[0])
	}
	sp, err := ReadSpec(e.Workspace)
	if sp == nil {
		if err != nil {
			return handlerResult{}, fmt.Errorf("spec is invalid: %w", err)
		}
		return handlerResult{}, fmt.Errorf("no spec found; run `kie spec --init` first")
	}
	sp.Theme = theme
	if err := WriteSpec(e.Workspace, sp, time.Now()); err != nil {
		return handlerResult{}, err
	}
	sum, err := workspace.SHA256File(SpecPath(e.Workspace))
	if err != nil {
		return handlerResult{}, err
	}
	return handlerResult{
		Success: true,
		Outputs: []domain.ArtifactRef{{Path: SpecPath(e.Workspace), SHA256: sum}},
		Message: "Theme set to " + string(theme),
	}, nil
}

func handleEDA(_ context.Context, e *Engine, _ *gate.Context, args []string) (handlerResult, error) {
	path, err := resolveDataFile(e.Workspace, args)
	if err != nil {
		return handlerResult{}, err
	}

	table, err := loader.Load(path)
	if err != nil {
		return handlerResult{}, fmt.Errorf("loading %s: %w", path, err)
	}
	profile := loader.Profile(path, table, time.Now())

	outPath := e.Workspace.Path("outputs", "eda_profile.json")
	if err := workspace.WriteJSONAtomic(outPath, profile); err != nil {
		return handlerResult{}, fmt.Errorf("writing eda profile: %w", err)
	}
	sum, err := workspace.SHA256File(outPath)
	if err != nil {
		return handlerResult{}, err
	}

	var warnings []string
	if len(profile.QualityWarnings) > 0 {
		warnings = append(warnings, profile.QualityWarnings...)
	}

	return handlerResult{
		Success:     true,
		Outputs:     []domain.ArtifactRef{{Path: outPath, SHA256: sum}},
		Warnings:    warnings,
		TargetStage: domain.StageEDA,
		Message:     fmt.Sprintf("Profiled %d columns, %d rows from %s", len(profile.Columns), profile.Shape[0], path),
		SkillsRun:   []string{"load", "profile"},
	}, nil
}

func handleAnalyze(_ context.Context, e *Engine, _ *gate.Context, _ []string) (handlerResult, error) {
	profilePath := e.Workspace.Path("outputs", "eda_profile.json")
	var profile domain.EDAProfile
	if err := workspace.ReadJSON(profilePath, &profile); err != nil {
		return handlerResult{}, fmt.Errorf("reading eda profile: %w", err)
	}

	table, err := loader.Load(profile.SourcePath)
	if err != nil {
		return handlerResult{}, fmt.Errorf("reloading source data %s: %w", profile.SourcePath, err)
	}

	sp, _ := ReadSpec(e.Workspace)
	var overrides map[domain.Role]string
	objective := ""
	if sp != nil {
		overrides = sp.ColumnMapping
		objective = sp.Objective
	}

	mapping := mapper.Map(&profile, overrides, time.Now())
	insights := analyzer.Analyze(table, mapping)
	triaged := triage.Run(insights, objective, mapping,
		triage.Weights{Alpha: e.Config.Triage.Alpha, Beta: e.Config.Triage.Beta, Gamma: e.Config.Triage.Gamma},
		triage.Floors{Magnitude: 0.1, Confidence: 0.2},
	)
	triaged = capInsights(triaged, e.Config.Triage.MaxInsightsPerRun)
	plan := planner.Plan(triaged, mapping, time.Now())

	mappingPath := e.Workspace.Path("outputs", "column_mapping.json")
	insightsPath := e.Workspace.Path("outputs", "raw_insights.json")
	planPath := e.Workspace.Path("outputs", "visualization_plan.json")

	if err := workspace.WriteJSONAtomic(mappingPath, mapping); err != nil {
		return handlerResult{}, err
	}
	if err := workspace.WriteJSONAtomic(insightsPath, triaged); err != nil {
		return handlerResult{}, err
	}
	if err := workspace.WriteJSONAtomic(planPath, plan); err != nil {
		return handlerResult{}, err
	}

	refs, err := ledgerHashRefs(mappingPath, insightsPath, planPath)
	if err != nil {
		return handlerResult{}, err
	}

	kept := 0
	for _, ins := range triaged {
		if ins.Disposition == domain.DispositionKeep {
			kept++
		}
	}

	var warnings []string
	if len(mapping.UnassignedRoles) > 0 {
		warnings = append(warnings, fmt.Sprintf("unassigned roles: %v", mapping.UnassignedRoles))
	}

	return handlerResult{
		Success:     true,
		Outputs:     refs,
		Warnings:    warnings,
		TargetStage: domain.StageAnalyze,
		Message:     fmt.Sprintf("%d insights kept of %d generated", kept, len(triaged)),
		SkillsRun:   []string{"map", "analyze", "triage", "plan"},
	}, nil
}

func handleBuild(_ context.Context, e *Engine, gctx *gate.Context, args []string) (handlerResult, error) {
	target := gctx.BuildTarget
	if target == "" && len(args) > 0 {
		target = args[0]
	}
	switch target {
	case "presentation", "dashboard", "report":
	default:
		return handlerResult{}, fmt.Errorf("usage: kie build {presentation|dashboard|report}")
	}

	var plan domain.VisualizationPlan
	if err := workspace.ReadJSON(e.Workspace.Path("outputs", "visualization_plan.json"), &plan); err != nil {
		return handlerResult{}, fmt.Errorf("reading visualization plan: %w", err)
	}
	sp, _ := ReadSpec(e.Workspace)
	theme := domain.ThemeLight
	if sp != nil && sp.HasTheme() {
		theme = sp.Theme
	}

	table, columns := loadSourceTable(e.Workspace)
	charts := buildChartConfigs(&plan, theme, table)

	mode := brand.Strict
	if e.Config.Brand.Mode == string(brand.Lenient) {
		mode = brand.Lenient
	}
	validator := brand.New(mode)
	report := validator.ValidateAll(charts, columns)

	chartsDir := e.Workspace.Path("outputs", "charts")
	var outputPaths []string
	for name, cfg := range charts {
		p := filepath.Join(chartsDir, sanitizeFilename(name)+".json")
		if err := workspace.WriteJSONAtomic(p, cfg); err != nil {
			return handlerResult{}, fmt.Errorf("writing chart %s: %w", name, err)
		}
		outputPaths = append(outputPaths, p)
	}

	switch target {
	case "report":
		xlsxPath := e.Workspace.Path("exports", "report.xlsx")
		if err := writeReportWorkbook(xlsxPath, &plan); err != nil {
			return handlerResult{}, fmt.Errorf("writing report workbook: %w", err)
		}
		outputPaths = append(outputPaths, xlsxPath)
	case "presentation", "dashboard":
		summaryPath := e.Workspace.Path("exports", target+".md")
		if err := workspace.WriteFileAtomic(summaryPath, []byte(renderBuildSummary(target, &plan))); err != nil {
			return handlerResult{}, err
		}
		outputPaths = append(outputPaths, summaryPath)
	}

	refs, err := ledgerHashRefs(outputPaths...)
	if err != nil {
		return handlerResult{}, err
	}

	success := !report.Blocks(mode)
	var warnings []string
	for _, issue := range report.Issues {
		if issue.Severity != brand.Critical {
			warnings = append(warnings, string(issue.Class)+": "+issue.Message)
		}
	}

	result := handlerResult{
		Success:     success,
		Outputs:     refs,
		Warnings:    warnings,
		BrandReport: &report,
		Message:     fmt.Sprintf("Built %s target: %d chart(s), brand status %s", target, len(charts), report.Status),
		SkillsRun:   []string{"build", "brand_validate"},
	}
	if success {
		result.TargetStage = domain.StageBuild
	}
	return result, nil
}

func handlePreview(_ context.Context, e *Engine, gctx *gate.Context, _ []string) (handlerResult, error) {
	chartsDir := e.Workspace.Path("outputs", "charts")
	entries, err := os.ReadDir(chartsDir)
	if err != nil || len(entries) == 0 {
		return handlerResult{}, fmt.Errorf("no built charts found under %s; run `kie build` first", chartsDir)
	}

	charts := map[string]*domain.ChartConfig{}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		var cfg domain.ChartConfig
		p := filepath.Join(chartsDir, ent.Name())
		if err := workspace.ReadJSON(p, &cfg); err != nil {
			continue
		}
		charts[ent.Name()] = &cfg
	}

	mode := brand.Strict
	if e.Config.Brand.Mode == string(brand.Lenient) {
		mode = brand.Lenient
	}
	report := brand.New(mode).ValidateAll(charts, nil)

	success := !report.Blocks(mode)
	result := handlerResult{
		Success:     success,
		BrandReport: &report,
		Message:     fmt.Sprintf("Preview brand check: %s (%d critical, %d warnings)", report.Status, report.Critical, report.Warnings),
		SkillsRun:   []string{"brand_validate"},
	}
	if success {
		result.TargetStage = domain.StagePreview
	}
	return result, nil
}

func handleValidate(_ context.Context, e *Engine, _ *gate.Context, _ []string) (handlerResult, error) {
	chartsDir := e.Workspace.Path("outputs", "charts")
	entries, _ := os.ReadDir(chartsDir)

	charts := map[string]*domain.ChartConfig{}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		var cfg domain.ChartConfig
		p := filepath.Join(chartsDir, ent.Name())
		if err := workspace.ReadJSON(p, &cfg); err != nil {
			continue
		}
		charts[ent.Name()] = &cfg
	}

	mode := brand.Strict
	if e.Config.Brand.Mode == string(brand.Lenient) {
		mode = brand.Lenient
	}
	report := brand.New(mode).ValidateAll(charts, nil)

	return handlerResult{
		Success:     true, // validate is informational; it never itself blocks Rails
		BrandReport: &report,
		Message:     fmt.Sprintf("Brand validation: %s (%d critical, %d warnings, %d info)", report.Status, report.Critical, report.Warnings, report.Infos),
		SkillsRun:   []string{"brand_validate"},
	}, nil
}

// handleGo chains through the Rails sequence one stage at a time,
// re-entering the full pre-gate/handler/post-gate/ledger lifecycle for
// each stage through e.Run itself rather than calling a stage handler
// directly — Rails only ever advances through AttemptTransition, which
// lives inside Run, so each chained stage needs its own Run to actually
// move the workflow forward. With --full it keeps going until a stage
// fails to advance; without it, it runs exactly one step. go never does
// `theme`/`interview` on its own behalf — those require consultant-
// supplied values it cannot invent. go's own TargetStage stays unset:
// every advance already happened inside the nested Run calls.
func handleGo(ctx context.Context, e *Engine, gctx *gate.Context, args []string) (handlerResult, error) {
	full := containsArg(args, "--full")

	var messages []string
	var allWarnings []string

	for {
		st, err := e.Rails.ReadState()
		if err != nil {
			return handlerResult{}, err
		}
		next := rails.NextStage(st.CurrentStage)
		if next == "" {
			messages = append(messages, "Rails workflow already complete (preview).")
			break
		}

		verb, buildTarget := verbForStage(next)
		if verb == "" {
			messages = append(messages, fmt.Sprintf("stage %s requires manual input (interview/theme); run it directly", next))
			break
		}

		sub, err := e.Run(ctx, verb, nil, gctx.Force, buildTarget)
		if err != nil {
			return handlerResult{}, fmt.Errorf("running %s: %w", verb, err)
		}
		messages = append(messages, sub.Message)
		if sub.Decision == gate.Block {
			break
		}
		if sub.Decision == gate.Warn {
			allWarnings = append(allWarnings, sub.Message)
		}

		if !full {
			break
		}
	}

	return handlerResult{
		Success:  true,
		Warnings: allWarnings,
		Message:  strings.Join(messages, "\n"),
	}, nil
}

func verbForStage(stage domain.Stage) (verb string, buildTarget string) {
	switch stage {
	case domain.StageEDA:
		return "eda", ""
	case domain.StageAnalyze:
		return "analyze", ""
	case domain.StageBuild:
		return "build", "presentation"
	case domain.StagePreview:
		return "preview", ""
	default:
		return "", ""
	}
}

func containsArg(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func resolveDataFile(ws *workspace.Workspace, args []string) (string, error) {
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			return a, nil
		}
	}
	entries, err := os.ReadDir(ws.Path("data"))
	if err != nil {
		return "", fmt.Errorf("reading data directory: %w", err)
	}
	var candidates []string
	for _, e := range entries {
		if !e.IsDir() {
			candidates = append(candidates, e.Name())
		}
	}
	sort.Strings(candidates)
	if len(candidates) == 0 {
		return "", fmt.Errorf("no data file found under data/")
	}
	return ws.Path("data", candidates[0]), nil
}

// loadSourceTable reloads the profiled source file once and returns
// both the table itself (for chartData's real aggregation) and its
// reshaping into the raw per-column samples the Brand Validator's
// dataset-level rules (synthetic-data, data-quality) need. It returns
// a nil table and samples rather than failing the build when no EDA
// profile is on disk yet, since a chart can still be checked on
// structure alone.
func loadSourceTable(ws *workspace.Workspace) (*loader.Table, []brand.ColumnSample) {
	var profile domain.EDAProfile
	if err := workspace.ReadJSON(ws.Path("outputs", "eda_profile.json"), &profile); err != nil {
		return nil, nil
	}
	table, err := loader.Load(profile.SourcePath)
	if err != nil {
		return nil, nil
	}
	samples := make([]brand.ColumnSample, 0, len(table.Columns))
	for _, col := range table.Columns {
		samples = append(samples, brand.ColumnSample{Name: col, Values: table.Column(col)})
	}
	return table, samples
}

func ledgerHashRefs(paths ...string) ([]domain.ArtifactRef, error) {
	refs := make([]domain.ArtifactRef, 0, len(paths))
	for _, p := range paths {
		sum, err := workspace.SHA256File(p)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", p, err)
		}
		refs = append(refs, domain.ArtifactRef{Path: p, SHA256: sum})
	}
	return refs, nil
}

func capInsights(insights []domain.RawInsight, max int) []domain.RawInsight {
	if max <= 0 {
		return insights
	}
	kept := 0
	out := make([]domain.RawInsight, 0, len(insights))
	for _, ins := range insights {
		if ins.Disposition == domain.DispositionKeep {
			if kept >= max {
				ins.Disposition = domain.DispositionSuppress
				ins.SuppressReason = "exceeded max_insights_per_run"
			} else {
				kept++
			}
		}
		out = append(out, ins)
	}
	return out
}

func sanitizeFilename(s string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")
	return r.Replace(strings.ToLower(s))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderBuildSummary(target string, plan *domain.VisualizationPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s build summary\n\n", capitalize(target))
	for _, item := range plan.Items {
		if item.Suppressed {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n_%s · priority %s_\n\n", item.Title, item.Rationale, item.ChartType, formatFloat(item.Priority))
	}
	return sb.String()
}

// writeReportWorkbook renders kept visualization plan items into a
// single-sheet Excel workbook, formatting priority scores through
// shopspring/decimal so the numeric text matches what the chart configs
// themselves would render (no binary float artifacts like 0.30000000004).
func writeReportWorkbook(path string, plan *domain.VisualizationPlan) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Insights")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range []string{"Title", "Chart Type", "Priority", "Rationale"} {
		header.AddCell().SetString(h)
	}

	for _, item := range plan.Items {
		if item.Suppressed {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetString(item.Title)
		row.AddCell().SetString(string(item.ChartType))
		priority := decimal.NewFromFloat(item.Priority).Round(4)
		row.AddCell().SetString(priority.String())
		row.AddCell().SetString(item.Rationale)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return file.Save(path)
}
