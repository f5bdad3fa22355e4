// Package domain holds the KIE data model: the typed shape of every
// artifact the engine reads or writes. None of these types touch the
// filesystem themselves — see internal/workspace and internal/ledger for
// persistence.
package domain

import "time"

// Stage is a position in the Rails workflow. Stages are totally ordered
// and never skipped.
type Stage string

const (
	StageStartKIE Stage = "startkie"
	StageSpec     Stage = "spec"
	StageEDA      Stage = "eda"
	StageAnalyze  Stage = "analyze"
	StageBuild    Stage = "build"
	StagePreview  Stage = "preview"
)

// StageOrder is the fixed, total order of Rails stages. Index determines
// precedence: a stage may only be entered once every stage before it in
// this slice has completed.
var StageOrder = []Stage{StageStartKIE, StageSpec, StageEDA, StageAnalyze, StageBuild, StagePreview}

// StageIndex returns the position of a stage in StageOrder, or -1 if unknown.
func StageIndex(s Stage) int {
	for i, st := range StageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Theme is the KDS theme mode a build targets.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ProjectType enumerates the deliverable shapes KIE can be pointed at.
type ProjectType string

const (
	ProjectAnalytics    ProjectType = "analytics"
	ProjectPresentation ProjectType = "presentation"
	ProjectDashboard    ProjectType = "dashboard"
	ProjectModeling     ProjectType = "modeling"
	ProjectProposal     ProjectType = "proposal"
	ProjectResearch     ProjectType = "research"
)

// Role is a closed-vocabulary semantic column role assigned by the
// Semantic Column Mapper.
type Role string

const (
	RoleRevenue  Role = "revenue"
	RoleCost     Role = "cost"
	RoleMargin   Role = "margin"
	RoleQuantity Role = "quantity"
	RoleDate     Role = "date"
	RoleCategory Role = "category"
	RoleRegion   Role = "region"
	RoleID       Role = "id"
	RoleGeo      Role = "geo"
)

// Roles is the closed set of roles the mapper assigns, in a stable order
// used for deterministic output.
var Roles = []Role{RoleRevenue, RoleCost, RoleMargin, RoleQuantity, RoleDate, RoleCategory, RoleRegion, RoleID, RoleGeo}

// DataSource points at one consultant-provided tabular file.
type DataSource struct {
	Path string `yaml:"path" json:"path"`
}

// Spec is the user-owned requirements document. Engine reads it; only
// the interview, theme, and spec (--init, --set, --repair) commands
// mutate it.
type Spec struct {
	ProjectName   string            `yaml:"project_name" json:"project_name" validate:"required"`
	Objective     string            `yaml:"objective" json:"objective" validate:"required"`
	ProjectType   ProjectType       `yaml:"project_type" json:"project_type" validate:"required,oneof=analytics presentation dashboard modeling proposal research"`
	Client        string            `yaml:"client,omitempty" json:"client,omitempty"`
	Theme         Theme             `yaml:"theme,omitempty" json:"theme,omitempty" validate:"omitempty,oneof=dark light"`
	DataSources   []DataSource      `yaml:"data_sources,omitempty" json:"data_sources,omitempty"`
	ColumnMapping map[Role]string   `yaml:"column_mapping,omitempty" json:"column_mapping,omitempty"`
	CreatedAt     time.Time         `yaml:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `yaml:"updated_at" json:"updated_at"`
}

// HasTheme reports whether a theme has been explicitly set. Theme has no
// default — absence is a distinct state from either value.
func (s *Spec) HasTheme() bool {
	return s.Theme == ThemeDark || s.Theme == ThemeLight
}

// RailsState is the current workflow position. Only the Rails State
// Machine's single mutation surface writes this file.
type RailsState struct {
	CurrentStage    Stage            `json:"current_stage"`
	CompletedStages []Stage          `json:"completed_stages"`
	ArtifactPaths   map[Stage]string `json:"artifact_paths,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Completed reports whether a stage has already completed successfully.
func (r *RailsState) Completed(s Stage) bool {
	for _, c := range r.CompletedStages {
		if c == s {
			return true
		}
	}
	return false
}

// ColumnType is the inferred semantic type of a loaded column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnDatetime    ColumnType = "datetime"
	ColumnBoolean     ColumnType = "boolean"
	ColumnTextual     ColumnType = "textual"
	ColumnIdentifier  ColumnType = "identifier"
)

// ColumnProfile summarizes one loaded column for the EDA profile.
type ColumnProfile struct {
	Name            string     `json:"name" yaml:"name"`
	Type            ColumnType `json:"type" yaml:"type"`
	NullCount       int        `json:"null_count" yaml:"null_count"`
	NullFraction    float64    `json:"null_fraction" yaml:"null_fraction"`
	UniqueCount     int        `json:"unique_count" yaml:"unique_count"`
	UniqueFraction  float64    `json:"unique_fraction" yaml:"unique_fraction"`
	IsConstant      bool       `json:"is_constant" yaml:"is_constant"`
	HighCardinality bool       `json:"high_cardinality" yaml:"high_cardinality"`
	Mean            float64    `json:"mean,omitempty" yaml:"mean,omitempty"`
	StdDev          float64    `json:"std_dev,omitempty" yaml:"std_dev,omitempty"`
	Min             float64    `json:"min,omitempty" yaml:"min,omitempty"`
	Max             float64    `json:"max,omitempty" yaml:"max,omitempty"`
	Warnings        []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// EDAProfile is the dataset schema + quality summary. One per EDA run;
// overwrites the previous profile on rebuild.
type EDAProfile struct {
	SourcePath      string          `json:"source_path" yaml:"source_path"`
	Shape           [2]int          `json:"shape" yaml:"shape"` // [rows, columns]
	Columns         []ColumnProfile `json:"columns" yaml:"columns"`
	QualityWarnings []string        `json:"quality_warnings,omitempty" yaml:"quality_warnings,omitempty"`
	SuggestedAnalyses []string      `json:"suggested_analyses,omitempty" yaml:"suggested_analyses,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at" yaml:"generated_at"`
}

// RoleAssignment records the outcome of mapping one role to a column.
type RoleAssignment struct {
	Role      Role    `json:"role"`
	Column    string  `json:"column"`
	Tier      int     `json:"tier"`      // 0 for a spec override, otherwise 1-4, the tier at which the column was selected
	Score     float64 `json:"score"`
	Overridden bool   `json:"overridden"` // true if spec.column_mapping supplied this directly
}

// ColumnMapping is the Semantic Column Mapper's output.
type ColumnMapping struct {
	Assignments     []RoleAssignment `json:"assignments"`
	UnassignedRoles []Role           `json:"unassigned_roles,omitempty"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// ByRole returns the assignment for a role, or nil if unassigned.
func (m *ColumnMapping) ByRole(r Role) *RoleAssignment {
	for i := range m.Assignments {
		if m.Assignments[i].Role == r {
			return &m.Assignments[i]
		}
	}
	return nil
}

// InsightKind is the fixed kind-set the Statistical Analyzer produces.
type InsightKind string

const (
	KindTrend         InsightKind = "trend"
	KindComparison    InsightKind = "comparison"
	KindOutlier       InsightKind = "outlier"
	KindCorrelation   InsightKind = "correlation"
	KindConcentration InsightKind = "concentration"
	KindComposition   InsightKind = "composition"
	KindRanking       InsightKind = "ranking"
)

// TriageDisposition is what Triage decided to do with a raw insight.
type TriageDisposition string

const (
	DispositionKeep    TriageDisposition = "keep"
	DispositionSuppress TriageDisposition = "suppress"
	DispositionMerge   TriageDisposition = "merge"
)

// RawInsight is a single analytic finding produced by the Statistical Analyzer.
type RawInsight struct {
	ID            string            `json:"id"`
	Kind          InsightKind       `json:"kind"`
	Entities      []string          `json:"entities"`
	Magnitude     float64           `json:"magnitude"`  // standardized 0-1
	Confidence    float64           `json:"confidence"` // derived from sample support
	SourceColumns []string          `json:"source_columns"`
	Narrative     string            `json:"narrative"`

	// Set by Triage. Zero-valued until triage runs.
	Disposition   TriageDisposition `json:"disposition,omitempty"`
	MergedInto    string            `json:"merged_into,omitempty"`
	SuppressReason string           `json:"suppress_reason,omitempty"`
	Priority      float64           `json:"priority,omitempty"`
}

// ChartType enumerates the render-ready chart shapes the Planner may emit.
type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartArea    ChartType = "area"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
	ChartCombo   ChartType = "combo"
)

// DataSliceSpec describes how to derive a chart's data from the source table.
type DataSliceSpec struct {
	Filter    string   `json:"filter,omitempty"`
	GroupBy   []string `json:"group_by,omitempty"`
	Aggregate string   `json:"aggregate,omitempty"`
}

// VisualizationPlanItem is one ordered chart intent.
type VisualizationPlanItem struct {
	ChartType     ChartType     `json:"chart_type"`
	DataSliceSpec DataSliceSpec `json:"data_slice_spec"`
	X             string        `json:"x"`
	Y             string        `json:"y"`
	Title         string        `json:"title"`
	Subtitle      string        `json:"subtitle,omitempty"`
	Rationale     string        `json:"rationale"`
	Priority      float64       `json:"priority"`
	InsightRefs   []string      `json:"insight_refs"`
	Suppressed    bool          `json:"suppressed,omitempty"`
}

// VisualizationPlan is the sole legal input for chart generation.
type VisualizationPlan struct {
	Items       []VisualizationPlanItem `json:"items"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// AxisStyle mirrors the wire-format axis config: never gridlines, never
// tick/axis lines, per the brand invariant.
type AxisStyle struct {
	AxisLine bool   `json:"axisLine"`
	TickLine bool   `json:"tickLine"`
	Tick     string `json:"tick,omitempty"`
}

// Formatter describes a number/currency/percentage renderer.
type Formatter struct {
	Type string `json:"type"`
}

// ChartConfig is the concrete, render-ready JSON artifact.
type ChartConfig struct {
	Type     ChartType      `json:"type"`
	Data     []map[string]any `json:"data"`
	Title    string         `json:"title,omitempty"`
	Subtitle string         `json:"subtitle,omitempty"`
	Config   ChartConfigBody `json:"config"`
}

// ChartConfigBody is the nested "config" object of a ChartConfig.
type ChartConfigBody struct {
	GridLines   bool              `json:"gridLines"`
	XAxis       AxisStyle         `json:"xAxis,omitempty"`
	YAxis       AxisStyle         `json:"yAxis,omitempty"`
	FontFamily  string            `json:"fontFamily"`
	Colors      []string          `json:"colors"`
	Legend      bool              `json:"legend"`
	Tooltip     bool              `json:"tooltip"`
	Formatters  map[string]Formatter `json:"formatters,omitempty"`
}
