package action

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/kpi"
	"github.com/complyhub/complyhub/internal/notify"
	"github.com/dustin/go-humanize"
)

// Element ids shared between the catalog and the surfaces that render it.
const (
	FieldSQLQuery        = "sql-query-input"
	FieldQueryName       = "query-name"
	FieldModalSQL        = "modal-sql-query"
	FieldTemplate        = "template"
	FieldReportType      = "mosis-report-type"
	FieldSchedulerGrade  = "scheduler-grade"
	FieldTier            = "tier"
	FieldSeverity        = "severity"
	FieldComplianceTask  = "compliance-task-name"
	FieldComplianceOwner = "compliance-owner"
	FieldComplianceDue   = "compliance-deadline"

	TargetMOSIS     = "mosis-output"
	TargetDESE      = "dese-validation-results"
	TargetSQL       = "sql-results-container"
	TargetScheduler = "scheduler-results"

	GenerateMOSISButton = "generate-mosis-btn"
	SQLExportSection    = "sql-export-section"

	ModalAddCompliance = "add-compliance-modal"
	ModalSQL           = "sql-modal"
)

// MOSISSample is the fixed-width preview shown after report generation.
const MOSISSample = "115115000112345678900ANDERSON                 JAMES          JOHN           010120100M0708152025011125115000212345678901BROWN                   SARAH          MARIE          022520100F0708152025011125"

// Settings are the tunables the catalog reads from configuration.
type Settings struct {
	Target         float64
	SimDelay       time.Duration
	SQLDelay       time.Duration
	SchedulerDelay time.Duration
}

// DefaultSettings mirrors config.DefaultConfig.
func DefaultSettings() Settings {
	return Settings{
		Target:         95,
		SimDelay:       2 * time.Second,
		SQLDelay:       time.Second,
		SchedulerDelay: 3 * time.Second,
	}
}

// DESECheck is one row of the DESE pre-submission check table.
type DESECheck struct {
	Check   string
	Status  domain.RuleStatus
	Message string
}

// DESEChecks are the canned results of the DESE validation run.
var DESEChecks = []DESECheck{
	{"All students have State IDs", domain.RuleWarning, "2 duplicate IDs detected"},
	{"All students have birth dates", domain.RuleWarning, "1 missing birth date"},
	{"All students have entry codes", domain.RuleError, "12 missing entry codes"},
	{"Grade levels valid (K-12)", domain.RuleError, "3 invalid grade levels"},
	{"All active students have schedules", domain.RuleWarning, "8 students without schedules"},
	{"Entry/Exit dates valid", domain.RulePass, "All dates valid"},
	{"Attendance codes valid", domain.RulePass, "All codes valid"},
	{"Discipline codes valid", domain.RulePass, "All codes valid"},
}

// CheckBadge maps a check status to its status-badge class and label.
func CheckBadge(s domain.RuleStatus) (class, label string) {
	switch s {
	case domain.RulePass:
		return domain.TaskComplete.BadgeClass(), "✓ PASS"
	case domain.RuleWarning:
		return domain.TaskInProgress.BadgeClass(), "⚠ WARNING"
	default:
		return domain.TaskOverdue.BadgeClass(), "✗ FAIL"
	}
}

// Catalog builds the dashboard's action table over one snapshot.
type Catalog struct {
	snap    *domain.Snapshot
	cfg     Settings
	queries *QueryBook
}

func NewCatalog(snap *domain.Snapshot, cfg Settings) *Catalog {
	return &Catalog{snap: snap, cfg: cfg, queries: NewQueryBook()}
}

// SavedQueries is the session's query book.
func (c *Catalog) SavedQueries() *QueryBook { return c.queries }

// Registry returns a registry holding every dashboard action.
func (c *Catalog) Registry() (*Registry, error) {
	return NewRegistry(c.Actions()...)
}

func (c *Catalog) Actions() []Action {
	acts := []Action{
		{
			Name: "run-data-validation", Label: "data validation", Style: Blocking, Delay: c.cfg.SimDelay,
			Pending: fixed("Running comprehensive data validation..."),
			Run:     c.runDataValidation,
		},
		{
			Name: "validate-mosis", Label: "MOSIS validation", Style: Inline, Delay: c.cfg.SimDelay,
			Target: TargetMOSIS, Pending: fixed("Running DESE validation checks..."),
			Run: c.validateMOSIS,
		},
		{
			Name: "generate-mosis", Label: "MOSIS report generation", Style: Blocking, Delay: c.cfg.SimDelay,
			Pending: fixed("Generating MOSIS report..."),
			Run:     c.generateMOSIS,
		},
		{
			Name: "run-dese-validation", Label: "DESE validation", Style: Blocking, Delay: c.cfg.SimDelay,
			Pending: fixed("Running DESE validation checks..."),
			Run:     c.runDESEValidation,
		},
		{
			Name: "execute-sql", Label: "SQL query", Style: Blocking, Delay: c.cfg.SQLDelay,
			Fields:  []Field{{Name: FieldSQLQuery, Rule: notBlankTag, Message: "Please enter a SQL query"}},
			Pending: fixed("Executing SQL query..."),
			Run:     c.executeSQL,
		},
		{
			Name: "execute-modal-sql", Label: "SQL query",
			Fields: []Field{{Name: FieldModalSQL, Rule: notBlankTag, Message: "Please enter a query"}},
			Run: func(context.Context, Input) (Outcome, error) {
				return Outcome{
					Toast:      toast(notify.Info, "Executing SQL query..."),
					CloseModal: ModalSQL,
					Fields:     map[string]string{FieldModalSQL: ""},
				}, nil
			},
		},
		{
			Name: "load-query-template", Label: "query template",
			Fields: []Field{{Name: FieldTemplate, Rule: "oneof=" + strings.Join(TemplateNames(), " "), Message: "Unknown query template"}},
			Run: func(_ context.Context, in Input) (Outcome, error) {
				return Outcome{Fields: map[string]string{FieldSQLQuery: QueryTemplates[in.Get(FieldTemplate)]}}, nil
			},
		},
		{
			Name: "save-query", Label: "save query",
			Fields: []Field{{Name: FieldSQLQuery, Rule: notBlankTag, Message: "Please enter a query to save"}},
			Run: func(_ context.Context, in Input) (Outcome, error) {
				q := c.queries.Save(in.Get(FieldQueryName), in.Get(FieldSQLQuery))
				return Outcome{Toast: toast(notify.Success, "Query %q saved successfully", q.Name)}, nil
			},
		},
		{
			Name: "load-saved-queries", Label: "saved queries",
			Run: func(context.Context, Input) (Outcome, error) {
				n := c.queries.Len()
				if n == 0 {
					return Outcome{Toast: toast(notify.Info, "No saved queries found")}, nil
				}
				return Outcome{Toast: toast(notify.Info, "%d saved queries available", n)}, nil
			},
		},
		{
			Name: "generate-truancy-letters", Label: "truancy letters",
			Run: c.generateTruancyLetters,
		},
		{
			Name: "generate-all-truancy-letters", Label: "truancy letters",
			Run: c.generateTruancyLetters,
		},
		{
			Name: "generate-tier-letters", Label: "tier letters",
			Fields: []Field{{Name: FieldTier, Rule: "oneof=1 2 3", Message: "Please choose a tier"}},
			Run: func(_ context.Context, in Input) (Outcome, error) {
				tier, _ := strconv.Atoi(in.Get(FieldTier))
				n := c.snap.TierCount(domain.Tier(tier))
				return Outcome{Toast: toast(notify.Success, "Generating %d Tier %d truancy letters", n, tier)}, nil
			},
		},
		{
			Name: "run-auto-scheduler", Label: "automated scheduler", Style: Inline, Delay: c.cfg.SchedulerDelay,
			Target: TargetScheduler,
			Fields: []Field{{Name: FieldSchedulerGrade, Rule: "oneof=6 7 8 9 10 11 12", Message: "Please select a grade"}},
			Pending: func(in Input) string {
				return fmt.Sprintf("Running automated scheduler for Grade %s...", in.Get(FieldSchedulerGrade))
			},
			Run: c.runAutoScheduler,
		},
		{
			Name: "add-compliance-item", Label: "add compliance item",
			Fields: []Field{{Name: FieldComplianceTask, Rule: notBlankTag, Message: "Please enter a task name"}},
			Run: func(context.Context, Input) (Outcome, error) {
				return Outcome{
					Toast:      toast(notify.Success, "Compliance item added successfully"),
					CloseModal: ModalAddCompliance,
					Fields: map[string]string{
						FieldComplianceTask:  "",
						FieldComplianceOwner: "",
						FieldComplianceDue:   "",
					},
				}, nil
			},
		},
		{
			Name: "view-high-risk", Label: "high-risk students",
			Run: func(context.Context, Input) (Outcome, error) {
				return Outcome{Navigate: &Navigation{Page: "analytics", Tab: "predictive-intervention"}}, nil
			},
		},
		{
			Name: "filter-issues", Label: "issue filter",
			Fields: []Field{{Name: FieldSeverity, Rule: notBlankTag, Message: "Please choose a severity"}},
			Run: func(_ context.Context, in Input) (Outcome, error) {
				return Outcome{Toast: toast(notify.Info, "Filtering issues by: %s", in.Get(FieldSeverity))}, nil
			},
		},
		{
			Name: "fix-critical-issues", Label: "critical issue review",
			Confirm: "Review and correct critical data issues? This will open the issue review panel.",
			Run: func(context.Context, Input) (Outcome, error) {
				return Outcome{Toast: toast(notify.Info, "Opening critical issues for review")}, nil
			},
		},
	}

	for _, m := range []toastSpec{
		{"download-mosis", "MOSIS download", "Full MOSIS report download started. Format: Fixed-width text file per DESE specifications.", notify.Info},
		{"validate-mosis-output", "MOSIS output validation", "MOSIS output validated successfully", notify.Success},
		{"export-sql-results", "SQL export", "SQL query results exported to Excel", notify.Success},
		{"copy-sql-results", "SQL copy", "Results copied to clipboard", notify.Success},
		{"export-truancy", "truancy export", "Truancy intervention data exported to Excel", notify.Success},
		{"export-chronic-absence", "chronic absence export", "Chronic absence data exported to Excel", notify.Success},
		{"export-attendance-report", "attendance export", "Attendance report exported to Excel", notify.Success},
		{"export-compliance-report", "compliance export", "Compliance tracker exported to Excel", notify.Success},
		{"export-validation-report", "validation export", "Data validation report exported to Excel", notify.Success},
		{"export-dashboard", "dashboard export", "Dashboard snapshot exported to PDF", notify.Success},
		{"generate-attendance-report", "attendance report", "Monthly attendance report generated", notify.Success},
		{"generate-dese-attendance", "DESE attendance file", "DESE attendance submission file generated", notify.Success},
		{"create-section", "section creation", "Section created successfully", notify.Success},
		{"view-medium-risk", "medium-risk students", "Viewing medium risk students", notify.Info},
		{"load-audit-trail", "audit trail", "Loading audit trail...", notify.Info},
	} {
		acts = append(acts, toastAction(m.name, m.label, m.msg, m.kind))
	}
	return acts
}

// toastSpec describes an action whose only effect is a toast.
type toastSpec struct {
	name, label, msg string
	kind             notify.Kind
}

func toastAction(name, label, msg string, kind notify.Kind) Action {
	return Action{
		Name:  name,
		Label: label,
		Run: func(context.Context, Input) (Outcome, error) {
			return Outcome{Toast: &Toast{Message: msg, Kind: kind}}, nil
		},
	}
}

func (c *Catalog) runDataValidation(context.Context, Input) (Outcome, error) {
	v := c.snap.Validation
	acc := kpi.Accuracy(v)
	kind := notify.Success
	if acc < c.cfg.Target {
		kind = notify.Warning
	}
	pct := kpi.FormatNumber(acc)
	return Outcome{
		Toast:    toast(kind, "Validation complete: %s%% accuracy. %d issues found.", pct, v.InvalidRecords()),
		Announce: fmt.Sprintf("Data validation complete. %s%% accuracy", pct),
	}, nil
}

func (c *Catalog) records() string {
	return humanize.Comma(int64(c.snap.Students.Total))
}

func (c *Catalog) validateMOSIS(context.Context, Input) (Outcome, error) {
	return Outcome{
		Panel: &Panel{
			Target:  TargetMOSIS,
			Level:   "success",
			Icon:    "✓",
			Title:   "Validation Complete - Ready for Generation",
			Lines:   []string{"All DESE edit checks passed. Data is ready for MOSIS submission."},
			Heading: "Validation Summary:",
			Items: []string{
				c.records() + " student records validated",
				"All required fields present",
				"No duplicate State IDs detected",
				"All date formats valid",
				"All entry/exit codes valid",
			},
		},
		Enable:   []string{GenerateMOSISButton},
		Announce: "MOSIS validation complete. All checks passed.",
	}, nil
}

func (c *Catalog) generateMOSIS(_ context.Context, in Input) (Outcome, error) {
	reportType := in.Get(FieldReportType)
	if reportType == "" {
		reportType = "Unknown"
	}
	return Outcome{
		Panel: &Panel{
			Target: TargetMOSIS,
			Level:  "success",
			Icon:   "✓",
			Title:  "MOSIS Report Generated Successfully",
			Lines: []string{
				"Report Type: " + reportType,
				"Records: " + c.records(),
				"Format: Fixed-width per DESE specifications",
			},
			Pre:      MOSISSample,
			PreLabel: "MOSIS report sample output",
			Actions: []Ref{
				{Name: "download-mosis", Label: "📥 Download Full Report", AriaLabel: "Download full MOSIS report", Variant: "success"},
				{Name: "validate-mosis-output", Label: "✓ Validate Output", AriaLabel: "Validate MOSIS output", Variant: "secondary"},
			},
		},
		Toast:    toast(notify.Success, "MOSIS report generated successfully"),
		Announce: "MOSIS report generated and ready for download",
	}, nil
}

func (c *Catalog) runDESEValidation(context.Context, Input) (Outcome, error) {
	table := &Table{Caption: "DESE validation check results", Headers: []string{"DESE Validation Check", "Status", "Details"}}
	var errs, warns int
	for _, chk := range DESEChecks {
		switch chk.Status {
		case domain.RuleError:
			errs++
		case domain.RuleWarning:
			warns++
		}
		class, label := CheckBadge(chk.Status)
		table.Rows = append(table.Rows, []Cell{{Text: chk.Check}, {Text: label, Badge: class}, {Text: chk.Message}})
	}

	note := &Panel{Level: "warning", Icon: "⚠️", Title: "Action Required"}
	if errs > 0 {
		note.Level, note.Icon = "critical", "⛔"
	}
	note.Lines = []string{
		fmt.Sprintf("%d critical issues must be resolved before MOSIS submission.", errs),
		fmt.Sprintf("%d warnings should be reviewed.", warns),
	}

	return Outcome{
		Panel:    &Panel{Target: TargetDESE, Table: table, Note: note},
		Toast:    toast(notify.Info, "DESE validation complete"),
		Announce: fmt.Sprintf("DESE validation complete. %d critical issues found.", errs),
	}, nil
}

func (c *Catalog) executeSQL(context.Context, Input) (Outcome, error) {
	n := len(mockResults)
	return Outcome{
		Panel: &Panel{
			Target: TargetSQL,
			Level:  "success",
			Title:  fmt.Sprintf("✓ Query executed successfully - %d rows returned", n),
			Table:  mockResultTable(),
		},
		Reveal:   []string{SQLExportSection},
		Toast:    toast(notify.Success, "Query executed successfully. %d rows returned.", n),
		Announce: fmt.Sprintf("SQL query complete. %d rows returned.", n),
	}, nil
}

func (c *Catalog) generateTruancyLetters(context.Context, Input) (Outcome, error) {
	tiers := kpi.TierCounts(c.snap.Attendance.TruancyQueue)
	return Outcome{Toast: toast(notify.Success,
		"Generating %d truancy letters (Tier 1: %d, Tier 2: %d, Tier 3: %d)",
		len(c.snap.Attendance.TruancyQueue), tiers[0], tiers[1], tiers[2])}, nil
}

func (c *Catalog) runAutoScheduler(_ context.Context, in Input) (Outcome, error) {
	grade := in.Get(FieldSchedulerGrade)
	g, _ := strconv.Atoi(grade)
	n := c.snap.Students.CountForGrade(g)
	return Outcome{
		Panel: &Panel{
			Target:  TargetScheduler,
			Level:   "success",
			Icon:    "✓",
			Title:   "Scheduling Complete",
			Lines:   []string{fmt.Sprintf("Successfully scheduled %d students in Grade %s", n, grade)},
			Heading: "Results:",
			Items: []string{
				fmt.Sprintf("%d students scheduled", n),
				"0 conflicts detected",
				"Average class size: 23.4 students",
				"All prerequisites met",
			},
		},
		Toast:    toast(notify.Success, "Scheduling complete for %d students in Grade %s", n, grade),
		Announce: "Automated scheduling complete for Grade " + grade,
	}, nil
}
