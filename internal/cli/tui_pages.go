package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/complyhub/complyhub/internal/action"
	"github.com/complyhub/complyhub/internal/alert"
	"github.com/complyhub/complyhub/internal/cli/formatter"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/kpi"
	"github.com/complyhub/complyhub/internal/render"
)

// pageSpec describes one dashboard page in the terminal: its tab group, if
// any, and the actions listed under its body.
type pageSpec struct {
	ID      string
	Title   string
	Tabs    *tabGroupSpec
	Actions []string
}

type tabGroupSpec struct {
	Container string
	Tabs      []string
	Titles    []string
}

var dashboardPages = []pageSpec{
	{
		ID: "overview", Title: "Overview",
		Actions: []string{"run-data-validation", "export-dashboard", "view-high-risk", "view-medium-risk", "load-audit-trail"},
	},
	{
		ID: "data-quality", Title: "Data Quality",
		Tabs: &tabGroupSpec{
			Container: "data-quality-tabs",
			Tabs:      []string{"data-issues", "duplicates", "validation-rules"},
			Titles:    []string{"Data Issues", "Duplicates", "Validation Rules"},
		},
		Actions: []string{"run-data-validation", "fix-critical-issues", "filter-issues", "export-validation-report"},
	},
	{
		ID: "attendance", Title: "Attendance",
		Tabs: &tabGroupSpec{
			Container: "attendance-tabs",
			Tabs:      []string{"attendance-trends", "truancy-queue", "chronic-absence"},
			Titles:    []string{"Trends", "Truancy Queue", "Chronic Absence"},
		},
		Actions: []string{
			"generate-truancy-letters", "generate-all-truancy-letters", "generate-tier-letters",
			"export-truancy", "export-chronic-absence", "export-attendance-report",
			"generate-attendance-report", "generate-dese-attendance",
		},
	},
	{
		ID: "compliance", Title: "Compliance",
		Actions: []string{"add-compliance-item", "export-compliance-report"},
	},
	{
		ID: "reporting", Title: "State Reporting",
		Tabs: &tabGroupSpec{
			Container: "reporting-tabs",
			Tabs:      []string{"mosis-generator", "dese-validation", "submission-history"},
			Titles:    []string{"MOSIS Generator", "DESE Validation", "Submission History"},
		},
		Actions: []string{"validate-mosis", "generate-mosis", "download-mosis", "validate-mosis-output", "run-dese-validation"},
	},
	{
		ID: "sis", Title: "SIS Tools",
		Tabs: &tabGroupSpec{
			Container: "sis-tabs",
			Tabs:      []string{"sql-tool", "scheduler", "course-catalog", "schedule-conflicts"},
			Titles:    []string{"SQL Query Tool", "Scheduler", "Course Catalog", "Conflicts"},
		},
		Actions: []string{
			"execute-sql", "load-query-template", "save-query", "load-saved-queries",
			"export-sql-results", "copy-sql-results", "execute-modal-sql",
			"run-auto-scheduler", "create-section",
		},
	},
	{
		ID: "strategic", Title: "Strategic KPIs",
		Actions: []string{"export-dashboard"},
	},
	{
		ID: "analytics", Title: "Analytics",
		Tabs: &tabGroupSpec{
			Container: "analytics-tabs",
			Tabs:      []string{"assessment-analytics", "predictive-intervention", "enrollment-forecasting", "cohort-tracking"},
			Titles:    []string{"Assessments", "Predictive Intervention", "Enrollment Forecast", "Cohort Tracking"},
		},
		Actions: []string{"view-high-risk", "view-medium-risk"},
	},
}

// actionControls maps actions to the control whose enablement gates them.
var actionControls = map[string]string{
	"generate-mosis": action.GenerateMOSISButton,
}

func pageIDs() []string {
	ids := make([]string, len(dashboardPages))
	for i, p := range dashboardPages {
		ids[i] = p.ID
	}
	return ids
}

func pageByID(id string) (pageSpec, bool) {
	for _, p := range dashboardPages {
		if p.ID == id {
			return p, true
		}
	}
	return pageSpec{}, false
}

func (g *tabGroupSpec) title(tab string) string {
	for i, t := range g.Tabs {
		if t == tab {
			return g.Titles[i]
		}
	}
	return tab
}

// ── page bodies ──────────────────────────────────────────────

const chartWidth = 30

var statLabels = []struct{ id, label string }{
	{render.StatTotalStudents, "Total Students"},
	{render.StatAccuracy, "Data Accuracy"},
	{render.StatAttendance, "Avg Attendance"},
	{render.StatOverdue, "Overdue Items"},
	{render.StatTier3, "Tier 3 Truancy"},
	{render.StatCritical, "Critical Issues"},
}

// pageBody renders the content of page with tab active in its group.
func (s *dashState) pageBody(p pageSpec, tab string) string {
	snap := s.snap
	switch p.ID {
	case "overview":
		return s.overviewBody()
	case "data-quality":
		return dataQualityBody(snap, tab)
	case "attendance":
		return attendanceBody(snap, tab)
	case "compliance":
		return complianceBody(snap)
	case "reporting":
		return s.reportingBody(tab)
	case "sis":
		return s.sisBody(tab)
	case "strategic":
		return strategicBody(snap)
	case "analytics":
		return analyticsBody(snap, tab)
	}
	return ""
}

func (s *dashState) overviewBody() string {
	stats := render.Stats(s.snap)
	cells := make([]string, len(statLabels))
	for i, st := range statLabels {
		cells[i] = formatter.RenderBox(st.label, formatter.Bold(stats[st.id]))
	}
	var b strings.Builder
	b.WriteString(joinRows(cells, 3))
	b.WriteString("\n")
	if alerts := alert.Generate(s.snap, s.app.settings().Target); len(alerts) > 0 {
		b.WriteString(formatter.RenderAlerts(alerts))
		b.WriteString("\n")
	}
	b.WriteString(formatter.Header("Data Quality"))
	b.WriteString("\n")
	b.WriteString(formatter.RenderProgress(kpi.Accuracy(s.snap.Validation), s.app.settings().Target, chartWidth))
	b.WriteString("\n\n")
	b.WriteString(formatter.Header("Attendance Overview"))
	b.WriteString("\n")
	b.WriteString(formatter.Sparkline(s.snap.Attendance.Daily))
	b.WriteString("\n\n")
	b.WriteString(formatter.Header("Recent Activity"))
	b.WriteString("\n")
	rows := make([][]string, len(s.snap.ActivityLog))
	for i, l := range s.snap.ActivityLog {
		rows[i] = []string{l.Timestamp, l.User, l.Action, formatter.Badge(l.Status, l.Status)}
	}
	b.WriteString(formatter.RenderTable([]string{"Timestamp", "User", "Action", "Status"}, rows))
	return b.String()
}

func dataQualityBody(snap *domain.Snapshot, tab string) string {
	v := snap.Validation
	switch tab {
	case "duplicates":
		rows := make([][]string, len(v.Duplicates))
		for i, d := range v.Duplicates {
			match := "✗ No"
			if d.DOBMatch() {
				match = "✓ Yes"
			}
			rows[i] = []string{d.ID1, d.Name1, d.ID2, d.Name2, match, kpi.ScorePercent(d.Confidence)}
		}
		return formatter.RenderTable([]string{"Student ID 1", "Name 1", "Student ID 2", "Name 2", "DOB Match", "Confidence"}, rows)
	case "validation-rules":
		var b strings.Builder
		for _, r := range v.Rules {
			total := float64(r.Passed + r.Failed)
			fmt.Fprintf(&b, "%s  %s\n  %s\n",
				formatter.Badge(string(r.Status), strings.ToUpper(string(r.Status))), r.Rule,
				formatter.RenderProgress(kpi.Percentage(float64(r.Passed), total, 1), 100, chartWidth))
		}
		return b.String()
	}
	cats := kpi.IssuesByCategory(v.Issues)
	rows := make([][]string, len(v.Issues))
	for i, is := range v.Issues {
		rows[i] = []string{is.Type, strconv.Itoa(is.Count), formatter.Badge(string(is.Severity), strings.ToUpper(string(is.Severity))), is.Affected}
	}
	return formatter.Header("Issues by Category") + "\n" +
		formatter.Bars(kpi.Names(cats), floats(kpi.Counts(cats)), chartWidth) + "\n\n" +
		formatter.RenderTable([]string{"Issue Type", "Count", "Severity", "Affected Area"}, rows)
}

func attendanceBody(snap *domain.Snapshot, tab string) string {
	a := snap.Attendance
	switch tab {
	case "truancy-queue":
		rows := make([][]string, len(a.TruancyQueue))
		for i, t := range a.TruancyQueue {
			class := domain.TaskInProgress.BadgeClass()
			if t.Tier == domain.Tier3 {
				class = domain.TaskOverdue.BadgeClass()
			}
			rows[i] = []string{t.StudentID, t.Name, strconv.Itoa(t.Grade), strconv.Itoa(t.Absences),
				kpi.FormatNumber(t.Rate) + "%", formatter.Badge(class, fmt.Sprintf("Tier %d", t.Tier)), t.LastContact}
		}
		return formatter.RenderTable([]string{"Student ID", "Name", "Grade", "Absences", "Rate", "Tier", "Last Contact"}, rows)
	case "chronic-absence":
		labels, counts := kpi.GradeLabels(a.ChronicAbsence)
		chronic := snap.ChronicAbsentees(10)
		rows := make([][]string, len(chronic))
		for i, t := range chronic {
			rows[i] = []string{t.StudentID, t.Name, strconv.Itoa(t.Grade), strconv.Itoa(t.Absences),
				kpi.FormatNumber(t.Rate) + "%", kpi.ScorePercent(t.RiskScore)}
		}
		return formatter.Header("Chronic Absence by Grade") + "\n" +
			formatter.Bars(labels, floats(counts), chartWidth) + "\n\n" +
			formatter.RenderTable([]string{"Student ID", "Name", "Grade", "Total Absences", "Rate", "Risk Score"}, rows)
	}
	tiers := kpi.TierCounts(a.TruancyQueue)
	return formatter.Header("Daily Attendance") + "\n" +
		formatter.Sparkline(a.Daily) + "  " + formatter.Dim(kpi.FormatNumber(kpi.Mean(a.Daily, 1))+"% average") + "\n\n" +
		formatter.Header("Absence Reasons") + "\n" +
		formatter.Bars(kpi.Names(a.AbsenceReasons), floats(kpi.Counts(a.AbsenceReasons)), chartWidth) + "\n\n" +
		formatter.Header("Truancy Tiers") + "\n" +
		formatter.Bars([]string{"Tier 1", "Tier 2", "Tier 3"}, floats(tiers[:]), chartWidth)
}

func complianceBody(snap *domain.Snapshot) string {
	weeks := kpi.DeadlinesByWeek(snap.Compliance)
	cats := kpi.ComplianceByCategory(snap.Compliance)
	rows := make([][]string, len(snap.Compliance))
	for i, c := range snap.Compliance {
		days := strconv.Itoa(c.DaysUntil)
		if c.DaysUntil <= 0 {
			days = formatter.StyleRed.Render(fmt.Sprintf("%d overdue", -c.DaysUntil))
		}
		rows[i] = []string{c.Task, c.Owner, c.Deadline, days,
			formatter.Badge(string(c.Priority), strings.ToUpper(string(c.Priority))),
			formatter.Badge(c.Status.BadgeClass(), string(c.Status))}
	}
	return formatter.Header("Upcoming Deadlines") + "\n" +
		formatter.Bars(kpi.Names(weeks), floats(kpi.Counts(weeks)), chartWidth) + "\n\n" +
		formatter.Header("By Category") + "\n" +
		formatter.Bars(kpi.Names(cats), floats(kpi.Counts(cats)), chartWidth) + "\n\n" +
		formatter.RenderTable([]string{"Task", "Owner", "Deadline", "Days Until", "Priority", "Status"}, rows)
}

func (s *dashState) reportingBody(tab string) string {
	switch tab {
	case "dese-validation":
		return s.panelOrHint(action.TargetDESE, "Run the DESE checks to validate the submission.")
	case "submission-history":
		rows := make([][]string, len(s.snap.Submissions))
		for i, h := range s.snap.Submissions {
			rows[i] = []string{h.Date, h.Type, strconv.Itoa(h.Records), formatter.Badge(domain.TaskComplete.BadgeClass(), h.Status), h.User}
		}
		return formatter.RenderTable([]string{"Submission Date", "Report Type", "Records", "Status", "Submitted By"}, rows)
	}
	return s.panelOrHint(action.TargetMOSIS, "Validate the data before generating a MOSIS report.")
}

func (s *dashState) sisBody(tab string) string {
	switch tab {
	case "scheduler":
		return s.panelOrHint(action.TargetScheduler, "Choose a grade and run the automated scheduler.")
	case "course-catalog":
		rows := make([][]string, len(s.snap.Courses))
		for i, c := range s.snap.Courses {
			rows[i] = []string{c.Code, c.Name, c.Dept, kpi.FormatNumber(c.Credits), strconv.Itoa(c.Sections)}
		}
		return formatter.RenderTable([]string{"Course Code", "Course Name", "Department", "Credits", "Sections"}, rows)
	case "schedule-conflicts":
		rows := make([][]string, len(s.snap.Conflicts))
		for i, c := range s.snap.Conflicts {
			rows[i] = []string{c.StudentID, c.Student, formatter.Badge(domain.TaskOverdue.BadgeClass(), c.Issue), c.Courses}
		}
		return formatter.RenderTable([]string{"Student ID", "Student Name", "Issue Type", "Details"}, rows)
	}
	var b strings.Builder
	if q, ok := s.board.Field(action.FieldSQLQuery); ok && q != "" {
		b.WriteString(formatter.RenderBox("Query", q))
		b.WriteString("\n")
	}
	b.WriteString(s.panelOrHint(action.TargetSQL, "Load a template or write a query, then execute it."))
	if s.board.Revealed(action.SQLExportSection) {
		b.WriteString("\n")
		b.WriteString(formatter.Dim("Results can be exported or copied."))
	}
	return b.String()
}

func (s *dashState) panelOrHint(target, hint string) string {
	if p, ok := s.board.Panel(target); ok {
		return formatter.RenderPanel(p)
	}
	return formatter.Dim(hint)
}

func strategicBody(snap *domain.Snapshot) string {
	st := snap.Strategic
	years := func(ys []int) []string {
		out := make([]string, len(ys))
		for i, y := range ys {
			out[i] = strconv.Itoa(y)
		}
		return out
	}
	var b strings.Builder
	b.WriteString(formatter.Header("Student Achievement"))
	b.WriteString("\n")
	b.WriteString(formatter.Bars(years(st.Achievement.Years), st.Achievement.Actual, chartWidth))
	b.WriteString("\n\n")
	b.WriteString(formatter.Header("Enrollment"))
	b.WriteString("\n")
	b.WriteString(formatter.Bars(years(st.Enrollment.Years), floats(st.Enrollment.Actual), chartWidth))
	b.WriteString("\n\n")
	b.WriteString(formatter.Header("Staff Retention"))
	b.WriteString("\n")
	b.WriteString(formatter.RenderProgress(st.StaffRetention, 0, chartWidth))
	b.WriteString("\n\n")
	b.WriteString(formatter.Header("Operating Margin"))
	b.WriteString("\n")
	b.WriteString(formatter.Sparkline(st.Financial.Margin))
	return b.String()
}

func analyticsBody(snap *domain.Snapshot, tab string) string {
	an := snap.Analytics
	switch tab {
	case "predictive-intervention":
		names := make([]string, len(an.FeatureImportance))
		weights := make([]float64, len(an.FeatureImportance))
		for i, f := range an.FeatureImportance {
			names[i], weights[i] = f.Name, f.Weight
		}
		rows := make([][]string, len(snap.HighRiskStudents))
		for i, h := range snap.HighRiskStudents {
			rows[i] = []string{h.ID, h.Name, strconv.Itoa(h.Grade),
				formatter.Badge(domain.TaskOverdue.BadgeClass(), kpi.ScorePercent(h.RiskScore)), strings.Join(h.Factors, ", ")}
		}
		return formatter.Header("Risk Factors") + "\n" +
			formatter.Bars(names, weights, chartWidth) + "\n\n" +
			formatter.RenderTable([]string{"Student ID", "Name", "Grade", "Risk Score", "Risk Factors"}, rows)
	case "enrollment-forecasting":
		e := snap.Strategic.Enrollment
		labels := make([]string, 0, len(e.Years)+len(e.Forecast))
		values := make([]float64, 0, cap(labels))
		for i, y := range e.Years {
			labels = append(labels, strconv.Itoa(y))
			values = append(values, float64(e.Actual[i]))
		}
		last := 0
		if n := len(e.Years); n > 0 {
			last = e.Years[n-1]
		}
		for i, f := range e.Forecast {
			labels = append(labels, strconv.Itoa(last+i+1)+"*")
			values = append(values, float64(f))
		}
		return formatter.Header("Enrollment Forecast") + "\n" +
			formatter.Bars(labels, values, chartWidth) + "\n" + formatter.Dim("* projected")
	case "cohort-tracking":
		return formatter.Header(an.Cohort.Label) + "\n" +
			formatter.Bars(an.Cohort.Stages, floats(an.Cohort.Counts), chartWidth)
	}
	g := an.MapGrowth
	var b strings.Builder
	b.WriteString(formatter.Header("MAP Growth: Fall"))
	b.WriteString("\n")
	b.WriteString(formatter.Bars(g.Grades, floats(g.Fall), chartWidth))
	b.WriteString("\n\n")
	b.WriteString(formatter.Header("MAP Growth: Winter"))
	b.WriteString("\n")
	b.WriteString(formatter.Bars(g.Grades, floats(g.Winter), chartWidth))
	return b.String()
}

func floats(vs []int) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

// joinRows lays cells out n per row.
func joinRows(cells []string, n int) string {
	var rows []string
	for i := 0; i < len(cells); i += n {
		end := min(i+n, len(cells))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}
	return strings.Join(rows, "\n")
}
