package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/complyhub/complyhub/internal/dom"
	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/kpi"
	"github.com/complyhub/complyhub/internal/markup"
	"github.com/dustin/go-humanize"
)

// NamedChart binds a chart spec to its canvas id.
type NamedChart struct {
	Target string
	Spec   ChartSpec
}

// NamedTable binds table content to its container id.
type NamedTable struct {
	Target  string
	Headers []string
	Rows    [][]any
	Caption string
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func anys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func weekLabels(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = fmt.Sprintf("Week %d", i+1)
	}
	return out
}

var (
	noLegend     = map[string]any{"legend": map[string]any{"display": false}}
	legendBottom = map[string]any{"legend": map[string]any{"position": "bottom"}}
	legendRight  = map[string]any{"legend": map[string]any{"position": "right"}}
	fromZero     = map[string]any{"beginAtZero": true}
)

// DashboardCharts derives every dashboard chart from s. Nothing is cached;
// callers re-derive after the snapshot changes.
func DashboardCharts(s *domain.Snapshot) []NamedChart {
	v := s.Validation
	acc := kpi.FormatNumber(kpi.Accuracy(v))
	validity := []any{v.ValidRecords, v.InvalidRecords()}
	issueCats := kpi.IssuesByCategory(v.Issues)
	gradeLabels, chronic := kpi.GradeLabels(s.Attendance.ChronicAbsence)
	weeks := kpi.DeadlinesByWeek(s.Compliance)
	compCats := kpi.ComplianceByCategory(s.Compliance)
	st := s.Strategic
	an := s.Analytics

	margins := make([]any, len(st.Financial.Margin))
	for i, m := range st.Financial.Margin {
		if m > 3 {
			margins[i] = ColorSuccess
		} else {
			margins[i] = ColorWarning
		}
	}

	historical, forecast, years := enrollmentForecast(st.Enrollment)

	featureNames := make([]any, len(an.FeatureImportance))
	featureWeights := make([]any, len(an.FeatureImportance))
	for i, f := range an.FeatureImportance {
		featureNames[i], featureWeights[i] = f.Name, f.Weight
	}

	return []NamedChart{
		{"dataQualityChart", ChartSpec{
			Kind: Doughnut,
			Data: ChartData{Labels: []any{"Valid Records", "Issues Found"}, Datasets: []Dataset{{
				Data: validity, BackgroundColor: []any{ColorSuccess, ColorDanger}, BorderWidth: intp(0),
			}}},
			AriaLabel: fmt.Sprintf("Data quality: %s%% accuracy", acc),
			Options: map[string]any{"plugins": map[string]any{
				"legend": map[string]any{"position": "bottom"},
				"title":  map[string]any{"display": true, "text": acc + "% Data Accuracy"},
			}},
		}},
		{"attendanceOverviewChart", ChartSpec{
			Kind: Line,
			Data: ChartData{Labels: weekLabels(len(s.Attendance.Daily)), Datasets: []Dataset{{
				Label: "Daily Attendance Rate", Data: anys(s.Attendance.Daily),
				BorderColor: ColorPrimary, BackgroundColor: Fill(ColorPrimary), Tension: 0.4, Fill: boolp(true),
			}}},
			AriaLabel: "10-week attendance trend showing daily attendance rates",
			Options: map[string]any{
				"scales":  map[string]any{"y": map[string]any{"min": 90, "max": 100}},
				"plugins": noLegend,
			},
		}},
		{"validationDoughnutChart", ChartSpec{
			Kind: Doughnut,
			Data: ChartData{Labels: []any{"Valid", "Issues"}, Datasets: []Dataset{{
				Data: validity, BackgroundColor: []any{ColorSuccess, ColorDanger}, BorderWidth: intp(0),
			}}},
			AriaLabel: "Data validation overview",
			Options:   map[string]any{"plugins": legendBottom},
		}},
		{"validationCategoryChart", ChartSpec{
			Kind: Bar,
			Data: ChartData{Labels: anys(kpi.Names(issueCats)), Datasets: []Dataset{{
				Label: "Issues by Category", Data: anys(kpi.Counts(issueCats)), BackgroundColor: ColorWarning, BorderRadius: 6,
			}}},
			AriaLabel: "Data validation issues grouped by category",
			Options:   map[string]any{"scales": map[string]any{"y": fromZero}, "plugins": noLegend},
		}},
		{"attendanceTrendChart", ChartSpec{
			Kind: Line,
			Data: ChartData{Labels: weekLabels(len(s.Attendance.Daily)), Datasets: []Dataset{{
				Label: "Attendance Rate", Data: anys(s.Attendance.Daily),
				BorderColor: ColorSuccess, BackgroundColor: Fill(ColorSuccess), Tension: 0.4, Fill: boolp(true),
			}}},
			AriaLabel: "Attendance trend over 10 weeks",
			Options: map[string]any{
				"scales":  map[string]any{"y": map[string]any{"min": 90, "max": 100}},
				"plugins": noLegend,
			},
		}},
		{"absenceReasonsChart", ChartSpec{
			Kind: Pie,
			Data: ChartData{Labels: anys(kpi.Names(s.Attendance.AbsenceReasons)), Datasets: []Dataset{{
				Data:            anys(kpi.Counts(s.Attendance.AbsenceReasons)),
				BackgroundColor: []any{ColorDanger, ColorWarning, ColorPrimary, ColorInfo, ColorGray},
			}}},
			AriaLabel: "Distribution of absence reasons",
			Options:   map[string]any{"plugins": legendRight},
		}},
		{"chronicAbsenceByGradeChart", ChartSpec{
			Kind: Bar,
			Data: ChartData{Labels: anys(gradeLabels), Datasets: []Dataset{{
				Label: "Chronic Absence Count", Data: anys(chronic), BackgroundColor: ColorWarning, BorderRadius: 6,
			}}},
			AriaLabel: "Chronic absence count by grade level",
			Options:   map[string]any{"scales": map[string]any{"y": fromZero}, "plugins": noLegend},
		}},
		{"chronicAbsenceDemographicsChart", ChartSpec{
			Kind: Bar,
			Data: ChartData{Labels: anys(kpi.Names(s.Students.Demographics)), Datasets: []Dataset{{
				Label: "Chronic Absence Count", Data: anys(s.Attendance.ChronicByDemographic), BackgroundColor: ColorDanger, BorderRadius: 6,
			}}},
			AriaLabel: "Chronic absence by demographic groups",
			Options: map[string]any{
				"indexAxis": "y",
				"scales":    map[string]any{"x": fromZero},
				"plugins":   noLegend,
			},
		}},
		{"complianceTimelineChart", ChartSpec{
			Kind: Bar,
			Data: ChartData{Labels: anys(kpi.Names(weeks)), Datasets: []Dataset{{
				Label: "Deadlines", Data: anys(kpi.Counts(weeks)), BackgroundColor: ColorPrimary, BorderRadius: 6,
			}}},
			AriaLabel: "Compliance deadlines over the next 4 weeks",
			Options: map[string]any{
				"scales":  map[string]any{"y": map[string]any{"beginAtZero": true, "ticks": map[string]any{"stepSize": 1}}},
				"plugins": noLegend,
			},
		}},
		{"complianceCategoryChart", ChartSpec{
			Kind: Doughnut,
			Data: ChartData{Labels: anys(kpi.Names(compCats)), Datasets: []Dataset{{
				Data:            anys(kpi.Counts(compCats)),
				BackgroundColor: []any{ColorPrimary, ColorSuccess, ColorWarning, ColorInfo},
			}}},
			AriaLabel: "Compliance items by category",
			Options:   map[string]any{"plugins": legendRight},
		}},
		{"achievementChart", ChartSpec{
			Kind: Line,
			Data: ChartData{Labels: anys(st.Achievement.Years), Datasets: []Dataset{
				{Label: "Actual Performance", Data: anys(st.Achievement.Actual), BorderColor: ColorSuccess, BackgroundColor: Fill(ColorSuccess), Tension: 0.4, Fill: boolp(true)},
				{Label: "Target Goal", Data: anys(st.Achievement.Target), BorderColor: ColorDanger, BorderDash: []int{5, 5}, Fill: boolp(false)},
			}},
			AriaLabel: "Student achievement progress vs target over 5 years",
			Options: map[string]any{
				"scales":  map[string]any{"y": map[string]any{"beginAtZero": true, "max": 100}},
				"plugins": legendBottom,
			},
		}},
		{"enrollmentChart", ChartSpec{
			Kind: Line,
			Data: ChartData{Labels: anys(st.Enrollment.Years), Datasets: []Dataset{
				{Label: "Actual Enrollment", Data: anys(st.Enrollment.Actual), BorderColor: ColorPrimary, BackgroundColor: Fill(ColorPrimary), Tension: 0.4, Fill: boolp(true)},
				{Label: "Target Goal", Data: anys(st.Enrollment.Target), BorderColor: ColorDanger, BorderDash: []int{5, 5}, Fill: boolp(false)},
			}},
			AriaLabel: "Enrollment growth vs target over 5 years",
			Options:   map[string]any{"plugins": legendBottom},
		}},
		{"retentionChart", ChartSpec{
			Kind: Doughnut,
			Data: ChartData{Labels: []any{"Retained", "Left"}, Datasets: []Dataset{{
				Data:            []any{st.StaffRetention, kpi.Round(100-st.StaffRetention, 1)},
				BackgroundColor: []any{ColorSuccess, ColorTrack}, BorderWidth: intp(0),
			}}},
			AriaLabel: fmt.Sprintf("Staff retention rate: %s%% retained", kpi.FormatNumber(st.StaffRetention)),
			Options:   map[string]any{"circumference": 180, "rotation": 270, "plugins": noLegend},
		}},
		{"financialChart", ChartSpec{
			Kind: Bar,
			Data: ChartData{Labels: anys(st.Financial.Years), Datasets: []Dataset{{
				Label: "Operating Margin %", Data: anys(st.Financial.Margin), BackgroundColor: margins, BorderRadius: 6,
			}}},
			AriaLabel: "Operating margin percentage over 5 years",
			Options:   map[string]any{"scales": map[string]any{"y": fromZero}, "plugins": noLegend},
		}},
		{"featureImportanceChart", ChartSpec{
			Kind: Bar,
			Data: ChartData{Labels: featureNames, Datasets: []Dataset{{
				Label: "Feature Importance", Data: featureWeights, BackgroundColor: ColorInfo, BorderRadius: 6,
			}}},
			AriaLabel: "Machine learning model feature importance for risk prediction",
			Options: map[string]any{
				"indexAxis": "y",
				"scales":    map[string]any{"x": map[string]any{"beginAtZero": true, "max": 0.4}},
				"plugins":   noLegend,
			},
		}},
		{"enrollmentForecastChart", ChartSpec{
			Kind: Line,
			Data: ChartData{Labels: years, Datasets: []Dataset{
				{Label: "Historical Data", Data: historical, BorderColor: ColorPrimary, BackgroundColor: Fill(ColorPrimary), Fill: boolp(true)},
				{Label: "Forecast Projection", Data: forecast, BorderColor: ColorInfo, BorderDash: []int{5, 5}, BackgroundColor: Fill(ColorInfo), Fill: boolp(true)},
			}},
			AriaLabel: fmt.Sprintf("Enrollment forecast through %v", years[len(years)-1]),
			Options:   map[string]any{"plugins": legendBottom},
		}},
		{"mapGrowthChart", ChartSpec{
			Kind: Bar,
			Data: ChartData{Labels: anys(an.MapGrowth.Grades), Datasets: []Dataset{
				{Label: "Fall Assessment", Data: anys(an.MapGrowth.Fall), BackgroundColor: ColorPrimary},
				{Label: "Winter Assessment", Data: anys(an.MapGrowth.Winter), BackgroundColor: ColorSuccess},
			}},
			AriaLabel: "MAP Growth assessment scores by grade level",
			Options: map[string]any{
				"scales":  map[string]any{"y": map[string]any{"beginAtZero": false, "min": 200}},
				"plugins": legendBottom,
			},
		}},
		{"cohortChart", ChartSpec{
			Kind: Line,
			Data: ChartData{Labels: anys(an.Cohort.Stages), Datasets: []Dataset{{
				Label: an.Cohort.Label, Data: anys(an.Cohort.Counts),
				BorderColor: ColorPrimary, BackgroundColor: Fill(ColorPrimary), Tension: 0.4, Fill: boolp(true),
			}}},
			AriaLabel: an.Cohort.Label + " cohort retention from 6th grade through college",
			Options: map[string]any{
				"scales":  map[string]any{"y": map[string]any{"beginAtZero": false, "min": 100}},
				"plugins": noLegend,
			},
		}},
	}
}

// enrollmentForecast lays historical actuals and the forecast on one year
// axis. The forecast starts at the last actual year and continues one year
// per value.
func enrollmentForecast(e domain.EnrollmentSeries) (historical, forecast, years []any) {
	n := len(e.Years)
	extra := 0
	if len(e.Forecast) > 1 {
		extra = len(e.Forecast) - 1
	}
	total := n + extra
	if total == 0 {
		return nil, nil, []any{""}
	}
	years = make([]any, total)
	historical = make([]any, total)
	forecast = make([]any, total)
	for i, y := range e.Years {
		years[i] = y
		if i < len(e.Actual) {
			historical[i] = e.Actual[i]
		}
	}
	last := 0
	if n > 0 {
		last = e.Years[n-1]
	}
	for i := 0; i < extra; i++ {
		years[n+i] = last + i + 1
	}
	for i, f := range e.Forecast {
		if idx := n - 1 + i; idx >= 0 && idx < total {
			forecast[idx] = f
		}
	}
	return historical, forecast, years
}

func rowButton(label, aria, variant string) markup.HTML {
	return markup.Button{Label: label, AriaLabel: aria, Variant: variant, Small: true}.HTML()
}

// DashboardTables derives every dashboard table from s.
func DashboardTables(s *domain.Snapshot) []NamedTable {
	var activity, issues, dups, truancy, chronic, compliance, submissions, courses, conflicts, highRisk [][]any

	for _, l := range s.ActivityLog {
		activity = append(activity, []any{l.Timestamp, l.User, l.Action, markup.Badge(l.Status, l.Status)})
	}
	for _, i := range s.Validation.Issues {
		issues = append(issues, []any{
			i.Type, markup.Strong(strconv.Itoa(i.Count)),
			markup.Badge(string(i.Severity), strings.ToUpper(string(i.Severity))),
			i.Affected, rowButton("View", "View details", "secondary"),
		})
	}
	for _, d := range s.Validation.Duplicates {
		match := "✗ No"
		if d.DOBMatch() {
			match = "✓ Yes"
		}
		dups = append(dups, []any{
			d.ID1, d.Name1, d.ID2, d.Name2, match, markup.Strong(kpi.ScorePercent(d.Confidence)),
			rowButton("Merge", "Merge records", "warning"),
		})
	}
	for _, t := range s.Attendance.TruancyQueue {
		class := domain.TaskInProgress.BadgeClass()
		if t.Tier == domain.Tier3 {
			class = domain.TaskOverdue.BadgeClass()
		}
		truancy = append(truancy, []any{
			t.StudentID, t.Name, t.Grade, markup.Strong(strconv.Itoa(t.Absences)),
			kpi.FormatNumber(t.Rate) + "%", markup.Badge(class, fmt.Sprintf("Tier %d", t.Tier)),
			t.LastContact,
			markup.Button{Label: "Generate", AriaLabel: "Generate letter", Variant: "primary", Small: true,
				Action: "generate-tier-letters", Data: map[string]string{"tier": strconv.Itoa(int(t.Tier))}}.HTML(),
		})
	}
	for _, t := range s.ChronicAbsentees(10) {
		chronic = append(chronic, []any{
			t.StudentID, t.Name, t.Grade, markup.Strong(strconv.Itoa(t.Absences)),
			kpi.FormatNumber(t.Rate) + "%", markup.Badge(domain.TaskOverdue.BadgeClass(), kpi.ScorePercent(t.RiskScore)),
		})
	}
	for _, c := range s.Compliance {
		var days any = c.DaysUntil
		if c.DaysUntil <= 0 {
			days = markup.Strong(fmt.Sprintf("%d overdue", abs(c.DaysUntil)))
		}
		compliance = append(compliance, []any{
			c.Task, c.Owner, c.Category, c.Deadline, days,
			markup.Badge(string(c.Priority), strings.ToUpper(string(c.Priority))),
			markup.Badge(c.Status.BadgeClass(), string(c.Status)),
			rowButton("Edit", "Edit item", "secondary"),
		})
	}
	for _, h := range s.Submissions {
		submissions = append(submissions, []any{
			h.Date, h.Type, h.Records, markup.Badge(domain.TaskComplete.BadgeClass(), h.Status), h.User,
			rowButton("View", "View submission", "secondary"),
		})
	}
	for _, c := range s.Courses {
		courses = append(courses, []any{
			markup.Strong(c.Code), c.Name, c.Dept, c.Credits, c.Sections,
			markup.Join(rowButton("Edit", "Edit course", "secondary"), " ", rowButton("Delete", "Delete course", "danger")),
		})
	}
	for _, c := range s.Conflicts {
		conflicts = append(conflicts, []any{
			c.StudentID, c.Student, markup.Badge(domain.TaskOverdue.BadgeClass(), c.Issue), c.Courses,
			rowButton("Resolve", "Resolve conflict", "warning"),
		})
	}
	for _, h := range s.HighRiskStudents {
		highRisk = append(highRisk, []any{
			h.ID, h.Name, h.Grade,
			markup.BadgeHTML(domain.TaskOverdue.BadgeClass(), markup.Strong(kpi.ScorePercent(h.RiskScore))),
			strings.Join(h.Factors, ", "),
			rowButton("Create Plan", "Create intervention plan", "danger"),
		})
	}

	return []NamedTable{
		{"activity-log", []string{"Timestamp", "User", "Action", "Status"}, activity, "Recent system activity log"},
		{"data-issues-table", []string{"Issue Type", "Count", "Severity", "Affected Area", "Action"}, issues, "Data quality issues"},
		{"duplicates-table", []string{"Student ID 1", "Name 1", "Student ID 2", "Name 2", "DOB Match", "Confidence", "Action"}, dups, "Potential duplicate student records"},
		{"truancy-table", []string{"Student ID", "Name", "Grade", "Absences", "Attendance Rate", "Tier", "Last Contact", "Action"}, truancy, "Truancy intervention queue"},
		{"chronic-absence-table", []string{"Student ID", "Name", "Grade", "Total Absences", "Attendance Rate", "Risk Score"}, chronic, "Students with chronic absence"},
		{"compliance-table", []string{"Task", "Owner", "Category", "Deadline", "Days Until", "Priority", "Status", "Action"}, compliance, "Compliance task tracker"},
		{"submission-history-table", []string{"Submission Date", "Report Type", "Records", "Status", "Submitted By", "Actions"}, submissions, "DESE submission history"},
		{"course-catalog-table", []string{"Course Code", "Course Name", "Department", "Credits", "Sections", "Actions"}, courses, "Course catalog"},
		{"conflicts-table", []string{"Student ID", "Student Name", "Issue Type", "Details", "Action"}, conflicts, "Schedule conflicts"},
		{"high-risk-table", []string{"Student ID", "Name", "Grade", "Risk Score", "Risk Factors", "Action"}, highRisk, "High-risk students for intervention"},
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Stat card ids on the overview page.
const (
	StatTotalStudents = "stat-total-students"
	StatAccuracy      = "stat-accuracy"
	StatAttendance    = "stat-attendance"
	StatOverdue       = "stat-overdue"
	StatTier3         = "stat-tier3"
	StatCritical      = "stat-critical"
)

// Stats returns the overview stat card values keyed by element id.
func Stats(s *domain.Snapshot) map[string]string {
	return map[string]string{
		StatTotalStudents: humanize.Comma(int64(s.Students.Total)),
		StatAccuracy:      kpi.FormatNumber(kpi.Accuracy(s.Validation)) + "%",
		StatAttendance:    kpi.FormatNumber(kpi.Mean(s.Attendance.Daily, 1)) + "%",
		StatOverdue:       strconv.Itoa(s.OverdueCount()),
		StatTier3:         strconv.Itoa(s.TierCount(domain.Tier3)),
		StatCritical:      strconv.Itoa(s.IssueCountBySeverity(domain.SeverityCritical)),
	}
}

// ValidationRulesTarget holds the validation rule list.
const ValidationRulesTarget = "validation-rules-container"

// ValidationRules renders the rule list with pass/fail counts.
func (r *Renderer) ValidationRules(rules []domain.ValidationRule) error {
	n, err := r.target(ValidationRulesTarget)
	if err != nil {
		return err
	}
	parts := make([]markup.HTML, 0, len(rules))
	for _, rule := range rules {
		badge := markup.Badge(domain.TaskComplete.BadgeClass(), "✓ Pass")
		if rule.Failed > 0 {
			class := domain.TaskInProgress.BadgeClass()
			if rule.Status == domain.RuleError {
				class = domain.TaskOverdue.BadgeClass()
			}
			badge = markup.Badge(class, fmt.Sprintf("%d issues", rule.Failed))
		}
		parts = append(parts, markup.HTML(`<div class="rule-row"><div><div class="rule-name">`)+
			markup.Text(rule.Rule)+
			markup.HTML(fmt.Sprintf(`</div><div class="rule-counts">%d passed • %d failed</div></div><div>`, rule.Passed, rule.Failed))+
			badge+markup.HTML(`</div></div>`))
	}
	return setInner(n, markup.Join(parts...))
}

// Dashboard renders every chart, table and the rule list. Each widget is
// guarded on its own; failures are logged and joined into the result.
func (r *Renderer) Dashboard(s *domain.Snapshot) error {
	var errs []error
	for _, c := range DashboardCharts(s) {
		errs = append(errs, Guard(c.Target, func() error {
			_, err := r.Chart(c.Target, c.Spec)
			return err
		}))
	}
	for _, t := range DashboardTables(s) {
		errs = append(errs, Guard(t.Target, func() error {
			return r.Table(t.Target, t.Headers, t.Rows, t.Caption)
		}))
	}
	for id, v := range Stats(s) {
		errs = append(errs, Guard(id, func() error {
			n, err := r.target(id)
			if err != nil {
				return err
			}
			dom.SetText(n, v)
			return nil
		}))
	}
	errs = append(errs, Guard(ValidationRulesTarget, func() error {
		return r.ValidationRules(s.Validation.Rules)
	}))
	err := errors.Join(errs...)
	if err != nil {
		r.log.Warn("dashboard rendered with errors", "error", err)
	}
	return err
}
