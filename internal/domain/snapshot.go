package domain

// Snapshot is the read-only data model for one dashboard session.
// It is created once at load time and never mutated afterwards.
type Snapshot struct {
	Students         StudentPopulation  `json:"students"`
	Attendance       AttendanceRecord   `json:"attendance"`
	Compliance       []ComplianceTask   `json:"compliance"`
	Validation       ValidationSummary  `json:"validation"`
	Strategic        StrategicSeries    `json:"strategic"`
	Analytics        Analytics          `json:"analytics"`
	ActivityLog      []ActivityLogEntry `json:"activityLog"`
	Courses          []Course           `json:"courses"`
	Conflicts        []ScheduleConflict `json:"conflicts"`
	HighRiskStudents []HighRiskStudent  `json:"highRiskStudents"`
	Submissions      []SubmissionRecord `json:"submissions"`
}

// GradeCount pairs a grade level (6-12) with a count.
type GradeCount struct {
	Grade int `json:"grade"`
	Count int `json:"count"`
}

// CategoryCount pairs a category label with a count. Slices of these keep
// the snapshot's presentation order.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StudentPopulation struct {
	Total            int             `json:"total"`
	ByGrade          []GradeCount    `json:"byGrade"`
	Demographics     []CategoryCount `json:"demographics"`
	SpecialEd        int             `json:"sped"`
	EnglishLearners  int             `json:"ell"`
	FreeReducedLunch int             `json:"frl"`
}

// CountForGrade returns the enrolled count for a grade, or 0 if the grade is unknown.
func (p StudentPopulation) CountForGrade(grade int) int {
	for _, g := range p.ByGrade {
		if g.Grade == grade {
			return g.Count
		}
	}
	return 0
}

type AttendanceRecord struct {
	Daily          []float64       `json:"daily"`
	ChronicAbsence []GradeCount    `json:"chronicAbsence"`
	AbsenceReasons []CategoryCount `json:"absenceReasons"`
	// ChronicByDemographic is aligned with StudentPopulation.Demographics.
	ChronicByDemographic []int          `json:"chronicByDemographic"`
	TruancyQueue         []TruancyEntry `json:"truancyQueue"`
}

type TruancyEntry struct {
	StudentID   string  `json:"id"`
	Name        string  `json:"name"`
	Grade       int     `json:"grade"`
	Absences    int     `json:"absences"`
	Rate        float64 `json:"rate"`
	Tier        Tier    `json:"tier"`
	LastContact string  `json:"lastContact"`
	RiskScore   float64 `json:"riskScore"`
}

type ComplianceTask struct {
	Task      string     `json:"task"`
	Owner     string     `json:"owner"`
	Deadline  string     `json:"deadline"`
	Status    TaskStatus `json:"status"`
	Category  string     `json:"category"`
	DaysUntil int        `json:"daysUntil"`
	Priority  Priority   `json:"priority"`
}

type ValidationSummary struct {
	TotalRecords int                  `json:"totalRecords"`
	ValidRecords int                  `json:"validRecords"`
	Issues       []ValidationIssue    `json:"issues"`
	Duplicates   []DuplicateCandidate `json:"duplicates"`
	Rules        []ValidationRule     `json:"rules"`
}

// InvalidRecords is the number of records that failed validation.
func (v ValidationSummary) InvalidRecords() int {
	return v.TotalRecords - v.ValidRecords
}

type ValidationIssue struct {
	Type     string   `json:"type"`
	Count    int      `json:"count"`
	Severity Severity `json:"severity"`
	Affected string   `json:"affected"`
	Category string   `json:"category"`
}

type DuplicateCandidate struct {
	ID1        string  `json:"id1"`
	ID2        string  `json:"id2"`
	Name1      string  `json:"name1"`
	Name2      string  `json:"name2"`
	DOB1       string  `json:"dob1"`
	DOB2       string  `json:"dob2"`
	Confidence float64 `json:"confidence"`
}

// DOBMatch reports whether both candidates share a birth date.
func (d DuplicateCandidate) DOBMatch() bool {
	return d.DOB1 == d.DOB2
}

type ValidationRule struct {
	Rule   string     `json:"rule"`
	Passed int        `json:"passed"`
	Failed int        `json:"failed"`
	Status RuleStatus `json:"status"`
}

type StrategicSeries struct {
	Achievement    AchievementSeries `json:"achievement"`
	Enrollment     EnrollmentSeries  `json:"enrollment"`
	Financial      FinancialSeries   `json:"financial"`
	StaffRetention float64           `json:"staffRetention"`
}

type AchievementSeries struct {
	Years  []int     `json:"years"`
	Actual []float64 `json:"actual"`
	Target []float64 `json:"target"`
}

type EnrollmentSeries struct {
	Years    []int `json:"years"`
	Actual   []int `json:"actual"`
	Target   []int `json:"target"`
	Forecast []int `json:"forecast"`
}

type FinancialSeries struct {
	Years  []int     `json:"years"`
	Margin []float64 `json:"margin"`
}

// Analytics holds the predictive and assessment series shown on the analytics page.
type Analytics struct {
	FeatureImportance []WeightedFeature `json:"featureImportance"`
	MapGrowth         MapGrowthSeries   `json:"mapGrowth"`
	Cohort            CohortSeries      `json:"cohort"`
}

type WeightedFeature struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type MapGrowthSeries struct {
	Grades []string `json:"grades"`
	Fall   []int    `json:"fall"`
	Winter []int    `json:"winter"`
}

type CohortSeries struct {
	Label  string   `json:"label"`
	Stages []string `json:"stages"`
	Counts []int    `json:"counts"`
}

type ActivityLogEntry struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Action    string `json:"action"`
	Status    string `json:"status"`
}

type Course struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Dept     string  `json:"dept"`
	Credits  float64 `json:"credits"`
	Sections int     `json:"sections"`
}

type ScheduleConflict struct {
	Student   string `json:"student"`
	StudentID string `json:"studentId"`
	Issue     string `json:"issue"`
	Courses   string `json:"courses"`
}

type HighRiskStudent struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Grade     int      `json:"grade"`
	RiskScore float64  `json:"riskScore"`
	Factors   []string `json:"factors"`
}

// SubmissionRecord is one past DESE submission.
type SubmissionRecord struct {
	Date    string `json:"date"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Records int    `json:"records"`
	User    string `json:"user"`
}
