package domain

import (
	"errors"
	"fmt"
)

// ErrInvariant marks a snapshot value that violates a data-model invariant.
var ErrInvariant = errors.New("snapshot invariant violated")

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
}

// Validate checks the snapshot invariants and returns every violation
// joined into one error, or nil when the snapshot is well formed.
func (s *Snapshot) Validate() error {
	var errs []error

	for _, g := range s.Students.ByGrade {
		if g.Grade < 6 || g.Grade > 12 {
			errs = append(errs, violation("students.byGrade: grade %d outside 6-12", g.Grade))
		}
		if g.Count < 0 {
			errs = append(errs, violation("students.byGrade: negative count for grade %d", g.Grade))
		}
	}
	for _, d := range s.Students.Demographics {
		if d.Count < 0 {
			errs = append(errs, violation("students.demographics: negative count for %q", d.Name))
		}
	}

	for i, rate := range s.Attendance.Daily {
		if !isPercent(rate) {
			errs = append(errs, violation("attendance.daily[%d]: %.1f outside 0-100", i, rate))
		}
	}
	for _, e := range s.Attendance.TruancyQueue {
		if e.Tier < Tier1 || e.Tier > Tier3 {
			errs = append(errs, violation("truancy %s: tier %d outside 1-3", e.StudentID, e.Tier))
		}
		if !isScore(e.RiskScore) {
			errs = append(errs, violation("truancy %s: risk score %.2f outside 0-1", e.StudentID, e.RiskScore))
		}
		if !isPercent(e.Rate) {
			errs = append(errs, violation("truancy %s: attendance rate %.1f outside 0-100", e.StudentID, e.Rate))
		}
	}

	for _, c := range s.Compliance {
		if !ValidTaskStatuses[c.Status] {
			errs = append(errs, violation("compliance %q: unknown status %q", c.Task, c.Status))
		}
		if !ValidPriorities[c.Priority] {
			errs = append(errs, violation("compliance %q: unknown priority %q", c.Task, c.Priority))
		}
		if err := checkDeadlineSign(c); err != nil {
			errs = append(errs, err)
		}
	}

	v := s.Validation
	if v.ValidRecords < 0 || v.ValidRecords > v.TotalRecords {
		errs = append(errs, violation("validation: %d valid of %d total records", v.ValidRecords, v.TotalRecords))
	}
	for _, issue := range v.Issues {
		if !ValidSeverities[issue.Severity] {
			errs = append(errs, violation("validation issue %q: unknown severity %q", issue.Type, issue.Severity))
		}
		if issue.Count < 0 {
			errs = append(errs, violation("validation issue %q: negative count", issue.Type))
		}
	}
	for _, d := range v.Duplicates {
		if !isScore(d.Confidence) {
			errs = append(errs, violation("duplicate %s/%s: confidence %.2f outside 0-1", d.ID1, d.ID2, d.Confidence))
		}
	}

	for _, h := range s.HighRiskStudents {
		if !isScore(h.RiskScore) {
			errs = append(errs, violation("high-risk %s: risk score %.2f outside 0-1", h.ID, h.RiskScore))
		}
	}

	st := s.Strategic
	if len(st.Achievement.Actual) != len(st.Achievement.Years) || len(st.Achievement.Target) != len(st.Achievement.Years) {
		errs = append(errs, violation("strategic.achievement: series not parallel to years"))
	}
	if len(st.Enrollment.Actual) != len(st.Enrollment.Years) || len(st.Enrollment.Target) != len(st.Enrollment.Years) {
		errs = append(errs, violation("strategic.enrollment: series not parallel to years"))
	}
	if len(st.Financial.Margin) != len(st.Financial.Years) {
		errs = append(errs, violation("strategic.financial: series not parallel to years"))
	}
	if !isPercent(st.StaffRetention) {
		errs = append(errs, violation("strategic.staffRetention: %.1f outside 0-100", st.StaffRetention))
	}

	return errors.Join(errs...)
}

// checkDeadlineSign enforces that a negative DaysUntil and an Overdue
// status go together. Completed tasks may carry any sign.
func checkDeadlineSign(c ComplianceTask) error {
	if c.Status == TaskComplete {
		return nil
	}
	overdue := c.Status == TaskOverdue
	if overdue && c.DaysUntil >= 0 {
		return violation("compliance %q: overdue with %d days remaining", c.Task, c.DaysUntil)
	}
	if !overdue && c.DaysUntil < 0 {
		return violation("compliance %q: %d days past deadline but status %q", c.Task, -c.DaysUntil, c.Status)
	}
	return nil
}

func isPercent(v float64) bool { return v >= 0 && v <= 100 }
func isScore(v float64) bool   { return v >= 0 && v <= 1 }
