package testutil

import (
	"github.com/complyhub/complyhub/internal/domain"
)

// SnapshotOption mutates a fixture snapshot.
type SnapshotOption func(*domain.Snapshot)

// NewCleanSnapshot returns a small well-formed snapshot that raises no
// alerts: nothing overdue, no tier-3 truancy, accuracy at 100% and no
// critical issues.
func NewCleanSnapshot(opts ...SnapshotOption) *domain.Snapshot {
	s := &domain.Snapshot{
		Students: domain.StudentPopulation{
			Total: 300,
			ByGrade: []domain.GradeCount{
				{Grade: 6, Count: 100}, {Grade: 7, Count: 110}, {Grade: 8, Count: 90},
			},
			Demographics: []domain.CategoryCount{{Name: "Group A", Count: 200}, {Name: "Group B", Count: 100}},
		},
		Attendance: domain.AttendanceRecord{
			Daily:                []float64{95.1, 96.2},
			ChronicAbsence:       []domain.GradeCount{{Grade: 6, Count: 4}},
			AbsenceReasons:       []domain.CategoryCount{{Name: "Illness", Count: 3}},
			ChronicByDemographic: []int{3, 1},
		},
		Compliance: []domain.ComplianceTask{
			{Task: "Annual Report", Owner: "Owner", Deadline: "2025-11-01", Status: domain.TaskInProgress,
				Category: "State Reporting", DaysUntil: 12, Priority: domain.PriorityHigh},
		},
		Validation: domain.ValidationSummary{
			TotalRecords: 300,
			ValidRecords: 300,
			Issues: []domain.ValidationIssue{
				{Type: "Missing Address", Count: 0, Severity: domain.SeverityMedium, Affected: "Contact", Category: "Contact"},
			},
		},
		Strategic: domain.StrategicSeries{
			Achievement:    domain.AchievementSeries{Years: []int{2024, 2025}, Actual: []float64{50, 55}, Target: []float64{52, 56}},
			Enrollment:     domain.EnrollmentSeries{Years: []int{2024, 2025}, Actual: []int{290, 300}, Target: []int{300, 320}},
			Financial:      domain.FinancialSeries{Years: []int{2024, 2025}, Margin: []float64{2.5, 3.5}},
			StaffRetention: 90,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithOverdueTask(name string, daysLate int) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.Compliance = append(s.Compliance, domain.ComplianceTask{
			Task: name, Owner: "Owner", Deadline: "2025-09-01", Status: domain.TaskOverdue,
			Category: "Federal Compliance", DaysUntil: -daysLate, Priority: domain.PriorityCritical,
		})
	}
}

func WithTruancy(id string, tier domain.Tier, absences int) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.Attendance.TruancyQueue = append(s.Attendance.TruancyQueue, domain.TruancyEntry{
			StudentID: id, Name: "Student " + id, Grade: 7, Absences: absences,
			Rate: 88.5, Tier: tier, LastContact: "2025-10-01", RiskScore: 0.5,
		})
	}
}

func WithValidation(valid, total int) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.Validation.ValidRecords = valid
		s.Validation.TotalRecords = total
	}
}

func WithIssue(typ string, count int, sev domain.Severity, category string) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.Validation.Issues = append(s.Validation.Issues, domain.ValidationIssue{
			Type: typ, Count: count, Severity: sev, Affected: category, Category: category,
		})
	}
}

func WithComplianceTask(task domain.ComplianceTask) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.Compliance = append(s.Compliance, task)
	}
}

func WithActivity(entry domain.ActivityLogEntry) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.ActivityLog = append(s.ActivityLog, entry)
	}
}
