package domain

type TaskStatus string

const (
	TaskComplete   TaskStatus = "Complete"
	TaskInProgress TaskStatus = "In Progress"
	TaskOverdue    TaskStatus = "Overdue"
	TaskNotStarted TaskStatus = "Not Started"
)

// BadgeClass maps a task status to its status-badge modifier.
// Unknown statuses fall back to "not-started".
func (s TaskStatus) BadgeClass() string {
	switch s {
	case TaskComplete:
		return "complete"
	case TaskInProgress:
		return "in-progress"
	case TaskOverdue:
		return "overdue"
	default:
		return "not-started"
	}
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
)

// RuleStatus is the outcome class of a validation rule or DESE check.
type RuleStatus string

const (
	RulePass    RuleStatus = "pass"
	RuleWarning RuleStatus = "warning"
	RuleError   RuleStatus = "error"
)

// ValidTaskStatuses is the canonical set of accepted compliance task statuses.
var ValidTaskStatuses = map[TaskStatus]bool{
	TaskComplete: true, TaskInProgress: true, TaskOverdue: true, TaskNotStarted: true,
}

// ValidPriorities is the canonical set of accepted compliance priorities.
var ValidPriorities = map[Priority]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityCritical: true,
}

// ValidSeverities is the canonical set of accepted validation issue severities.
var ValidSeverities = map[Severity]bool{
	SeverityMedium: true, SeverityHigh: true, SeverityCritical: true,
}
