package domain

// OverdueCount returns the number of compliance tasks with status Overdue.
func (s *Snapshot) OverdueCount() int {
	n := 0
	for _, c := range s.Compliance {
		if c.Status == TaskOverdue {
			n++
		}
	}
	return n
}

// TierCount returns the number of truancy entries at the given tier.
func (s *Snapshot) TierCount(t Tier) int {
	n := 0
	for _, e := range s.Attendance.TruancyQueue {
		if e.Tier == t {
			n++
		}
	}
	return n
}

// IssueCountBySeverity sums issue counts for one severity.
func (s *Snapshot) IssueCountBySeverity(sev Severity) int {
	n := 0
	for _, i := range s.Validation.Issues {
		if i.Severity == sev {
			n += i.Count
		}
	}
	return n
}

// ChronicAbsentees returns truancy entries with at least minAbsences absences.
func (s *Snapshot) ChronicAbsentees(minAbsences int) []TruancyEntry {
	var out []TruancyEntry
	for _, e := range s.Attendance.TruancyQueue {
		if e.Absences >= minAbsences {
			out = append(out, e)
		}
	}
	return out
}
