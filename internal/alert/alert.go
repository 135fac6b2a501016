// Package alert derives the banner alerts shown at the top of the overview.
package alert

import (
	"fmt"

	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/kpi"
)

type Level string

const (
	Critical Level = "critical"
	Warning  Level = "warning"
)

// Alert is one banner. Icon is decorative and hidden from assistive tech.
type Alert struct {
	Level   Level
	Icon    string
	Title   string
	Message string
}

// LetterDeadlineBusinessDays is the statutory window for tier-3 letters.
const LetterDeadlineBusinessDays = 5

// Generate evaluates the four threshold checks against s. The checks are
// independent and the result keeps presentation order, not severity order:
// overdue compliance, tier-3 truancy, accuracy below target, critical issues.
func Generate(s *domain.Snapshot, target float64) []Alert {
	var alerts []Alert

	if n := s.OverdueCount(); n > 0 {
		alerts = append(alerts, Alert{
			Level:   Critical,
			Icon:    "🚨",
			Title:   "Critical: Overdue Compliance Items",
			Message: fmt.Sprintf("%d compliance items are overdue and require immediate attention. Review Compliance tab.", n),
		})
	}

	if n := s.TierCount(domain.Tier3); n > 0 {
		alerts = append(alerts, Alert{
			Level: Warning,
			Icon:  "⚠️",
			Title: "Truancy Interventions Required",
			Message: fmt.Sprintf("%d students require Tier 3 truancy interventions (10+ absences). Letters must be sent within %d business days per Missouri law.",
				n, LetterDeadlineBusinessDays),
		})
	}

	if acc := kpi.Accuracy(s.Validation); acc < target {
		alerts = append(alerts, Alert{
			Level: Warning,
			Icon:  "📊",
			Title: "Data Quality Below Target",
			Message: fmt.Sprintf("Data accuracy at %s%% - Target is %s%%+. %d records need correction.",
				kpi.FormatNumber(acc), kpi.FormatNumber(target), s.Validation.InvalidRecords()),
		})
	}

	if n := s.IssueCountBySeverity(domain.SeverityCritical); n > 0 {
		alerts = append(alerts, Alert{
			Level:   Critical,
			Icon:    "⛔",
			Title:   "Critical Data Issues",
			Message: fmt.Sprintf("%d critical data quality issues detected. These will block DESE submission.", n),
		})
	}

	return alerts
}
