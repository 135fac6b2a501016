package kpi

import (
	"fmt"
	"math"
	"sort"

	"github.com/complyhub/complyhub/internal/domain"
)

// grouper sums values per key in first-seen key order.
type grouper struct {
	index map[string]int
	out   []domain.CategoryCount
}

func (g *grouper) add(key string, n int) {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	i, ok := g.index[key]
	if !ok {
		i = len(g.out)
		g.index[key] = i
		g.out = append(g.out, domain.CategoryCount{Name: key})
	}
	g.out[i].Count += n
}

// IssuesByCategory sums issue counts per category.
func IssuesByCategory(issues []domain.ValidationIssue) []domain.CategoryCount {
	var g grouper
	for _, i := range issues {
		g.add(i.Category, i.Count)
	}
	return g.out
}

// ComplianceByCategory counts compliance tasks per category.
func ComplianceByCategory(tasks []domain.ComplianceTask) []domain.CategoryCount {
	var g grouper
	for _, t := range tasks {
		g.add(t.Category, 1)
	}
	return g.out
}

// UpcomingWindowDays bounds the deadline timeline.
const UpcomingWindowDays = 30

// DeadlinesByWeek buckets tasks due within the next 30 days (exclusive of
// today) into "Week N" buckets, N = ceil(days/7), ordered by week.
func DeadlinesByWeek(tasks []domain.ComplianceTask) []domain.CategoryCount {
	counts := make(map[int]int)
	for _, t := range tasks {
		if t.DaysUntil <= 0 || t.DaysUntil > UpcomingWindowDays {
			continue
		}
		counts[int(math.Ceil(float64(t.DaysUntil)/7))]++
	}
	weeks := make([]int, 0, len(counts))
	for w := range counts {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	out := make([]domain.CategoryCount, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, domain.CategoryCount{Name: fmt.Sprintf("Week %d", w), Count: counts[w]})
	}
	return out
}

// TierCounts returns the number of truancy entries per tier, indexed 0..2
// for tiers 1..3.
func TierCounts(queue []domain.TruancyEntry) [3]int {
	var out [3]int
	for _, e := range queue {
		if e.Tier >= domain.Tier1 && e.Tier <= domain.Tier3 {
			out[e.Tier-1]++
		}
	}
	return out
}

// Names and Counts split a category slice into parallel label/value slices.
func Names(cc []domain.CategoryCount) []string {
	out := make([]string, len(cc))
	for i, c := range cc {
		out[i] = c.Name
	}
	return out
}

func Counts(cc []domain.CategoryCount) []int {
	out := make([]int, len(cc))
	for i, c := range cc {
		out[i] = c.Count
	}
	return out
}

// GradeLabels renders grade counts as "Grade N" labels with their counts.
func GradeLabels(gc []domain.GradeCount) ([]string, []int) {
	labels := make([]string, len(gc))
	values := make([]int, len(gc))
	for i, g := range gc {
		labels[i] = fmt.Sprintf("Grade %d", g.Grade)
		values[i] = g.Count
	}
	return labels, values
}
