package action

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/complyhub/complyhub/internal/markup"
)

// UntitledQuery names a saved query submitted without a name.
const UntitledQuery = "Untitled Query"

// QueryTemplates are the canned SIS queries offered by the SQL tool.
var QueryTemplates = map[string]string{
	"student-roster": `SELECT
    s.student_number,
    s.first_name,
    s.last_name,
    s.grade_level,
    s.dob,
    s.ethnicity
FROM students s
WHERE s.enroll_status = 0
ORDER BY s.grade_level, s.last_name`,
	"attendance-summary": `SELECT
    s.student_number,
    s.first_name || ' ' || s.last_name AS student_name,
    COUNT(CASE WHEN a.attendance_codeid = 1 THEN 1 END) AS present,
    COUNT(CASE WHEN a.attendance_codeid != 1 THEN 1 END) AS absent,
    ROUND(COUNT(CASE WHEN a.attendance_codeid = 1 THEN 1 END) * 100.0 / COUNT(*), 1) AS attendance_rate
FROM students s
JOIN attendance a ON s.id = a.studentid
WHERE a.att_date >= DATE('now', '-30 days')
GROUP BY s.id
ORDER BY attendance_rate`,
	"grade-distribution": `SELECT
    sg.grade,
    COUNT(*) AS count
FROM storedgrades sg
WHERE sg.storecode = 'Q1'
AND sg.schoolid = 1
GROUP BY sg.grade
ORDER BY sg.grade`,
	"schedule-conflicts": `SELECT
    s.student_number,
    s.first_name || ' ' || s.last_name AS student_name,
    COUNT(*) AS course_count,
    GROUP_CONCAT(c.course_name) AS courses
FROM students s
JOIN cc ON s.id = cc.studentid
JOIN courses c ON cc.course_number = c.course_number
WHERE cc.termid = (SELECT id FROM terms WHERE year_id = 2025)
GROUP BY s.id, cc.expression
HAVING COUNT(*) > 1`,
	"missing-data": `SELECT
    'Missing Email' AS issue,
    COUNT(*) AS count
FROM students
WHERE guardianEmail IS NULL OR guardianEmail = ''
UNION ALL
SELECT
    'Missing Phone',
    COUNT(*)
FROM students
WHERE home_phone IS NULL OR home_phone = ''`,
}

// TemplateNames returns the template keys in sorted order.
func TemplateNames() []string {
	out := make([]string, 0, len(QueryTemplates))
	for k := range QueryTemplates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type mockStudent struct {
	Number    string
	First     string
	Last      string
	Grade     int
	Ethnicity string
}

var sqlHeaders = []string{"student_number", "first_name", "last_name", "grade_level", "ethnicity"}

// Query execution is simulated; every query returns this result set.
var mockResults = []mockStudent{
	{"S001234", "James", "Anderson", 7, "African American"},
	{"S001567", "Sarah", "Brown", 8, "Hispanic/Latino"},
	{"S002145", "Michael", "Carter", 9, "African American"},
	{"S002890", "Emily", "Davis", 7, "White"},
	{"S003421", "Marcus", "Evans", 10, "African American"},
}

func mockResultTable() *Table {
	t := &Table{Caption: "SQL query results", Headers: sqlHeaders}
	for _, r := range mockResults {
		t.Rows = append(t.Rows, textRow(r.Number, r.First, r.Last, strconv.Itoa(r.Grade), r.Ethnicity))
	}
	return t
}

// SavedQuery is a query kept for the lifetime of the session.
type SavedQuery struct {
	Name    string
	Query   string
	SavedAt time.Time
}

// QueryBook holds the session's saved queries.
type QueryBook struct {
	mu      sync.Mutex
	queries []SavedQuery
	now     func() time.Time
}

func NewQueryBook() *QueryBook {
	return &QueryBook{now: time.Now}
}

// Save stores query under a sanitized name and returns the stored entry.
func (b *QueryBook) Save(name, query string) SavedQuery {
	name = strings.TrimSpace(markup.Sanitize(name))
	if name == "" {
		name = UntitledQuery
	}
	q := SavedQuery{Name: name, Query: strings.TrimSpace(query), SavedAt: b.now()}
	b.mu.Lock()
	b.queries = append(b.queries, q)
	b.mu.Unlock()
	return q
}

func (b *QueryBook) List() []SavedQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]SavedQuery(nil), b.queries...)
}

func (b *QueryBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queries)
}
