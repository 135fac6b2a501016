package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape_NoStructuralCharactersSurvive(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"<b>x</b>",
		"Tom & Jerry",
		`"><img src=x onerror=alert(1)>`,
		"plain",
	}
	for _, in := range inputs {
		out := Escape(in)
		stripped := strings.NewReplacer("&lt;", "", "&gt;", "", "&amp;", "", "&#34;", "", "&#39;", "").Replace(out)
		assert.NotContains(t, stripped, "<", in)
		assert.NotContains(t, stripped, ">", in)
		assert.NotContains(t, stripped, "&", in)
	}
	assert.Equal(t, "&lt;b&gt;x&lt;/b&gt;", Escape("<b>x</b>"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", Sanitize("  <script>alert(1)</script> "))
	assert.Equal(t, "", Sanitize("   "))
	assert.Equal(t, "Roster & grades", Sanitize("Roster & grades"))
}

func TestBadge_EscapesLabelOnce(t *testing.T) {
	assert.Equal(t, HTML(`<span class="status-badge overdue">Tier &lt;3&gt;</span>`), Badge("overdue", "Tier <3>"))
}

func TestBadgeHTML_KeepsTrustedInner(t *testing.T) {
	got := BadgeHTML("overdue", Strong("92%"))
	assert.Equal(t, HTML(`<span class="status-badge overdue"><strong>92%</strong></span>`), got)
}

func TestButton_HTML(t *testing.T) {
	b := Button{
		Label:     "Generate",
		AriaLabel: "Generate letter",
		Variant:   "primary",
		Action:    "generate-tier-letters",
		Small:     true,
		Data:      map[string]string{"tier": "3", "arg": "x"},
	}
	assert.Equal(t,
		HTML(`<button type="button" class="btn btn-primary btn-sm" data-action="generate-tier-letters" data-arg="x" data-tier="3" aria-label="Generate letter">Generate</button>`),
		b.HTML())
}

func TestButton_EscapesAttributes(t *testing.T) {
	got := Button{Label: "<x>", AriaLabel: `a" onclick="evil`}.HTML()
	assert.NotContains(t, string(got), `onclick="evil"`)
	assert.Contains(t, string(got), "&lt;x&gt;")
}

func TestJoinAndWrap(t *testing.T) {
	assert.Equal(t, HTML("<em>a</em>&amp;"), Join(Wrap("em", Text("a")), Text("&")))
}
