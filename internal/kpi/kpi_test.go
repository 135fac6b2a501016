package kpi

import (
	"testing"

	"github.com/complyhub/complyhub/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		decimals int
		want     float64
	}{
		{"zero total", 5, 0, 1, 0},
		{"zero total zero value", 0, 0, 2, 0},
		{"accuracy", 1213, 1247, 1, 97.3},
		{"two decimals", 1213, 1247, 2, 97.27},
		{"whole", 1, 3, 0, 33},
		{"full", 10, 10, 1, 100},
		{"empty", 0, 10, 1, 0},
		{"negative decimals treated as zero", 2, 3, -1, 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.value, tt.total, tt.decimals))
		})
	}
}

func TestPercentage_StaysInRange(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for v := 0; v <= total; v++ {
			for d := 0; d <= 3; d++ {
				p := Percentage(float64(v), float64(total), d)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 100.0)
			}
		}
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "97.3", FormatNumber(97.3))
	assert.Equal(t, "95", FormatNumber(95))
	assert.Equal(t, "0", FormatNumber(0))
}

func TestScorePercent(t *testing.T) {
	assert.Equal(t, "89%", ScorePercent(0.89))
	assert.Equal(t, "94%", ScorePercent(0.94))
	assert.Equal(t, "100%", ScorePercent(1))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 100))
	assert.Equal(t, 100.0, Clamp(130, 0, 100))
	assert.Equal(t, 42.0, Clamp(42, 0, 100))
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 97.3, Accuracy(domain.ValidationSummary{TotalRecords: 1247, ValidRecords: 1213}))
	assert.Equal(t, 0.0, Accuracy(domain.ValidationSummary{}))
}

func TestMean(t *testing.T) {
	assert.Zero(t, Mean(nil, 1))
	assert.Equal(t, 95.0, Mean([]float64{94, 96}, 1))
	assert.Equal(t, 93.3, Mean([]float64{90, 95, 95}, 1))
}
