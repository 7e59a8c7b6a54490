package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOutcome(t *testing.T) {
	tests := []struct {
		outcome string
		icon    string
		color   string
	}{
		{"submitted", IconCheckmark, ColorGreen},
		{"abandoned", IconCross, ColorRed},
		{"skipped", IconSkip, ColorGray},
		{"weird", IconSkip, ColorGray},
	}
	for _, tt := range tests {
		icon, color, _ := FormatOutcome(tt.outcome)
		assert.Equal(t, tt.icon, icon, tt.outcome)
		assert.Equal(t, tt.color, color, tt.outcome)
	}

	_, _, text := FormatRunStatus("daily_limit")
	assert.Equal(t, "дневной лимит", text)
}
