package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		theme string
		want  string
	}{
		{"mateIn2", "Mate in 2"},
		{"short", "Short Tactic"},
		{"backRankMate", "Back-Rank Mate"},
		{"discoveredAttack", "Discovered Attack"},
		{"attraction", "Attraction"},
		{"doubleCheck", "Double Check"},
		{"mateIn10", "Mate In 10"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.theme))
		})
	}
}

func TestLabels(t *testing.T) {
	t.Parallel()

	themes := []string{"fork", "pin", "skewer", "endgame", "short"}
	assert.Equal(t, "Fork, Pin, Skewer, Endgame", Labels(themes, 4))
	assert.Equal(t, "Fork, Pin, Skewer, Endgame, Short Tactic", Labels(themes, 0))
	assert.Empty(t, Labels(nil, 4))
}
