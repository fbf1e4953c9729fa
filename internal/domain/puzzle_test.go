package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPuzzleThemesAndURL(t *testing.T) {
	t.Parallel()

	themes := SplitThemes("  fork middlegame  short ")
	assert.Equal(t, []string{"fork", "middlegame", "short"}, themes)
	assert.Equal(t, "fork middlegame short", JoinThemes(themes))
	assert.Equal(t, "https://lichess.org/training/00sHx", Puzzle{ID: "00sHx"}.URL())
}
