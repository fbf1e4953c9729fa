package report

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// themeLabels holds display names that the camel-case split gets wrong or
// that read better spelled out.
var themeLabels = map[string]string{
	"rookEndgame":      "Rook Endgame",
	"endgame":          "Endgame",
	"middlegame":       "Middlegame",
	"opening":          "Opening",
	"mateIn1":          "Mate in 1",
	"mateIn2":          "Mate in 2",
	"mateIn3":          "Mate in 3",
	"mateIn4":          "Mate in 4",
	"mateIn5":          "Mate in 5",
	"smotheredMate":    "Smothered Mate",
	"fork":             "Fork",
	"pin":              "Pin",
	"skewer":           "Skewer",
	"clearance":        "Clearance",
	"deflection":       "Deflection",
	"queensideAttack":  "Queenside Attack",
	"kingsideAttack":   "Kingside Attack",
	"short":            "Short Tactic",
	"long":             "Long Tactic",
	"veryLong":         "Very Long Tactic",
	"oneMove":          "One Move",
	"crushing":         "Crushing",
	"advantage":        "Advantage",
	"master":           "Master",
	"masterVsMaster":   "Master vs Master",
	"defensiveMove":    "Defensive Move",
	"queenRookEndgame": "Queen+Rook Endgame",
	"hangingPiece":     "Hanging Piece",
	"backRankMate":     "Back-Rank Mate",
	"exposedKing":      "Exposed King",
}

// Label returns the display name of a puzzle theme. Unknown themes are
// split on case changes and title-cased, so "discoveredAttack" becomes
// "Discovered Attack".
func Label(theme string) string {
	if l, ok := themeLabels[theme]; ok {
		return l
	}
	if theme == "" {
		return ""
	}
	return cases.Title(language.English).String(splitCamel(theme))
}

func splitCamel(s string) string {
	var b strings.Builder
	prev := rune(0)
	for i, r := range s {
		if i > 0 {
			switch {
			case unicode.IsUpper(r) && !unicode.IsUpper(prev):
				b.WriteByte(' ')
			case unicode.IsDigit(r) && !unicode.IsDigit(prev):
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// Labels renders up to n themes as a comma separated list of labels.
// A non-positive n renders all of them.
func Labels(themes []string, n int) string {
	if n > 0 && len(themes) > n {
		themes = themes[:n]
	}
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		out = append(out, Label(t))
	}
	return strings.Join(out, ", ")
}
