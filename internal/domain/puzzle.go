package domain

import "strings"

// Puzzle is the metadata of one Lichess puzzle, as published in the puzzle
// database dump.
type Puzzle struct {
	ID              string   `json:"puzzle_id"`
	Rating          *int     `json:"rating,omitempty"`
	RatingDeviation *int     `json:"rating_deviation,omitempty"`
	Popularity      *int     `json:"popularity,omitempty"`
	NbPlays         *int     `json:"nb_plays,omitempty"`
	Themes          []string `json:"themes,omitempty"`
	GameURL         string   `json:"game_url,omitempty"`
	FEN             string   `json:"fen,omitempty"`
	Moves           string   `json:"moves,omitempty"`
}

// URL returns the training page of the puzzle on lichess.org.
func (p Puzzle) URL() string {
	return PuzzleURL(p.ID)
}

// PuzzleURL returns the training page for a puzzle identifier.
func PuzzleURL(id string) string {
	return "https://lichess.org/training/" + id
}

// SplitThemes splits the space separated theme list used by the dump.
func SplitThemes(s string) []string {
	return strings.Fields(s)
}

// JoinThemes is the inverse of SplitThemes.
func JoinThemes(themes []string) string {
	return strings.Join(themes, " ")
}
