package domain

import (
	"fmt"
	"strings"
)

// Result is the outcome of a puzzle attempt.
type Result string

// Possible attempt results.
const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// ParseResult parses user input strictly; only "win" and "loss" (any case)
// are accepted.
func ParseResult(s string) (Result, error) {
	switch Result(strings.ToLower(strings.TrimSpace(s))) {
	case ResultWin:
		return ResultWin, nil
	case ResultLoss:
		return ResultLoss, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
	}
}

// ResultFromStored reads a result column. Anything that is not a win,
// including an empty value, counts as a loss.
func ResultFromStored(s string) Result {
	if strings.EqualFold(strings.TrimSpace(s), string(ResultWin)) {
		return ResultWin
	}
	return ResultLoss
}

// ResultFromWin maps the boolean used by the Lichess activity feed.
func ResultFromWin(win bool) Result {
	if win {
		return ResultWin
	}
	return ResultLoss
}

// IsWin reports whether r is a win.
func (r Result) IsWin() bool { return r == ResultWin }

// IsValid reports whether r is one of the known results.
func (r Result) IsValid() bool { return r == ResultWin || r == ResultLoss }
