package api

import (
	"mime"
	"net/http"

	"github.com/phrazzld/tactics-srs/internal/api/shared"
)

// parseLogRequest reads a LogRequest from r. The query string is always
// consulted; POST requests may also carry a form or a JSON body, whose
// values win. Both long and short names are accepted (puzzle_id or p,
// result or r).
func parseLogRequest(r *http.Request) (LogRequest, error) {
	var req LogRequest

	if r.Method == http.MethodPost && isJSON(r) {
		if err := shared.DecodeJSON(r, &req); err != nil {
			return req, err
		}
	} else if err := r.ParseForm(); err != nil {
		return req, err
	}

	// After ParseForm, r.Form holds body values first, then the query string.
	values := r.Form
	if values == nil {
		values = r.URL.Query()
	}
	if req.PuzzleID == "" {
		req.PuzzleID = shared.FirstValue(values, "puzzle_id", "p")
	}
	if req.Result == "" {
		req.Result = shared.FirstValue(values, "result", "r")
	}
	req.normalize()
	return req, nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
