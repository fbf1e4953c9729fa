// Package api serves the local review loop over HTTP: the due queue as a
// page and as JSON, attempt logging for puzzles solved on Lichess, and a
// health probe. It translates HTTP concerns to calls on the practice
// service.
package api
