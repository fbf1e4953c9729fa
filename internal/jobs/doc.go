// Package jobs runs the update pipeline, which brings the local database
// up to date with Lichess and regenerates the report, either once or on a
// fixed interval.
package jobs
