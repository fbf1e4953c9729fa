// Package practice serves the day-to-day review loop: the due queue, today's
// counters and logging an attempt made outside of Lichess.
package practice
