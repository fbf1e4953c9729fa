// Package domain contains the core entities of the puzzle trainer: puzzles,
// attempts and the per-puzzle review schedule, together with the calendar
// date and timestamp value objects they are built from. It has no knowledge
// of storage, transport or configuration.
package domain
