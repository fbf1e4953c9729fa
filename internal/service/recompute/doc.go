// Package recompute brings stored schedule entries in line with the attempt
// history. For every puzzle it reads the newest attempt and the current
// entry, asks the srs engine for a decision and applies it, one puzzle per
// transaction.
package recompute
