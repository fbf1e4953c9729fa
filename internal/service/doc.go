// Package service groups the application use cases. Each subpackage
// coordinates stores and domain logic for one area:
//
//   - practice: the review queue, today's counts and logging local attempts
//   - recompute: rebuilding schedule entries from the attempt history
//   - syncer: importing the puzzle dump and the Lichess activity feed
//
// Services receive their stores through constructor injection and depend on
// the interfaces in internal/store, never on a particular database driver.
package service
