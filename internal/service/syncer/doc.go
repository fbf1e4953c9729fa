// Package syncer imports data from Lichess into the local database: the
// public puzzle catalogue from a compressed CSV dump and the user's own
// puzzle attempts from the activity feed.
package syncer
