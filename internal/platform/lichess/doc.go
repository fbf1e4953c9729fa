// Package lichess talks to lichess.org: it streams the user's puzzle
// activity feed and reads the public zstd-compressed puzzle database dump.
package lichess
