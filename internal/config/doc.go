// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config file and environment variables. The
// result is a single value built at startup and passed to every component;
// nothing reads the environment after Load returns.
package config
