// Package cmd holds build information stamped in at link time.
package cmd

var (
	Version = "dev"
	Date    = "unknown"
)
