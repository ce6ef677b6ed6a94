// Package version carries build-time version information for the graccapel binary.
package version

// Version is the semantic version of the binary, set via -ldflags at build time.
var Version = "dev"

// Commit is the Git commit hash of the build, set via -ldflags at build time.
var Commit = "<unknown>"

// Date is the build timestamp, set via -ldflags at build time.
var Date = "<unknown>"
