// Package version holds the partition-gen build version.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/AIDEN1973/partition-gen/pkg/version.Version=...".
var Version = "0.1.0"
