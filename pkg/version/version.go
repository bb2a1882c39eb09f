// Package version provides the codelens tool version.
package version

// Version is the codelens tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/codelens/codelens/pkg/version.Version=2.0.1"
var Version = "dev"
