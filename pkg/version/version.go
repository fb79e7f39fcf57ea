// Package version provides build metadata for siteprint.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// These variables are injected at build time using -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
	// StartDate is when the process started; the server reports uptime from it.
	StartDate = time.Now()
)

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("siteprint %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// Uptime returns the time elapsed since StartDate.
func Uptime() time.Duration {
	return time.Since(StartDate)
}
