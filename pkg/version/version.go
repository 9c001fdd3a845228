// Package version carries build metadata for the trailmcp binary, its
// health endpoint and the User-Agent sent to upstream services.
package version

import (
	"fmt"
	"runtime"
)

// Product names the service in User-Agent headers.
const Product = "TrailMCP"

// Set with -ldflags "-X github.com/NERVsystems/trailmcp/pkg/version.BuildVersion=..."
var (
	BuildVersion = "0.1.0"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
	GoVersion    = runtime.Version()
)

// UserAgent identifies this build to Nominatim, Overpass and Open-Meteo.
// Nominatim rejects requests without one.
func UserAgent() string {
	return Product + "/" + BuildVersion
}

// String is the -version output.
func String() string {
	return fmt.Sprintf("trailmcp version %s (%s) built on %s with %s",
		BuildVersion, BuildCommit, BuildDate, GoVersion)
}

// Info is the build metadata reported by /healthz.
func Info() map[string]string {
	return map[string]string{
		"version":    BuildVersion,
		"commit":     BuildCommit,
		"build_date": BuildDate,
		"go_version": GoVersion,
		"user_agent": UserAgent(),
	}
}
