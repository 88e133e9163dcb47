// Package version holds build-time version information injected via ldflags.
// It is reported by the version subcommands and in the X-Mailer header.
package version

// These variables are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the version line printed by name.
func String(name string) string {
	return name + " " + Version + " (commit " + Commit + ", built " + Date + ")"
}
