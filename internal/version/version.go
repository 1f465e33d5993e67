// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns the version reported to MCP clients, with a short commit when known.
func String() string {
	if Commit == "" || Commit == "unknown" {
		return Version
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return Version + "+" + c
}
