// Package buildinfo holds values stamped at link time, e.g.
// -ldflags "-X fleetopt/internal/buildinfo.Version=v1.2.0".
package buildinfo

var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"builtAt": BuiltAt,
	}
}
