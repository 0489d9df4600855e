package version

import (
	"runtime/debug"
	"strings"
)

func placeholder(v string) bool {
	return v == "" || v == "dev" || v == "(devel)" || v == "unknown"
}

// String formats the version line printed by the CLI. Values injected via
// -ldflags win; module build info fills anything left at its placeholder.
func String(version, commit, date string) string {
	v := strings.TrimSpace(version)
	c := strings.TrimSpace(commit)
	d := strings.TrimSpace(date)

	if info, ok := debug.ReadBuildInfo(); ok {
		if placeholder(v) {
			if mv := strings.TrimSpace(info.Main.Version); !placeholder(mv) {
				v = mv
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if placeholder(c) && s.Value != "" {
					c = s.Value
				}
			case "vcs.time":
				if placeholder(d) && s.Value != "" {
					d = s.Value
				}
			}
		}
	}

	out := v
	if out == "" {
		out = "dev"
	}
	if !placeholder(c) {
		out += " (" + c + ")"
	}
	if !placeholder(d) {
		out += " " + d
	}
	return out
}
