package state

import (
	"sort"
	"strings"
)

// windowFieldCount is the expected field count per line of
// `list-windows --format "%{workspace}|%{app-name}|%{window-is-fullscreen}"`.
const windowFieldCount = 3

type appKey struct {
	workspace string
	app       string
}

// ParseWindows aggregates raw "workspace|app|fullscreen" lines into the
// per-workspace app entries described by the view model. Malformed lines
// (wrong field count) are dropped silently; the result is independent of
// input line order.
func ParseWindows(raw string) map[string][]AppEntry {
	fullscreen := map[appKey]bool{}
	counts := map[appKey]int{}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != windowFieldCount {
			continue
		}

		key := appKey{
			workspace: strings.TrimSpace(fields[0]),
			app:       strings.TrimSpace(fields[1]),
		}
		counts[key]++
		if parseFullscreenFlag(fields[2]) {
			fullscreen[key] = true
		}
	}

	out := map[string][]AppEntry{}
	for key, count := range counts {
		out[key.workspace] = append(out[key.workspace], AppEntry{
			Name:        key.app,
			Fullscreen:  fullscreen[key],
			WindowCount: count,
		})
	}
	for ws := range out {
		apps := out[ws]
		sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	}
	return out
}

// parseFullscreenFlag accepts "true", "yes" and "1" (case-insensitive) as
// fullscreen; anything else, including garbage, reads as windowed.
func parseFullscreenFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

// ParseLines splits generic CLI output into trimmed, non-empty lines. Used
// for `list-workspaces` output.
func ParseLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
