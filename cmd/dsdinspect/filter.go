package main

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// moduleFilter keeps modules whose name matches a glob such as "ov0*" or
// "{itcm,dtcm}". The main ARM9 and ARM7 modules are always printed.
type moduleFilter string

func newModuleFilter(pattern string) (moduleFilter, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return "", fmt.Errorf("invalid -only pattern %q", pattern)
	}
	return moduleFilter(pattern), nil
}

func (f moduleFilter) keep(name string) bool {
	if f == "" {
		return true
	}
	matched, _ := doublestar.Match(string(f), name)
	return matched
}

func filterModules[T any](f moduleFilter, items []T, name func(T) string) []T {
	out := items[:0:0]
	for _, item := range items {
		if f.keep(name(item)) {
			out = append(out, item)
		}
	}
	return out
}

func (f moduleFilter) loader(s loaderSummary) loaderSummary {
	s.Autoloads = filterModules(f, s.Autoloads, func(a autoloadSummary) string { return a.Name })
	s.Arm9Overlays = filterModules(f, s.Arm9Overlays, func(o overlaySummary) string { return o.Name })
	s.Arm7Overlays = filterModules(f, s.Arm7Overlays, func(o overlaySummary) string { return o.Name })
	return s
}

func (f moduleFilter) sync(s syncSummary) syncSummary {
	s.Autoloads = filterModules(f, s.Autoloads, func(a syncAutoloadSummary) string { return a.Name })
	s.Arm9Overlays = filterModules(f, s.Arm9Overlays, func(o syncOverlaySummary) string { return o.Name })
	return s
}
