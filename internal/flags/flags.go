// Package flags provides feature flags read from the flags section of the
// config. Flags are read-only after initialization; a flag missing from the
// config takes its default from Known.
package flags

import (
	"fmt"
	"maps"
	"sort"

	"github.com/zjrosen/maskfield/internal/log"
)

const (
	// FlagNotifyEveryCommit makes fields publish a change on every committed
	// edit instead of only when the value is cleared or complete.
	FlagNotifyEveryCommit = "notify-every-commit"

	// FlagMouseFocus enables focusing fields by clicking them.
	FlagMouseFocus = "mouse-focus"
)

// Flag describes a known flag.
type Flag struct {
	Name        string
	Default     bool
	Description string
}

// Known lists every flag the program reads.
var Known = []Flag{
	{
		Name:        FlagNotifyEveryCommit,
		Default:     false,
		Description: "Report every edit, not just cleared or complete values",
	},
	{
		Name:        FlagMouseFocus,
		Default:     true,
		Description: "Click a field to focus it",
	},
}

func lookup(name string) (Flag, bool) {
	for _, f := range Known {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

// Validate rejects flag names that are not in Known.
func Validate(flags map[string]bool) error {
	var unknown []string
	for name := range flags {
		if _, ok := lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown flags: %v", unknown)
	}
	return nil
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. A nil map means all defaults.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)
	log.Debug(log.CatConfig, "Feature flags initialized", "configured", len(flags), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on. Unset flags take their
// default; unknown flags and a nil registry report false.
func (r *Registry) Enabled(name string) bool {
	if r != nil {
		if value, ok := r.flags[name]; ok {
			return value
		}
	}
	f, ok := lookup(name)
	if !ok {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return f.Default
}

// All returns the effective value of every known flag plus any configured
// unknown ones.
func (r *Registry) All() map[string]bool {
	result := make(map[string]bool, len(Known))
	for _, f := range Known {
		result[f.Name] = r.Enabled(f.Name)
	}
	if r != nil {
		maps.Copy(result, r.flags)
	}
	return result
}
