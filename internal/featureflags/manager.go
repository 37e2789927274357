// Package featureflags evaluates the FEATURE_FLAGS switches that gate optional post features.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags understood by the application.
const (
	// Markdown renders post bodies as CommonMark. Evaluated against the post's author so a
	// post renders the same for every reader.
	Markdown = "markdown"
	// WebPImages stores a .webp copy next to every uploaded post image. Evaluated against
	// the uploader.
	WebPImages = "webp_images"
)

// Known lists the flags the application reads, in display order.
var Known = []string{Markdown, WebPImages}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "markdown=on,webp_images=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		value = normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a subject (a user ID).
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by subject, e.g. 25%)
func (m *Manager) Enabled(name string, subject uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if subject == 0 {
		return false
	}
	return rolloutBucket(name, subject) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Unknown returns configured flag names the application never reads, sorted. Used to warn
// about typos at startup.
func (m *Manager) Unknown() []string {
	known := make(map[string]struct{}, len(Known))
	for _, name := range Known {
		known[name] = struct{}{}
	}
	var out []string
	for name := range m.flags {
		if _, ok := known[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, subject uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), subject)))
	return int(h.Sum32() % 100)
}
