package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	t.Parallel()
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	t.Parallel()
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")

	assert.True(t, m.Enabled("always", 1))
	assert.True(t, m.Enabled("always", 0), "full rollout needs no subject")
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout evaluation must be deterministic per subject")
	}
	assert.False(t, m.Enabled("canary", 0), "partial rollout requires a subject")

	enabled := 0
	for id := uint(1); id <= 1000; id++ {
		if m.Enabled("canary", id) {
			enabled++
		}
	}
	assert.InDelta(t, 250, enabled, 80)
}

func TestEnabled_NilManager(t *testing.T) {
	t.Parallel()
	var m *Manager
	assert.False(t, m.Enabled(Markdown, 1))
}

func TestParseAndUnknown(t *testing.T) {
	t.Parallel()
	m := NewManager(" bad ,Markdown=on, webp_images = 20% ,markdwn=off ")

	assert.Equal(t, map[string]string{"markdown": "on", "webp_images": "20%", "markdwn": "off"}, m.Raw())
	assert.True(t, m.Enabled(Markdown, 123))
	assert.Equal(t, []string{"markdwn"}, m.Unknown())
}
