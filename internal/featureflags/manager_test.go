package featureflags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_Enabled(t *testing.T) {
	m := NewManager(" proof_required=OFF , proof_previews=on, half=50%, broken, empty= ")

	assert.False(t, m.Enabled(ProofRequired, "u1", true))
	assert.True(t, m.Enabled("PROOF_PREVIEWS", "u1", false))
	assert.True(t, m.Enabled("unknown", "u1", true))
	assert.False(t, m.Enabled("unknown", "u1", false))
	assert.False(t, m.Enabled("empty", "u1", false))
	assert.False(t, m.Enabled("half", "", true))

	var nilManager *Manager
	assert.True(t, nilManager.Enabled(ProofRequired, "u1", true))
}

func TestManager_PercentRolloutIsStable(t *testing.T) {
	m := NewManager("half=50%")

	enabled := 0
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("user-%d", i)
		first := m.Enabled("half", id, false)
		assert.Equal(t, first, m.Enabled("half", id, false))
		if first {
			enabled++
		}
	}
	assert.Greater(t, enabled, 50)
	assert.Less(t, enabled, 150)
}

func TestManager_Snapshot(t *testing.T) {
	m := NewManager("a=on,b=off")
	assert.Equal(t, map[string]bool{"a": true, "b": false}, m.Snapshot("u1"))
}
