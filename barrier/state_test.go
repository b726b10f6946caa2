package barrier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "Filling", Filling.String())
	assert.Equal(t, "Completing", Completing.String())
	assert.Equal(t, "Unknown", State(9).String())
}

func TestWord_Packing(t *testing.T) {
	for _, tc := range [...]struct {
		phase     uint32
		remaining uint32
		state     State
	}{
		{0, 0, Filling},
		{1, 7, Filling},
		{math.MaxUint32, MaxParticipants, Filling},
		{42, completing, Completing},
	} {
		w := packWord(tc.phase, tc.remaining)
		assert.Equal(t, tc.phase, w.phase())
		assert.Equal(t, tc.remaining, w.remaining())
		assert.Equal(t, tc.state, w.state())
	}
	assert.Less(t, uint32(MaxParticipants), uint32(completing))
}
