package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequencer_NextPreviousRoundTrip(t *testing.T) {
	for start := 2; start < 5; start++ {
		s := New(5)
		s.GoTo(start)
		s.Next()
		s.Previous()
		assert.Equal(t, start, s.Current(), "interior step %d", start)
	}
}

func TestSequencer_Boundaries(t *testing.T) {
	s := New(5)
	assert.Equal(t, 1, s.Previous(), "previous on step 1 stays on 1")
	assert.True(t, s.IsFirst())

	s.GoTo(5)
	assert.Equal(t, 5, s.Next(), "next on the last step stays there")
	assert.True(t, s.IsLast())
}

func TestSequencer_GoToClamps(t *testing.T) {
	s := New(5)
	assert.Equal(t, 5, s.GoTo(99))
	assert.Equal(t, 1, s.GoTo(-3))
	assert.Equal(t, 3, s.GoTo(3))

	s.Reset()
	assert.Equal(t, 1, s.Current())
}

func TestSequencer_MinimumSize(t *testing.T) {
	s := New(0)
	assert.Equal(t, 1, s.Max())
	assert.Equal(t, 1, s.Next())
}
