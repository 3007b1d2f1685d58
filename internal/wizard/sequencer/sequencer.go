// Package sequencer tracks the current position in a fixed, linear list of steps.
// It never validates; gating belongs to the caller.
package sequencer

// Sequencer is a 1-based step pointer clamped to [1, max]. It is not safe for
// concurrent use; the owning session serializes access.
type Sequencer struct {
	current int
	max     int
}

// New returns a sequencer positioned on step 1. max is raised to 1 if smaller.
func New(max int) *Sequencer {
	if max < 1 {
		max = 1
	}
	return &Sequencer{current: 1, max: max}
}

func (s *Sequencer) Current() int { return s.current }

func (s *Sequencer) Max() int { return s.max }

// Next advances by one step, staying on the last step.
func (s *Sequencer) Next() int {
	return s.GoTo(s.current + 1)
}

// Previous goes back one step, staying on step 1.
func (s *Sequencer) Previous() int {
	return s.GoTo(s.current - 1)
}

// GoTo jumps to n clamped into [1, max] and returns the new position.
func (s *Sequencer) GoTo(n int) int {
	s.current = s.Clamp(n)
	return s.current
}

// Clamp returns n limited to the valid step range.
func (s *Sequencer) Clamp(n int) int {
	switch {
	case n < 1:
		return 1
	case n > s.max:
		return s.max
	}
	return n
}

// Reset moves back to step 1.
func (s *Sequencer) Reset() {
	s.current = 1
}

func (s *Sequencer) IsFirst() bool { return s.current == 1 }

func (s *Sequencer) IsLast() bool { return s.current == s.max }
