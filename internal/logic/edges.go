package logic

// Levels holds one cycle's sampled logical button levels (pressed = true).
type Levels struct {
	Power bool
	Back  bool
	Up    bool
	Down  bool
}

// Edges holds the rising edges detected in one cycle. An edge is a level
// that is true this cycle and was false the previous cycle.
type Edges struct {
	Power bool
	Back  bool
	Up    bool
	Down  bool
}

// EdgeDetector tracks the previous cycle's levels and reports rising edges.
// Previous levels are overwritten on every Update regardless of what the
// caller did with the detected edges.
type EdgeDetector struct {
	prev Levels
}

// Update computes rising edges against the stored previous levels, then
// stores cur as the new previous.
func (d *EdgeDetector) Update(cur Levels) Edges {
	e := Edges{
		Power: cur.Power && !d.prev.Power,
		Back:  cur.Back && !d.prev.Back,
		Up:    cur.Up && !d.prev.Up,
		Down:  cur.Down && !d.prev.Down,
	}
	d.prev = cur
	return e
}

// MenuEvent selects at most one FSM event from the cycle's edges, in fixed
// Back > Up > Down priority order. Simultaneous edges on multiple buttons
// are rare (poll rate vs. human press duration); when they do land in the
// same cycle only the highest-priority one is honored.
func (e Edges) MenuEvent() Event {
	switch {
	case e.Back:
		return EventBack
	case e.Up:
		return EventUp
	case e.Down:
		return EventDown
	}
	return EventNone
}
