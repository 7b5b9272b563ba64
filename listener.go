package spatialaudio

// SetListener stores the single listener frame used by every positional
// voice: a heading angle in radians plus position and velocity on the
// plane. Call it once per frame from the simulation.
func (e *Engine) SetListener(heading, px, py, vx, vy float64) {
	e.mu.Lock()
	if !e.closed {
		e.dev.SetListener(heading, px, py, vx, vy)
	}
	e.mu.Unlock()
}
