package device

// State is the playback state of a single source channel.
type State int

const (
	// Initial is the state of a source that never played anything.
	Initial State = iota
	Playing
	Paused
	// Stopped means playback ended or was halted; the cursor is dead until
	// the source is started again.
	Stopped
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Source is one playback channel of the device. The device owns a fixed set
// of them for its whole lifetime; callers only borrow.
//
// All methods take the device lock and are safe to call from any goroutine.
type Source struct {
	dev *Device

	state    State
	buf      *Buffer
	cursor   float64 // fractional frame index into buf
	gain     float32
	looping  bool
	relative bool
	px, py   float64
	vx, vy   float64
}

// SetBuffer binds a buffer to the source, or detaches the current one when
// buf is nil. Binding rewinds the cursor. A detached source cannot start
// playing, so detaching after a stop prevents a later resume from
// restarting old audio.
func (s *Source) SetBuffer(buf *Buffer) {
	s.dev.mu.Lock()
	s.buf = buf
	s.cursor = 0
	s.dev.mu.Unlock()
}

// Buffer returns the currently bound buffer, or nil when detached.
func (s *Source) Buffer() *Buffer {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	return s.buf
}

// SetGain sets the source gain. Values are clamped to [0, 1].
func (s *Source) SetGain(gain float64) {
	if gain < 0 {
		gain = 0
	} else if gain > 1 {
		gain = 1
	}
	s.dev.mu.Lock()
	s.gain = float32(gain)
	s.dev.mu.Unlock()
}

// Gain returns the current source gain.
func (s *Source) Gain() float64 {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	return float64(s.gain)
}

// SetLooping makes the source wrap around instead of stopping at the end of
// its buffer.
func (s *Source) SetLooping(looping bool) {
	s.dev.mu.Lock()
	s.looping = looping
	s.dev.mu.Unlock()
}

// SetRelative marks the source as listener-relative. Relative sources skip
// the positional gain model entirely, which is what UI and interface sounds
// want.
func (s *Source) SetRelative(relative bool) {
	s.dev.mu.Lock()
	s.relative = relative
	s.dev.mu.Unlock()
}

// SetPosition sets the world position of the source.
func (s *Source) SetPosition(x, y float64) {
	s.dev.mu.Lock()
	s.px, s.py = x, y
	s.dev.mu.Unlock()
}

// SetVelocity sets the world velocity of the source, used for Doppler.
func (s *Source) SetVelocity(x, y float64) {
	s.dev.mu.Lock()
	s.vx, s.vy = x, y
	s.dev.mu.Unlock()
}

// Play starts the source. Starting from Stopped or Initial rewinds to the
// beginning; starting from Paused resumes where it left off. A source with
// no buffer attached stays stopped.
func (s *Source) Play() {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if s.buf == nil {
		return
	}
	if s.state != Paused {
		s.cursor = 0
	}
	s.state = Playing
}

// Pause suspends playback. Only a playing source can be paused; anything
// else is left alone.
func (s *Source) Pause() {
	s.dev.mu.Lock()
	if s.state == Playing {
		s.state = Paused
	}
	s.dev.mu.Unlock()
}

// Resume continues a paused source. Only a paused source is touched, so
// resuming a stopped channel never restarts it.
func (s *Source) Resume() {
	s.dev.mu.Lock()
	if s.state == Paused {
		s.state = Playing
	}
	s.dev.mu.Unlock()
}

// Stop halts playback immediately. Stopping an already stopped source is a
// no-op.
func (s *Source) Stop() {
	s.dev.mu.Lock()
	if s.state == Playing || s.state == Paused {
		s.state = Stopped
	}
	s.dev.mu.Unlock()
}

// State reports the current playback state.
func (s *Source) State() State {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	return s.state
}

// mix adds the source's next len(out)/2 output frames into out, advancing
// the cursor. Called with the device lock held.
func (s *Source) mix(out []float32) {
	if s.state != Playing || s.buf == nil {
		return
	}
	gainL, gainR, pitch := s.dev.listener.channelGains(s)
	step := float64(s.buf.sampleRate) / float64(s.dev.sampleRate) * pitch
	n := s.buf.Len()
	for i := 0; i+1 < len(out); i += 2 {
		idx := int(s.cursor)
		if idx >= n {
			if !s.looping || n == 0 {
				s.state = Stopped
				return
			}
			s.cursor -= float64(n)
			idx = int(s.cursor)
			if idx >= n { // absurd pitch, clamp rather than spin
				s.cursor = 0
				idx = 0
			}
		}
		l, r := s.buf.frame(idx)
		out[i] += l * gainL
		out[i+1] += r * gainR
		s.cursor += step
	}
	if !s.looping && int(s.cursor) >= n {
		s.state = Stopped
	}
}
