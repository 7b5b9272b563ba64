package device

import "math"

// Distance model constants, shared by every source. Inverse distance
// clamped: full gain inside the reference distance, rolled off out to the
// maximum distance.
const (
	referenceDistance = 500.0
	maxDistance       = 5000.0
	rolloffFactor     = 1.0
)

// Doppler constants, set once for the device lifetime.
const (
	dopplerFactor = 0.1
	speedOfSound  = 1000.0
)

// Pitch clamp so a pathological velocity can't stall or explode the mixer.
const (
	minPitch = 0.25
	maxPitch = 4.0
)

// listener is the single listener frame of the device. The simulation sits
// on a 2D plane, so orientation is a heading angle kept as its cosine/sine
// pair; the right vector used for panning falls out of that.
type listener struct {
	px, py float64
	vx, vy float64
	// forward = (cos, sin) of the heading angle
	fwdX, fwdY float64
}

// set stores a new listener frame. Called with the device lock held.
func (l *listener) set(heading, px, py, vx, vy float64) {
	l.px, l.py = px, py
	l.vx, l.vy = vx, vy
	l.fwdX = math.Cos(heading)
	l.fwdY = math.Sin(heading)
}

// channelGains computes the left/right gain and Doppler pitch for a source.
// Relative sources bypass the positional model. Called with the device lock
// held.
func (l *listener) channelGains(s *Source) (gainL, gainR float32, pitch float64) {
	if s.relative {
		return s.gain, s.gain, 1
	}

	dx := s.px - l.px
	dy := s.py - l.py
	dist := math.Hypot(dx, dy)

	// Inverse distance clamped.
	d := dist
	if d < referenceDistance {
		d = referenceDistance
	} else if d > maxDistance {
		d = maxDistance
	}
	att := referenceDistance / (referenceDistance + rolloffFactor*(d-referenceDistance))
	g := float64(s.gain) * att

	if dist <= 1e-9 {
		return float32(g), float32(g), 1
	}

	// Unit vector from listener towards the source.
	ux := dx / dist
	uy := dy / dist

	// Pan against the listener's right vector (forward rotated -90 deg).
	rightX, rightY := l.fwdY, -l.fwdX
	dot := ux*rightX + uy*rightY
	gainL = float32(clamp01(g * (1 - dot)))
	gainR = float32(clamp01(g * (1 + dot)))

	// Doppler: velocity components along the listener-to-source axis.
	// Positive vls means the listener approaches the source; negative vss
	// means the source approaches the listener. Both raise the pitch.
	vls := l.vx*ux + l.vy*uy
	vss := s.vx*ux + s.vy*uy
	num := speedOfSound + dopplerFactor*vls
	den := speedOfSound + dopplerFactor*vss
	if den <= 1e-9 {
		pitch = maxPitch
	} else {
		pitch = num / den
	}
	if pitch < minPitch {
		pitch = minPitch
	} else if pitch > maxPitch {
		pitch = maxPitch
	}
	return gainL, gainR, pitch
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
