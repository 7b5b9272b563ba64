package spatialaudio

import (
	"log"

	"github.com/vashkar/go-spatialaudio/device"
)

// VoiceState is the logical state of a playback request.
type VoiceState int

const (
	// VoicePlaying means the voice holds a channel and audio is advancing.
	VoicePlaying VoiceState = iota
	// VoiceStopped means playback finished and the channel was reclaimed;
	// the voice is removed from the engine on the next Update.
	VoiceStopped
	// VoiceDestroy means the voice never got a channel or was invalidated;
	// it is dropped on the next Update.
	VoiceDestroy
)

func (s VoiceState) String() string {
	switch s {
	case VoicePlaying:
		return "playing"
	case VoiceStopped:
		return "stopped"
	case VoiceDestroy:
		return "destroy"
	}
	return "unknown"
}

// Voice is one request to play a loaded sound. It owns at most one channel
// at a time and never owns the buffer it plays. Voices are cheap and
// fire-and-forget; once State reports VoiceStopped the engine has already
// reclaimed the channel and the handle can simply be dropped.
type Voice struct {
	e   *Engine
	src *device.Source

	state VoiceState

	// Cached coordinates, pushed to the channel on the next sweep rather
	// than immediately.
	px, py float64
	vx, vy float64
}

// Play starts a non-positional (UI) sound. The returned voice is in
// VoiceDestroy state if no channel was free or the id is not loaded: the
// request was silently dropped, there is nothing to retry this frame.
func (e *Engine) Play(id SoundID) *Voice {
	return e.play(id, true, 0, 0, 0, 0)
}

// PlayPos starts a sound at a world position with a velocity. Drop
// semantics are the same as Play.
func (e *Engine) PlayPos(id SoundID, px, py, vx, vy float64) *Voice {
	return e.play(id, false, px, py, vx, vy)
}

func (e *Engine) play(id SoundID, relative bool, px, py, vx, vy float64) *Voice {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := &Voice{e: e, state: VoiceDestroy, px: px, py: py, vx: vx, vy: vy}
	if e.closed {
		return v
	}
	buf, ok := e.sounds[id]
	if !ok {
		log.Printf("sound: play: no sound loaded as %q", id)
		return v
	}
	src := e.acquireSource()
	if src == nil {
		// Pool exhausted. The dead voice is still tracked until the next
		// sweep so state queries behave like any other voice's.
		e.voices = append(e.voices, v)
		return v
	}

	src.SetBuffer(buf)
	src.SetRelative(relative)
	src.SetLooping(false)
	src.SetPosition(px, py)
	src.SetVelocity(vx, vy)
	src.SetGain(e.volume)
	src.Play()

	v.src = src
	v.state = VoicePlaying
	e.voices = append(e.voices, v)
	return v
}

// UpdatePosition caches new coordinates for the voice. They reach the
// channel on the next sweep, so updating a voice many times per frame costs
// nothing extra.
func (v *Voice) UpdatePosition(px, py, vx, vy float64) {
	v.e.mu.Lock()
	v.px, v.py = px, py
	v.vx, v.vy = vx, vy
	v.e.mu.Unlock()
}

// Stop halts the voice's playback immediately if it holds a channel.
// Stopping an already stopped or dropped voice is a no-op.
func (v *Voice) Stop() {
	v.e.mu.Lock()
	if v.src != nil {
		v.src.Stop()
	}
	v.e.mu.Unlock()
}

// State reports the voice's logical state.
func (v *Voice) State() VoiceState {
	v.e.mu.Lock()
	defer v.e.mu.Unlock()
	return v.state
}

// sweepVoices is the only path that returns voice channels to the pool.
// A voice that finishes between sweeps stays counted as busy until the next
// one; that staleness is bounded by a frame and accepted. Lock held.
func (e *Engine) sweepVoices() {
	// Voices retired by the previous sweep go away now.
	kept := e.voices[:0]
	for _, v := range e.voices {
		if v.state == VoiceStopped || v.state == VoiceDestroy {
			continue
		}
		kept = append(kept, v)
	}
	for i := len(kept); i < len(e.voices); i++ {
		e.voices[i] = nil
	}
	e.voices = kept

	for _, v := range e.voices {
		if v.src == nil {
			v.state = VoiceDestroy
			continue
		}
		if v.src.State() == device.Stopped {
			// Detach so a later resume can't restart it, then hand the
			// channel back.
			v.src.SetBuffer(nil)
			e.releaseSource(v.src)
			v.src = nil
			v.state = VoiceStopped
			continue
		}
		v.src.SetGain(e.volume)
		v.src.SetPosition(v.px, v.py)
		v.src.SetVelocity(v.vx, v.vy)
	}
}
