// Package spatialaudio is a positional audio engine for 2D games. It
// multiplexes any number of short-lived playback requests ("voices") onto a
// small fixed pool of device channels ("sources"), and layers named groups
// with play/pause/stop/fade-out semantics on top of the same pool for music
// and ambiance.
//
// The usual shape of an integration:
//
//	engine, err := spatialaudio.New(spatialaudio.Options{})
//	...
//	err = engine.Start()           // open the output device
//	engine.Load("boom", file)      // decode into a device buffer
//	v := engine.PlayPos("boom", x, y, vx, vy)
//	...
//	engine.Update()                // once per frame
//
// Voices are fire-and-forget: a play request that cannot get a channel is
// silently dropped, and finished channels flow back to the pool during
// Update. Nothing here ever blocks the simulation loop.
package spatialaudio

import (
	"sync"
	"time"

	"github.com/vashkar/go-spatialaudio/device"
)

// Options configures a new Engine.
type Options struct {
	// SampleRate of the output device in Hz. Defaults to 44100.
	SampleRate int

	// MaxSources is the number of playback channels to request. Allocation
	// is best effort; NumSources reports what was realized. Defaults to 64.
	MaxSources int
}

// Engine owns the source pool, the loaded buffers, all live voices and
// groups, and the listener. All methods are safe for concurrent use; a
// single engine-wide lock guards every device-touching operation, and
// nothing blocks on I/O while holding it.
type Engine struct {
	mu  sync.Mutex
	dev *device.Device

	free   []*device.Source // LIFO free pool
	voices []*Voice
	groups []*group
	sounds map[SoundID]*device.Buffer

	volume      float64
	nextGroupID GroupID
	closed      bool

	now func() time.Time
}

// New builds an engine and its channel pool. No output I/O happens here;
// call Start to open the audio device. An engine that is never started can
// still load, play and update, which is what headless tests do.
func New(opts Options) (*Engine, error) {
	dev, err := device.New(device.Options{
		SampleRate: opts.SampleRate,
		MaxSources: opts.MaxSources,
	})
	if err != nil {
		return nil, err
	}
	e := &Engine{
		dev:    dev,
		sounds: make(map[SoundID]*device.Buffer),
		volume: 1,
		now:    time.Now,
	}
	e.free = append(e.free, dev.Sources()...)
	return e, nil
}

// Start opens the output device and begins playback of the mixed stream.
// A failure leaves the subsystem disabled; no other call is useful after
// that beyond Close.
func (e *Engine) Start() error {
	return e.dev.Start()
}

// Close tears the engine down in order: groups are stopped and their
// channels released, voice channels are reclaimed, the pool is dropped and
// finally the device itself is closed. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for _, g := range e.groups {
		for _, s := range g.sources {
			s.Stop()
			s.SetBuffer(nil)
		}
	}
	e.groups = nil
	for _, v := range e.voices {
		if v.src != nil {
			v.src.Stop()
			v.src.SetBuffer(nil)
			v.src = nil
		}
		v.state = VoiceStopped
	}
	e.voices = nil
	e.free = nil
	e.sounds = nil
	e.mu.Unlock()
	return e.dev.Close()
}

// Update advances the engine by one frame: it sweeps every live voice,
// reclaiming channels whose playback ended, and advances group fade-outs.
// Call it once per simulation frame.
func (e *Engine) Update() {
	e.mu.Lock()
	if !e.closed {
		e.sweepVoices()
		e.updateGroups(e.now())
	}
	e.mu.Unlock()
}

// SetVolume sets the global output gain, clamped to [0, 1]. It is applied
// immediately to every active channel and picked up by channels as they are
// (re)started; idle channels are left alone.
func (e *Engine) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	e.mu.Lock()
	e.volume = volume
	for _, s := range e.dev.Sources() {
		if st := s.State(); st == device.Playing || st == device.Paused {
			s.SetGain(volume)
		}
	}
	e.mu.Unlock()
}

// Volume returns the global output gain.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// PauseAll pauses every playing channel, voice-owned or group-owned.
func (e *Engine) PauseAll() {
	e.mu.Lock()
	for _, s := range e.dev.Sources() {
		s.Pause()
	}
	e.mu.Unlock()
}

// ResumeAll resumes every paused channel. Channels that stopped while
// paused stay stopped.
func (e *Engine) ResumeAll() {
	e.mu.Lock()
	for _, s := range e.dev.Sources() {
		s.Resume()
	}
	e.mu.Unlock()
}

// NumSources returns the realized channel count, the session's fixed
// ceiling.
func (e *Engine) NumSources() int {
	return e.dev.NumSources()
}

// NumFree returns the number of channels currently in the free pool.
func (e *Engine) NumFree() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.free)
}

// Device exposes the underlying mixer device, mainly so callers that pump
// audio themselves (or tests) can read the mixed stream.
func (e *Engine) Device() *device.Device {
	return e.dev
}

// acquireSource pops a channel off the free pool, or nil when exhausted.
// Callers treat nil as "request dropped", never as an error. Lock held.
func (e *Engine) acquireSource() *device.Source {
	if len(e.free) == 0 {
		return nil
	}
	s := e.free[len(e.free)-1]
	e.free = e.free[:len(e.free)-1]
	return s
}

// releaseSource returns a channel to the free pool. Lock held.
func (e *Engine) releaseSource(s *device.Source) {
	e.free = append(e.free, s)
}
