package spatialaudio

import (
	"fmt"
	"log"
	"time"

	"github.com/vashkar/go-spatialaudio/device"
)

// fadeOutDuration is the fixed window over which a stopped group fades to
// silence before its channels are halted.
const fadeOutDuration = 100 * time.Millisecond

// GroupID names a live group. The zero value is never a valid group.
type GroupID int

type groupState int

const (
	groupPlaying groupState = iota
	groupFadingOut
)

// group is a named reservation of pool channels with a shared state, in the
// spirit of SDL_mixer channel groups. Member channels leave the general
// pool for as long as the group exists.
type group struct {
	id      GroupID
	sources []*device.Source
	state   groupState

	fadeStart time.Time
}

// NewGroup reserves size channels out of the free pool for a new group.
// The reservation is atomic: if the pool cannot supply size channels the
// pool is left untouched and ErrNoFreeSources is returned.
func (e *Engine) NewGroup(size int) (GroupID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}
	if size < 1 {
		return 0, fmt.Errorf("sound: invalid group size %d", size)
	}
	if len(e.free) < size {
		return 0, fmt.Errorf("%w: %d requested, %d free", ErrNoFreeSources, size, len(e.free))
	}
	g := &group{state: groupPlaying}
	for i := 0; i < size; i++ {
		g.sources = append(g.sources, e.acquireSource())
	}
	e.nextGroupID++
	g.id = e.nextGroupID
	e.groups = append(e.groups, g)
	return g.id, nil
}

// DestroyGroup stops a group's members and returns them to the free pool.
func (e *Engine) DestroyGroup(id GroupID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, g := range e.groups {
		if g.id != id {
			continue
		}
		for _, s := range g.sources {
			s.Stop()
			s.SetBuffer(nil)
			e.releaseSource(s)
		}
		e.groups = append(e.groups[:i], e.groups[i+1:]...)
		return nil
	}
	log.Printf("sound: group %d not found", id)
	return ErrUnknownGroup
}

// PlayGroup plays a sound on an idle member of the group, looping if asked.
// When every member is busy the last member is force-stopped and reused, so
// playing into a live group always succeeds; the only failures are an
// unknown group or sound id.
func (e *Engine) PlayGroup(id GroupID, snd SoundID, loop bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.findGroup(id)
	if g == nil {
		return ErrUnknownGroup
	}
	buf, ok := e.sounds[snd]
	if !ok {
		log.Printf("sound: group %d: no sound loaded as %q", id, snd)
		return ErrUnknownSound
	}
	g.state = groupPlaying

	last := len(g.sources) - 1
	for j, s := range g.sources {
		st := s.State()
		if j == last {
			// Everyone else was busy: smash the last member.
			if st != device.Stopped {
				s.Stop()
			}
		} else if st == device.Playing || st == device.Paused {
			continue
		}
		s.SetBuffer(buf)
		s.SetRelative(true)
		s.SetLooping(loop)
		s.SetGain(e.volume)
		s.Play()
		return nil
	}
	return nil
}

// StopGroup starts the group's fade-out. Channels keep playing, losing gain
// over the fade window, until a later Update past the window halts them.
func (e *Engine) StopGroup(id GroupID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.findGroup(id)
	if g == nil {
		return ErrUnknownGroup
	}
	g.state = groupFadingOut
	g.fadeStart = e.now()
	return nil
}

// PauseGroup pauses the group's currently playing members. Members in any
// other state are left alone, so pausing twice is harmless.
func (e *Engine) PauseGroup(id GroupID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.findGroup(id)
	if g == nil {
		return ErrUnknownGroup
	}
	for _, s := range g.sources {
		s.Pause()
	}
	return nil
}

// ResumeGroup resumes the group's paused members.
func (e *Engine) ResumeGroup(id GroupID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.findGroup(id)
	if g == nil {
		return ErrUnknownGroup
	}
	for _, s := range g.sources {
		s.Resume()
	}
	return nil
}

// findGroup returns the live group with the given id, logging when there is
// none. Lock held.
func (e *Engine) findGroup(id GroupID) *group {
	for _, g := range e.groups {
		if g.id == id {
			return g
		}
	}
	log.Printf("sound: group %d not found", id)
	return nil
}

// updateGroups advances fade-outs. Inside the window every member's gain is
// scaled linearly towards zero; once the window has passed the members are
// halted, detached and restored to full gain so the group is immediately
// reusable. Lock held.
func (e *Engine) updateGroups(now time.Time) {
	for _, g := range e.groups {
		if g.state != groupFadingOut {
			continue
		}
		elapsed := now.Sub(g.fadeStart)
		if elapsed < fadeOutDuration {
			d := 1 - float64(elapsed)/float64(fadeOutDuration)
			for _, s := range g.sources {
				s.SetGain(d * e.volume)
			}
			continue
		}
		for _, s := range g.sources {
			s.Stop()
			s.SetBuffer(nil)
			s.SetGain(e.volume)
		}
		g.state = groupPlaying
	}
}
