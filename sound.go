package spatialaudio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"golang.org/x/tools/godoc/vfs"

	"github.com/vashkar/go-spatialaudio/device"
	"github.com/vashkar/go-spatialaudio/loaders/oggvorbis"
	"github.com/vashkar/go-spatialaudio/loaders/wav"
)

// SoundID identifies a loaded buffer. Pick any stable string.
type SoundID string

// Load decodes a sound asset from r into a device buffer stored under id.
// The stream is trial-opened as Ogg Vorbis first; on failure it is rewound
// and parsed as linear-PCM WAV. A failed load leaves the store untouched.
//
// Buffers are not reference counted: voices and groups only borrow them,
// and whoever loaded a buffer decides when to Unload it.
func (e *Engine) Load(id SoundID, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("sound: load %q: %w", id, err)
	}

	var (
		pcm        []byte
		format     device.Format
		sampleRate int
	)
	if v, err := oggvorbis.Decode(bytes.NewReader(data)); err == nil {
		format, _ = device.PCMFormat(v.Channels, oggvorbis.Bits)
		pcm, sampleRate = v.Data, v.SampleRate
	} else {
		w, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("sound: load %q: %w", id, err)
		}
		format, _ = device.PCMFormat(w.Channels, w.Bits)
		pcm, sampleRate = w.Data, w.SampleRate
	}

	buf, err := e.dev.NewBuffer(pcm, format, sampleRate)
	if err != nil {
		return fmt.Errorf("sound: load %q: %w", id, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.sounds[id] = buf
	return nil
}

// LoadFile loads one asset from a virtual filesystem.
func (e *Engine) LoadFile(fileSystem vfs.Opener, id SoundID, path string) error {
	f, err := fileSystem.Open(path)
	if err != nil {
		return fmt.Errorf("sound: load %q: %w", id, err)
	}
	defer f.Close()
	return e.Load(id, f)
}

type soundSetEntry struct {
	ID   SoundID `json:"id"`
	Path string  `json:"path"`
}

// LoadSet preloads every sound listed in a JSON manifest on the given
// filesystem. Entries that fail to load are logged and skipped; the rest of
// the set still loads.
func (e *Engine) LoadSet(fileSystem vfs.Opener, path string) error {
	f, err := fileSystem.Open(path)
	if err != nil {
		return fmt.Errorf("sound: opening manifest %s: %w", path, err)
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("sound: reading manifest %s: %w", path, err)
	}
	var entries []soundSetEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("sound: parsing manifest %s: %w", path, err)
	}
	for _, entry := range entries {
		if err := e.LoadFile(fileSystem, entry.ID, entry.Path); err != nil {
			log.Printf("%v", err)
		}
	}
	return nil
}

// Unload releases the buffer stored under id. The caller is responsible for
// not unloading a buffer that live voices or groups still play.
func (e *Engine) Unload(id SoundID) {
	e.mu.Lock()
	delete(e.sounds, id)
	e.mu.Unlock()
}

// Loaded reports whether a buffer is stored under id.
func (e *Engine) Loaded(id SoundID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sounds[id]
	return ok
}

// NumLoaded returns the number of resident buffers.
func (e *Engine) NumLoaded() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sounds)
}
