// Copyright 2021 The Oto Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package device is the playback substrate of the engine: a fixed set of
// source channels software-mixed into one stereo float32 stream that the
// output device pulls. It stands in for a hardware audio API; everything
// above it only ever talks to Source and Buffer handles.
package device

import (
	"fmt"
	"sync"
)

// maxChannels is the hard ceiling on mixer channels. Requests above it are
// satisfied best-effort with this many.
const maxChannels = 256

const outputChannelCount = 2

// Options configures a Device.
type Options struct {
	// SampleRate of the output stream in Hz. Defaults to 44100.
	SampleRate int

	// MaxSources is the number of playback channels to allocate. The device
	// may realize fewer; the realized count is fixed for its lifetime.
	// Defaults to 64.
	MaxSources int
}

// Device owns the source channels and the single listener frame, and mixes
// everything into the stream read by the output. One process is expected to
// hold at most one started device.
type Device struct {
	mu sync.Mutex

	sampleRate int
	sources    []*Source
	listener   listener

	mixBuf []float32

	out *output
}

// New allocates the mixer and its source channels. It performs no output
// I/O; call Start to open the audio device. Channel allocation is best
// effort: the realized count (NumSources) may be lower than requested and
// becomes the ceiling for the device's lifetime.
func New(opts Options) (*Device, error) {
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = 44100
	}
	if sampleRate < 0 {
		return nil, fmt.Errorf("device: invalid sample rate %d", sampleRate)
	}
	want := opts.MaxSources
	if want == 0 {
		want = 64
	}
	if want < 0 {
		return nil, fmt.Errorf("device: invalid source count %d", want)
	}
	if want > maxChannels {
		want = maxChannels
	}
	d := &Device{
		sampleRate: sampleRate,
	}
	d.listener.set(0, 0, 0, 0, 0)
	d.sources = make([]*Source, want)
	for i := range d.sources {
		d.sources[i] = &Source{dev: d, gain: 1}
	}
	return d, nil
}

// SampleRate returns the output sample rate in Hz.
func (d *Device) SampleRate() int { return d.sampleRate }

// NumSources returns the realized channel count.
func (d *Device) NumSources() int { return len(d.sources) }

// Sources returns the device's channels. The slice is shared, fixed for the
// device lifetime, and must not be modified.
func (d *Device) Sources() []*Source { return d.sources }

// SetListener stores the listener frame used by every positional source:
// a heading angle in radians plus position and velocity on the plane.
func (d *Device) SetListener(heading, px, py, vx, vy float64) {
	d.mu.Lock()
	d.listener.set(heading, px, py, vx, vy)
	d.mu.Unlock()
}

// ReadFloat32s fills buf with the mixed output of all playing sources.
// len(buf) must be a multiple of two (stereo frames). Sources that run out
// of data during the mix transition to Stopped. The output pulls from this
// via Read; tests may call it directly to advance playback without a
// running audio device.
func (d *Device) ReadFloat32s(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
	d.mu.Lock()
	for _, s := range d.sources {
		s.mix(buf)
	}
	d.mu.Unlock()
}

// Read implements io.Reader for the output device: little-endian float32
// stereo frames.
func (d *Device) Read(p []byte) (int, error) {
	n := len(p) / 4
	if cap(d.mixBuf) < n {
		d.mixBuf = make([]float32, n)
	}
	buf := d.mixBuf[:n]
	d.ReadFloat32s(buf)
	putFloat32s(p, buf)
	return n * 4, nil
}

// StopAll force-stops every channel regardless of state and detaches their
// buffers. Used during teardown.
func (d *Device) StopAll() {
	d.mu.Lock()
	for _, s := range d.sources {
		if s.state == Playing || s.state == Paused {
			s.state = Stopped
		}
		s.buf = nil
		s.cursor = 0
	}
	d.mu.Unlock()
}

// Close stops all channels and shuts down the output if one was started.
func (d *Device) Close() error {
	d.StopAll()
	if d.out == nil {
		return nil
	}
	err := d.out.close()
	d.out = nil
	return err
}
