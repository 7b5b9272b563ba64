package device

import (
	"math"
	"testing"
)

func newTestDevice(t *testing.T, sources int) *Device {
	t.Helper()
	d, err := New(Options{SampleRate: 44100, MaxSources: sources})
	if err != nil {
		t.Fatalf("device.New: %v", err)
	}
	return d
}

// mono16Buffer uploads n frames of a constant 16-bit sample.
func mono16Buffer(t *testing.T, d *Device, n int, value int16) *Buffer {
	t.Helper()
	data := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		data[2*i] = byte(value)
		data[2*i+1] = byte(uint16(value) >> 8)
	}
	buf, err := d.NewBuffer(data, FormatMono16, 44100)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	return buf
}

// pump mixes n output frames, discarding them.
func pump(d *Device, n int) {
	buf := make([]float32, 2*n)
	d.ReadFloat32s(buf)
}

func TestNewClampsSourceCount(t *testing.T) {
	d := newTestDevice(t, 10000)
	if d.NumSources() != maxChannels {
		t.Fatalf("NumSources = %d, want %d", d.NumSources(), maxChannels)
	}
	if newTestDevice(t, 3).NumSources() != 3 {
		t.Fatal("small source counts should be realized exactly")
	}
}

func TestBufferUpload16Bit(t *testing.T) {
	d := newTestDevice(t, 1)
	buf := mono16Buffer(t, d, 4, 16384)
	if buf.Len() != 4 {
		t.Fatalf("Len = %d, want 4", buf.Len())
	}
	l, r := buf.frame(0)
	if math.Abs(float64(l)-0.5) > 0.01 || l != r {
		t.Fatalf("frame(0) = %f, %f, want 0.5 on both channels", l, r)
	}
}

func TestBufferUpload8BitUnsigned(t *testing.T) {
	d := newTestDevice(t, 1)
	buf, err := d.NewBuffer([]byte{128, 255, 0}, FormatMono8, 8000)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	l, _ := buf.frame(0)
	if math.Abs(float64(l)) > 0.01 {
		t.Fatalf("midpoint 8-bit sample = %f, want 0", l)
	}
	l, _ = buf.frame(1)
	if l < 0.9 {
		t.Fatalf("max 8-bit sample = %f, want close to 1", l)
	}
	l, _ = buf.frame(2)
	if l > -0.9 {
		t.Fatalf("min 8-bit sample = %f, want close to -1", l)
	}
}

func TestSourcePlaysToCompletion(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.SetBuffer(mono16Buffer(t, d, 100, 1000))
	s.SetRelative(true)
	s.Play()
	if s.State() != Playing {
		t.Fatalf("state = %v, want playing", s.State())
	}
	pump(d, 50)
	if s.State() != Playing {
		t.Fatalf("state after half the buffer = %v, want playing", s.State())
	}
	pump(d, 100)
	if s.State() != Stopped {
		t.Fatalf("state past the end = %v, want stopped", s.State())
	}
}

func TestSourceLoops(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.SetBuffer(mono16Buffer(t, d, 10, 1000))
	s.SetRelative(true)
	s.SetLooping(true)
	s.Play()
	pump(d, 1000)
	if s.State() != Playing {
		t.Fatalf("looping source stopped after %v", s.State())
	}
}

func TestSourceMixesIntoOutput(t *testing.T) {
	d := newTestDevice(t, 2)
	for _, s := range d.Sources() {
		s.SetBuffer(mono16Buffer(t, d, 100, 8192))
		s.SetRelative(true)
		s.Play()
	}
	out := make([]float32, 8)
	d.ReadFloat32s(out)
	want := 2 * 8192.0 / 32768.0
	if math.Abs(float64(out[0])-want) > 0.01 {
		t.Fatalf("mixed sample = %f, want %f", out[0], want)
	}
}

func TestPauseFreezesPlayback(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.SetBuffer(mono16Buffer(t, d, 50, 1000))
	s.SetRelative(true)
	s.Play()
	s.Pause()
	pump(d, 500)
	if s.State() != Paused {
		t.Fatalf("state = %v, want paused", s.State())
	}
	s.Resume()
	pump(d, 500)
	if s.State() != Stopped {
		t.Fatalf("state after resume and drain = %v, want stopped", s.State())
	}
}

func TestPauseOnlyAffectsPlaying(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.Pause()
	if s.State() != Initial {
		t.Fatalf("pausing an idle source moved it to %v", s.State())
	}
	s.SetBuffer(mono16Buffer(t, d, 10, 1000))
	s.Play()
	s.Stop()
	s.Resume()
	if s.State() != Stopped {
		t.Fatalf("resuming a stopped source moved it to %v", s.State())
	}
}

func TestPlayWithoutBufferStaysIdle(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.Play()
	if s.State() != Initial {
		t.Fatalf("state = %v, want initial", s.State())
	}
	s.SetBuffer(mono16Buffer(t, d, 10, 1000))
	s.Play()
	s.Stop()
	s.SetBuffer(nil)
	s.Play()
	if s.State() != Stopped {
		t.Fatalf("detached source restarted into %v", s.State())
	}
}

func TestPositionalPanning(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.SetBuffer(mono16Buffer(t, d, 10, 1000))
	s.gain = 1

	// Heading 0 means forward is +X, so the right ear points down -Y.
	d.SetListener(0, 0, 0, 0, 0)

	s.SetPosition(0, -600)
	gl, gr, _ := d.listener.channelGains(s)
	if gr <= gl {
		t.Fatalf("source on the right: gains L=%f R=%f", gl, gr)
	}

	s.SetPosition(0, 600)
	gl, gr, _ = d.listener.channelGains(s)
	if gl <= gr {
		t.Fatalf("source on the left: gains L=%f R=%f", gl, gr)
	}
}

func TestDistanceAttenuation(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.gain = 1
	d.SetListener(0, 0, 0, 0, 0)

	s.SetPosition(300, 0)
	nearL, nearR, _ := d.listener.channelGains(s)
	s.SetPosition(3000, 0)
	farL, farR, _ := d.listener.channelGains(s)
	if farL+farR >= nearL+nearR {
		t.Fatalf("far gain %f not below near gain %f", farL+farR, nearL+nearR)
	}
	s.SetPosition(4900, 0)
	edgeL, edgeR, _ := d.listener.channelGains(s)
	s.SetPosition(100000, 0)
	clampL, clampR, _ := d.listener.channelGains(s)
	if math.Abs(float64(clampL+clampR-edgeL-edgeR)) > 0.05 {
		t.Fatalf("gain keeps falling past the maximum distance: %f vs %f", clampL+clampR, edgeL+edgeR)
	}
}

func TestRelativeSourceSkipsSpatialization(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.gain = 0.8
	s.SetRelative(true)
	s.SetPosition(99999, 99999)
	gl, gr, pitch := d.listener.channelGains(s)
	if gl != 0.8 || gr != 0.8 || pitch != 1 {
		t.Fatalf("relative source: L=%f R=%f pitch=%f", gl, gr, pitch)
	}
}

func TestDopplerShift(t *testing.T) {
	d := newTestDevice(t, 1)
	s := d.Sources()[0]
	s.gain = 1
	d.SetListener(0, 0, 0, 0, 0)
	s.SetPosition(1000, 0)

	// Source rushing towards the listener raises pitch.
	s.SetVelocity(-500, 0)
	if _, _, pitch := d.listener.channelGains(s); pitch <= 1 {
		t.Fatalf("approaching source pitch = %f, want > 1", pitch)
	}
	// Receding lowers it.
	s.SetVelocity(500, 0)
	if _, _, pitch := d.listener.channelGains(s); pitch >= 1 {
		t.Fatalf("receding source pitch = %f, want < 1", pitch)
	}
	// A stationary pair is unshifted.
	s.SetVelocity(0, 0)
	if _, _, pitch := d.listener.channelGains(s); pitch != 1 {
		t.Fatalf("stationary pitch = %f, want 1", pitch)
	}
}

func TestStopAllDetaches(t *testing.T) {
	d := newTestDevice(t, 4)
	for _, s := range d.Sources() {
		s.SetBuffer(mono16Buffer(t, d, 100, 1000))
		s.Play()
	}
	d.StopAll()
	for i, s := range d.Sources() {
		if s.State() != Stopped || s.Buffer() != nil {
			t.Fatalf("source %d: state=%v buffer=%v after StopAll", i, s.State(), s.Buffer())
		}
	}
}
