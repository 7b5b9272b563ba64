package device

import "fmt"

// Format describes the sample layout of uploaded PCM data.
type Format int

const (
	FormatMono8 Format = iota
	FormatMono16
	FormatStereo8
	FormatStereo16
)

func (f Format) String() string {
	switch f {
	case FormatMono8:
		return "mono8"
	case FormatMono16:
		return "mono16"
	case FormatStereo8:
		return "stereo8"
	case FormatStereo16:
		return "stereo16"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Channels returns the number of interleaved channels in the format.
func (f Format) Channels() int {
	switch f {
	case FormatStereo8, FormatStereo16:
		return 2
	}
	return 1
}

// Bits returns the sample bit depth of the format.
func (f Format) Bits() int {
	switch f {
	case FormatMono16, FormatStereo16:
		return 16
	}
	return 8
}

// PCMFormat maps a channel count and bit depth to a Format.
// Only mono/stereo 8/16-bit layouts exist.
func PCMFormat(channels, bits int) (Format, bool) {
	switch {
	case channels == 1 && bits == 8:
		return FormatMono8, true
	case channels == 1 && bits == 16:
		return FormatMono16, true
	case channels == 2 && bits == 8:
		return FormatStereo8, true
	case channels == 2 && bits == 16:
		return FormatStereo16, true
	}
	return 0, false
}

// Buffer is an immutable, device-resident sound sample. Sources reference
// buffers but never own them; the loader that created a buffer decides when
// it goes away.
type Buffer struct {
	frames     []float32 // interleaved, frames*channels entries
	format     Format
	sampleRate int
}

// NewBuffer uploads raw little-endian PCM into a device buffer,
// converting it once to the float32 frames the mixer works in.
// 8-bit samples are unsigned, 16-bit samples signed, as in the RIFF layout.
func (d *Device) NewBuffer(data []byte, format Format, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("device: invalid sample rate %d", sampleRate)
	}
	var frames []float32
	switch format.Bits() {
	case 8:
		frames = make([]float32, len(data))
		for i, b := range data {
			frames[i] = (float32(b) - 128) / 128
		}
	case 16:
		frames = make([]float32, len(data)/2)
		for i := 0; i < len(frames); i++ {
			v := int16(data[2*i]) | int16(data[2*i+1])<<8
			frames[i] = float32(v) / (1 << 15)
		}
	}
	return &Buffer{
		frames:     frames,
		format:     format,
		sampleRate: sampleRate,
	}, nil
}

// Format returns the layout the buffer was uploaded with.
func (b *Buffer) Format() Format { return b.format }

// SampleRate returns the buffer's sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Len returns the number of sample frames in the buffer.
func (b *Buffer) Len() int {
	return len(b.frames) / b.format.Channels()
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.Len()) / float64(b.sampleRate)
}

// frame returns the left/right values of frame i, expanding mono to both.
func (b *Buffer) frame(i int) (left, right float32) {
	if b.format.Channels() == 2 {
		return b.frames[2*i], b.frames[2*i+1]
	}
	v := b.frames[i]
	return v, v
}
