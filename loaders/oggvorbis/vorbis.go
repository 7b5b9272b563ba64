// Package oggvorbis decodes Ogg Vorbis streams into 16-bit linear PCM.
package oggvorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// PCM is a fully decoded stream: interleaved 16-bit little-endian samples
// plus the format read from the stream headers.
type PCM struct {
	Data       []byte
	Channels   int
	SampleRate int
}

// Bits is the sample bit depth Decode always produces.
const Bits = 16

// Decode reads a complete Ogg Vorbis stream and decodes it to native
// 16-bit PCM. Streams with more than two channels are rejected.
func Decode(r io.Reader) (*PCM, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: opening stream: %w", err)
	}
	channels := dec.Channels()
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("vorbis: unsupported channel count %d", channels)
	}

	// Total sample count is declared up front; drain until we have it all.
	// A single Read returning few (or zero) frames is normal, only an error
	// mid-stream is fatal.
	total := int(dec.Length()) * channels
	samples := make([]float32, 0, max(total, 0))
	buf := make([]float32, 4096*channels)
	for {
		n, err := dec.Read(buf)
		samples = append(samples, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("vorbis: decoding stream: %w", err)
		}
	}

	data := make([]byte, 2*len(samples))
	for i, v := range samples {
		s := int16(clamp(v) * 32767)
		data[2*i] = byte(s)
		data[2*i+1] = byte(uint16(s) >> 8)
	}
	return &PCM{
		Data:       data,
		Channels:   channels,
		SampleRate: dec.SampleRate(),
	}, nil
}

func clamp(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
