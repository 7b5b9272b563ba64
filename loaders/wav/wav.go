// Package wav provides a decoder for uncompressed linear-PCM RIFF (WAV)
// files: 8 or 16-bit samples, mono or stereo. Anything else is rejected.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotWav means the stream does not start with a RIFF/WAVE header.
	ErrNotWav = errors.New("wav: RIFF/WAVE header not found")
	// ErrUnsupportedCompression means the format chunk declares anything
	// other than uncompressed PCM.
	ErrUnsupportedCompression = errors.New("wav: compression type not uncompressed PCM")
	// ErrUnsupportedLayout means a channel count or bit depth this decoder
	// does not handle.
	ErrUnsupportedLayout = errors.New("wav: unsupported channel count or bit depth")
)

// PCM is a decoded payload plus the format fields read from the container.
// Multi-byte samples in Data keep their little-endian wire order.
type PCM struct {
	Data       []byte
	Channels   int
	Bits       int
	SampleRate int
}

// Decode walks the RIFF container in r and returns its PCM payload.
// The declared data length is drained fully even if the reader returns
// short counts; a stream that ends before the declared length is an error.
func Decode(r io.Reader) (*PCM, error) {
	// RIFF header: magic, total length (unused), WAVE magic.
	if err := readCmp(r, "RIFF"); err != nil {
		return nil, err
	}
	if _, err := readLen32(r); err != nil {
		return nil, fmt.Errorf("wav: reading RIFF length: %w", err)
	}
	if err := readCmp(r, "WAVE"); err != nil {
		return nil, err
	}

	// Format chunk.
	if err := readCmp(r, "fmt "); err != nil {
		return nil, err
	}
	chunkLen, err := readLen32(r)
	if err != nil {
		return nil, fmt.Errorf("wav: reading format chunk length: %w", err)
	}
	if chunkLen < 16 {
		return nil, fmt.Errorf("wav: format chunk too short (%d bytes)", chunkLen)
	}
	compression, err := readLen16(r)
	if err != nil {
		return nil, fmt.Errorf("wav: reading compression type: %w", err)
	}
	if compression != 1 {
		return nil, fmt.Errorf("%w (0x%04x)", ErrUnsupportedCompression, compression)
	}
	channels, err := readLen16(r)
	if err != nil {
		return nil, fmt.Errorf("wav: reading channel count: %w", err)
	}
	rate, err := readLen32(r)
	if err != nil {
		return nil, fmt.Errorf("wav: reading sample rate: %w", err)
	}
	// Byte rate and block align are declared but never needed.
	if _, err := readLen32(r); err != nil {
		return nil, fmt.Errorf("wav: reading byte rate: %w", err)
	}
	if _, err := readLen16(r); err != nil {
		return nil, fmt.Errorf("wav: reading block align: %w", err)
	}
	bits, err := readLen16(r)
	if err != nil {
		return nil, fmt.Errorf("wav: reading bits per sample: %w", err)
	}
	// Skip whatever extension the format chunk declares beyond the
	// canonical 16 bytes.
	if err := skip(r, int64(chunkLen)-16); err != nil {
		return nil, fmt.Errorf("wav: skipping format chunk extension: %w", err)
	}

	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, channels)
	}
	if bits != 8 && bits != 16 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedLayout, bits)
	}

	// Next chunk: an optional fact chunk may precede the data chunk.
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("wav: reading chunk header: %w", err)
	}
	if bytes.Equal(magic[:], []byte("fact")) {
		factLen, err := readLen32(r)
		if err != nil {
			return nil, fmt.Errorf("wav: reading fact chunk length: %w", err)
		}
		if err := skip(r, int64(factLen)); err != nil {
			return nil, fmt.Errorf("wav: skipping fact chunk: %w", err)
		}
		if _, err := io.ReadFull(r, magic[:]); err != nil {
			return nil, fmt.Errorf("wav: reading chunk header: %w", err)
		}
	}
	if !bytes.Equal(magic[:], []byte("data")) {
		return nil, fmt.Errorf("wav: 'data' chunk header not found")
	}

	dataLen, err := readLen32(r)
	if err != nil {
		return nil, fmt.Errorf("wav: reading data chunk length: %w", err)
	}
	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("wav: reading %d byte payload: %w", dataLen, err)
	}

	return &PCM{
		Data:       data,
		Channels:   int(channels),
		Bits:       int(bits),
		SampleRate: int(rate),
	}, nil
}

// readCmp reads len(want) bytes and compares them against want.
func readCmp(r io.Reader, want string) error {
	buf := make([]byte, len(want))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("wav: reading %q header: %w", want, err)
	}
	if string(buf) != want {
		return fmt.Errorf("%w: %q header missing", ErrNotWav, want)
	}
	return nil
}

// readLen32 reads a little-endian uint32 field.
func readLen32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// readLen16 reads a little-endian uint16 field.
func readLen16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// skip discards n bytes from r.
func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
