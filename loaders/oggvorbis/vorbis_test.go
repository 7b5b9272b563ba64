package oggvorbis_test

import (
	"bytes"
	"testing"

	"github.com/vashkar/go-spatialaudio/loaders/oggvorbis"
)

// A valid vorbis stream needs an encoder to produce, so these stick to the
// rejection paths; the engine's load tests cover the sniffing fallback.

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := oggvorbis.Decode(bytes.NewReader([]byte("RIFF not an ogg stream"))); err == nil {
		t.Fatal("garbage decoded without error")
	}
}

func TestDecodeRejectsTruncatedCapture(t *testing.T) {
	// An ogg capture pattern with nothing behind it.
	if _, err := oggvorbis.Decode(bytes.NewReader([]byte("OggS\x00\x02"))); err == nil {
		t.Fatal("truncated stream decoded without error")
	}
}

func TestDecodeEmptyStream(t *testing.T) {
	if _, err := oggvorbis.Decode(bytes.NewReader(nil)); err == nil {
		t.Fatal("empty stream decoded without error")
	}
}
