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

package device

import (
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"
)

// output is the oto-backed half of the device: a context for the process's
// single active audio device plus a player that pulls the mixed stream.
type output struct {
	ctx    *oto.Context
	player *oto.Player
}

// Start opens the default audio device and begins pulling the mix stream.
// Failure here is fatal for the subsystem; the caller is expected to leave
// audio disabled.
func (d *Device) Start() error {
	if d.out != nil {
		return fmt.Errorf("device: output already started")
	}
	op := &oto.NewContextOptions{
		SampleRate:   d.sampleRate,
		ChannelCount: outputChannelCount,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("device: opening output device: %w", err)
	}
	<-ready
	player := ctx.NewPlayer(d)
	player.Play()
	d.out = &output{ctx: ctx, player: player}
	return nil
}

func (o *output) close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("device: closing output player: %w", err)
	}
	return nil
}

// putFloat32s serializes samples into p as little-endian float32.
func putFloat32s(p []byte, samples []float32) {
	for i, v := range samples {
		bits := math.Float32bits(v)
		p[4*i] = byte(bits)
		p[4*i+1] = byte(bits >> 8)
		p[4*i+2] = byte(bits >> 16)
		p[4*i+3] = byte(bits >> 24)
	}
}
