// Package pcm holds decoded audio as planar float32 channels and converts it
// to and from the interleaved and integer forms used at the host boundary.
package pcm

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/tphakala/simd/f32"
)

var ErrInvalidBuffer = errors.New("pcm: invalid buffer")

// Buffer is decoded audio: one slice per channel, all the same length,
// samples nominally in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// New allocates a silent buffer.
func New(sampleRate, channels, frames int) *Buffer {
	b := &Buffer{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for i := range b.Channels {
		b.Channels[i] = make([]float32, frames)
	}
	return b
}

func (b *Buffer) NumChannels() int { return len(b.Channels) }

// Frames returns the per-channel length.
func (b *Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Validate checks the sample rate, channel count and channel lengths.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil", ErrInvalidBuffer)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, b.SampleRate)
	}
	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}
	n := len(b.Channels[0])
	for i, ch := range b.Channels {
		if len(ch) != n {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidBuffer, i, len(ch), n)
		}
	}
	return nil
}

func (b *Buffer) Clone() *Buffer {
	return b.Slice(0, b.Frames())
}

// Slice copies frames [start, end), clamped to the buffer.
func (b *Buffer) Slice(start, end int) *Buffer {
	n := b.Frames()
	start = max(0, min(start, n))
	end = max(start, min(end, n))
	out := &Buffer{SampleRate: b.SampleRate, Channels: make([][]float32, len(b.Channels))}
	for i, ch := range b.Channels {
		out.Channels[i] = append([]float32(nil), ch[start:end]...)
	}
	return out
}

// Trim copies the region between two times. A zero or negative end means
// the end of the buffer.
func (b *Buffer) Trim(start, end time.Duration) *Buffer {
	sf := b.FrameAt(start)
	ef := b.Frames()
	if end > 0 {
		ef = b.FrameAt(end)
	}
	return b.Slice(sf, ef)
}

// FrameAt converts a time offset to a frame index, rounded to the nearest
// frame.
func (b *Buffer) FrameAt(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * float64(b.SampleRate)))
}

// left and right return the channels feeding the stereo pair. Mono feeds
// both sides.
func (b *Buffer) left() []float32 { return b.Channels[0] }

func (b *Buffer) right() []float32 {
	if len(b.Channels) > 1 {
		return b.Channels[1]
	}
	return b.Channels[0]
}

// InterleaveStereo writes frames starting at start into dst as interleaved
// stereo and returns the number of frames written. dst must hold an even
// number of samples.
func (b *Buffer) InterleaveStereo(dst []float32, start int) int {
	if len(b.Channels) == 0 || start >= b.Frames() {
		return 0
	}
	n := min(len(dst)/2, b.Frames()-start)
	f32.Interleave2(dst[:2*n], b.left()[start:start+n], b.right()[start:start+n])
	return n
}

// SetStereo stores interleaved stereo from src into channels 0 and 1 at
// start. The buffer must have at least two channels.
func (b *Buffer) SetStereo(src []float32, start int) {
	l, r := b.Channels[0], b.Channels[1]
	for i := 0; i+1 < len(src); i += 2 {
		l[start+i/2] = src[i]
		r[start+i/2] = src[i+1]
	}
}

// Peak returns the largest absolute sample value across all channels.
func (b *Buffer) Peak() float32 {
	var p float32
	for _, ch := range b.Channels {
		for _, v := range ch {
			if v < 0 {
				v = -v
			}
			if v > p {
				p = v
			}
		}
	}
	return p
}

// FromInterleaved splits interleaved samples into a planar buffer.
func FromInterleaved(data []float32, channels, sampleRate int) (*Buffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidBuffer, channels)
	}
	frames := len(data) / channels
	b := New(sampleRate, channels, frames)
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			b.Channels[c][f] = data[f*channels+c]
		}
	}
	return b, b.Validate()
}

// FromIntBuffer converts a go-audio integer buffer, scaling by its source
// bit depth (16 bits when unset).
func FromIntBuffer(ib *audio.IntBuffer) (*Buffer, error) {
	if ib == nil || ib.Format == nil {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidBuffer)
	}
	scale := float32(1 / fullScale(ib.SourceBitDepth))
	data := make([]float32, len(ib.Data))
	for i, v := range ib.Data {
		data[i] = float32(v) * scale
	}
	return FromInterleaved(data, ib.Format.NumChannels, ib.Format.SampleRate)
}

// ToIntBuffer interleaves and quantizes the buffer with clipping.
func (b *Buffer) ToIntBuffer(bitDepth int) *audio.IntBuffer {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	fs := fullScale(bitDepth)
	nc, frames := len(b.Channels), b.Frames()
	data := make([]int, nc*frames)
	for f := 0; f < frames; f++ {
		for c := 0; c < nc; c++ {
			v := float64(b.Channels[c][f]) * fs
			v = math.Max(-fs, math.Min(fs-1, math.Round(v)))
			data[f*nc+c] = int(v)
		}
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nc, SampleRate: b.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
}

func fullScale(bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	return math.Ldexp(1, bitDepth-1)
}
