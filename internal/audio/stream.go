package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

var ErrDeviceUnavailable = errors.New("audio: output device unavailable")

type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// Output is a started or startable audio sink pulling from a SampleSource.
type Output interface {
	Play()
	Pause()
	IsPlaying() bool
	// Position is what the listener has actually heard.
	Position() time.Duration
	Close() error
}

// Backend opens an Output at sampleRate pulling interleaved stereo from src.
type Backend func(sampleRate int, src SampleSource) (Output, error)

type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

// Player plays through the shared ebiten audio context.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		defer func() {
			if r := recover(); r != nil {
				audioContextErr = fmt.Errorf("%w: %v", ErrDeviceUnavailable, r)
			}
		}()
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("%w: context already initialized at %d Hz (requested %d Hz)", ErrDeviceUnavailable, audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer is the default Backend.
func NewPlayer(sampleRate int, source SampleSource) (Output, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	// Keep latency low so control changes are heard promptly.
	pl.SetBufferSize(50 * time.Millisecond)
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Close() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}

// Manual is an Output driven by explicit Pull calls instead of a device.
// Hosts without an audio device and tests use it to advance playback
// deterministically.
type Manual struct {
	mu       sync.Mutex
	reader   *StreamReader
	rate     int
	playing  bool
	closed   bool
	consumed int64
	eof      bool
}

// NewManual is a Backend returning a *Manual.
func NewManual(sampleRate int, src SampleSource) (Output, error) {
	return &Manual{reader: NewStreamReader(src), rate: sampleRate}, nil
}

func (m *Manual) Play() {
	m.mu.Lock()
	m.playing = !m.closed
	m.mu.Unlock()
}

func (m *Manual) Pause() {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
}

func (m *Manual) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Manual) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(float64(m.consumed) / float64(m.rate) * float64(time.Second))
}

// Pull renders frames of interleaved stereo into dst when playing and
// returns the number of frames produced and io.EOF once the source ends.
func (m *Manual) Pull(dst []float32) (int, error) {
	m.mu.Lock()
	if !m.playing || m.closed || m.eof {
		m.mu.Unlock()
		return 0, nil
	}
	m.mu.Unlock()

	p := make([]byte, len(dst)*4)
	n, err := m.reader.Read(p)
	for i := 0; i < n/4; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	frames := n / 8

	m.mu.Lock()
	m.consumed += int64(frames)
	if errors.Is(err, io.EOF) {
		m.eof = true
		m.playing = false
	}
	m.mu.Unlock()
	return frames, err
}

func (m *Manual) Close() error {
	m.mu.Lock()
	m.closed = true
	m.playing = false
	m.mu.Unlock()
	return m.reader.Close()
}
