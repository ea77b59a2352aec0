package spatialfx

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/simd/f32"

	"github.com/cbegin/spatialfx-go/internal/graph"
	"github.com/cbegin/spatialfx-go/internal/pcm"
)

// DefaultBlockSize is the number of frames an offline render processes
// between cancellation checks.
const DefaultBlockSize = 1024

type RendererOption func(*rendererConfig)

type rendererConfig struct {
	logger    *logrus.Logger
	blockSize int
	observer  func(start int64, values map[string]float64)
}

func WithRendererLogger(l *logrus.Logger) RendererOption {
	return func(cfg *rendererConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

func WithBlockSize(frames int) RendererOption {
	return func(cfg *rendererConfig) {
		if frames > 0 {
			cfg.blockSize = frames
		}
	}
}

// WithBlockObserver installs a callback invoked after every block with the
// block's first frame and the control values applied on its last frame.
func WithBlockObserver(fn func(start int64, values map[string]float64)) RendererOption {
	return func(cfg *rendererConfig) {
		cfg.observer = fn
	}
}

// Renderer produces the processed version of a whole buffer without an
// output device. It holds no engine state; every Render builds and disposes
// its own topology, so renders may run concurrently.
type Renderer struct {
	cfg rendererConfig
}

func NewRenderer(opts ...RendererOption) *Renderer {
	cfg := rendererConfig{logger: logrus.StandardLogger(), blockSize: DefaultBlockSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Renderer{cfg: cfg}
}

// Render processes buf with s and returns a new buffer with the same frame
// count and sample rate and at least two channels. Channels past the stereo
// pair are passed through with the per-frame master gain applied to the
// pair. A cancelled ctx stops the render between blocks with
// ErrRenderCancelled.
func (r *Renderer) Render(ctx context.Context, buf *Buffer, s Settings) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	s = s.Normalize()
	topo, err := graph.Build(s.Mode, buf.SampleRate)
	if err != nil {
		return nil, err
	}
	defer topo.Dispose()
	topo.Apply(s)
	topo.Snap(0)

	log := r.cfg.logger.WithFields(logrus.Fields{
		"function": "Render",
		"mode":     string(s.Mode),
		"frames":   buf.Frames(),
	})
	log.Debug("Offline render started")

	frames := buf.Frames()
	out := pcm.New(buf.SampleRate, max(2, buf.NumChannels()), frames)
	block := make([]float32, 2*r.cfg.blockSize)
	for start := 0; start < frames; start += r.cfg.blockSize {
		if err := ctx.Err(); err != nil {
			log.WithField("frame", start).Debug("Offline render cancelled")
			return nil, fmt.Errorf("%w: %w", ErrRenderCancelled, err)
		}
		n := buf.InterleaveStereo(block, start)
		topo.Process(block[:2*n], int64(start))
		out.SetStereo(block[:2*n], start)
		gains := topo.MasterGains()
		for c := 2; c < buf.NumChannels(); c++ {
			f32.Mul(out.Channels[c][start:start+n], buf.Channels[c][start:start+n], gains)
		}
		if r.cfg.observer != nil {
			r.cfg.observer(int64(start), topo.ControlValues())
		}
	}
	log.Debug("Offline render finished")
	return out, nil
}

// Render runs a default Renderer.
func Render(ctx context.Context, buf *Buffer, s Settings) (*Buffer, error) {
	return NewRenderer().Render(ctx, buf, s)
}
