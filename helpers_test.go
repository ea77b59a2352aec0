package spatialfx

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testRate = 44100

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// sine returns a buffer holding the same sine on every channel.
func sine(hz, seconds, amp float64, channels int) *Buffer {
	frames := int(seconds * testRate)
	b := NewBuffer(testRate, channels, frames)
	for i := 0; i < frames; i++ {
		v := float32(amp * math.Sin(2*math.Pi*hz*float64(i)/testRate))
		for c := range b.Channels {
			b.Channels[c][i] = v
		}
	}
	return b
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{WithManualOutput(), WithLogger(quietLogger())}, opts...)
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Dispose() })
	return e
}

// pullAll drains a playing engine in blocks and returns the interleaved
// output, including the final zero-padded block.
func pullAll(t *testing.T, e *Engine, blockFrames int) []float32 {
	t.Helper()
	var out []float32
	block := make([]float32, 2*blockFrames)
	for {
		n, err := e.Pull(block)
		out = append(out, block[:2*n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		if n == 0 {
			return out
		}
	}
}
