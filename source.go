package spatialfx

import (
	"sync"
	"sync/atomic"

	"github.com/cbegin/spatialfx-go/internal/graph"
	"github.com/cbegin/spatialfx-go/internal/pcm"
)

// renderSource feeds the output device: it reads the loaded buffer from a
// cursor and runs the topology over each block. It implements
// audio.FinishingSource. mu is the render lock; the control side takes it
// only to swap or detach the topology.
type renderSource struct {
	mu       sync.Mutex
	cursor   *pcm.Cursor
	topo     graph.Topology
	start    int64
	tap      func([]float32)
	onEnd    func()
	ended    atomic.Bool
	detached bool
}

func newRenderSource(buf *pcm.Buffer, start int64, topo graph.Topology, tap func([]float32), onEnd func()) *renderSource {
	s := &renderSource{
		cursor: pcm.NewCursor(buf, start),
		topo:   topo,
		tap:    tap,
		onEnd:  onEnd,
	}
	s.start = s.cursor.Position()
	return s
}

func (s *renderSource) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		clear(dst)
		return
	}
	start, n := s.cursor.Read(dst)
	s.topo.Process(dst, start)
	if s.tap != nil {
		s.tap(dst)
	}
	if n < len(dst)/2 && s.ended.CompareAndSwap(false, true) && s.onEnd != nil {
		go s.onEnd()
	}
}

func (s *renderSource) Finished() bool {
	return s.cursor.Finished()
}

// swap installs next and returns the topology it replaced. next is snapped
// to the cursor position before it is heard.
func (s *renderSource) swap(next graph.Topology) graph.Topology {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.topo
	next.Snap(s.cursor.Position())
	s.topo = next
	return old
}

// detach stops the source from touching its topology again. After detach,
// Process outputs silence.
func (s *renderSource) detach() {
	s.mu.Lock()
	s.detached = true
	s.topo = nil
	s.mu.Unlock()
}

// controlValues reads the topology's applied values under the render lock.
func (s *renderSource) controlValues() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topo == nil {
		return nil
	}
	return s.topo.ControlValues()
}
