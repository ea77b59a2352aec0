package spatialfx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	intaudio "github.com/cbegin/spatialfx-go/internal/audio"
	"github.com/cbegin/spatialfx-go/internal/graph"
	"github.com/cbegin/spatialfx-go/internal/history"
	"github.com/cbegin/spatialfx-go/internal/pcm"
	"github.com/cbegin/spatialfx-go/internal/settings"
	"github.com/cbegin/spatialfx-go/internal/trajectory"
)

// DefaultSampleRate is used when WithSampleRate is not given.
const DefaultSampleRate = 44100

// Callbacks receive engine events. State, settings and error callbacks run
// on the calling goroutine after the engine has released its lock; time and
// frame callbacks run on a driver goroutine while playing. Any may be nil.
type Callbacks struct {
	OnStateChange    func(prev, next State)
	OnTimeUpdate     func(position, duration time.Duration)
	OnSettingsChange func(s Settings)
	OnError          func(err error)
	// OnFrame receives the source trajectory in spatial mode.
	OnFrame func(f Frame)
}

type EngineOption func(*engineConfig)

type engineConfig struct {
	sampleRate    int
	backend       intaudio.Backend
	logger        *logrus.Logger
	historyCap    int
	callbacks     Callbacks
	initial       *Settings
	sampleTap     func([]float32)
	frameInterval time.Duration
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		sampleRate:    DefaultSampleRate,
		backend:       intaudio.NewPlayer,
		logger:        logrus.StandardLogger(),
		historyCap:    history.DefaultCapacity,
		frameInterval: trajectory.DefaultFrameInterval,
	}
}

func WithSampleRate(sampleRate int) EngineOption {
	return func(cfg *engineConfig) {
		cfg.sampleRate = sampleRate
	}
}

// WithBackend replaces the audio output. The default plays through the
// host device.
func WithBackend(b intaudio.Backend) EngineOption {
	return func(cfg *engineConfig) {
		cfg.backend = b
	}
}

// WithManualOutput installs an output that only advances when pulled. See
// Engine.Pull.
func WithManualOutput() EngineOption {
	return WithBackend(intaudio.NewManual)
}

func WithLogger(l *logrus.Logger) EngineOption {
	return func(cfg *engineConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

func WithHistoryCapacity(n int) EngineOption {
	return func(cfg *engineConfig) {
		cfg.historyCap = n
	}
}

func WithCallbacks(cb Callbacks) EngineOption {
	return func(cfg *engineConfig) {
		cfg.callbacks = cb
	}
}

// WithInitialSettings sets the settings the engine starts from and that
// ResetToInitial returns to.
func WithInitialSettings(s Settings) EngineOption {
	return func(cfg *engineConfig) {
		n := s.Normalize()
		cfg.initial = &n
	}
}

// WithSampleTap installs a callback invoked with each processed stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) EngineOption {
	return func(cfg *engineConfig) {
		cfg.sampleTap = tap
	}
}

// WithFrameInterval sets how often time and frame callbacks fire.
func WithFrameInterval(d time.Duration) EngineOption {
	return func(cfg *engineConfig) {
		cfg.frameInterval = d
	}
}

// Engine plays a loaded buffer through a mode-specific topology and keeps
// the settings history. All methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	cfg      engineConfig
	log      *logrus.Logger
	state    State
	settings Settings
	history  *history.History
	buffer   *pcm.Buffer
	topo     graph.Topology
	src      *renderSource
	out      intaudio.Output
	offset   int64
	done     chan struct{}
	ticker   *trajectory.Driver
	frames   *trajectory.Driver
	traj     *trajectory.Generator
	disposed bool
}

func NewEngine(opts ...EngineOption) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if cfg.backend == nil {
		return nil, errors.New("backend must not be nil")
	}
	initial := settings.Defaults(settings.ModeSpatial)
	if cfg.initial != nil {
		initial = *cfg.initial
	}
	h := history.New(initial, cfg.historyCap)
	h.Push(initial, "initial")
	return &Engine{
		cfg:      cfg,
		log:      cfg.logger,
		state:    StateIdle,
		settings: initial,
		history:  h,
	}, nil
}

// deferred collects work to run after the engine lock is released:
// callbacks and driver shutdowns that may wait on other goroutines.
type deferred []func()

func (d *deferred) add(f func()) { *d = append(*d, f) }

func (e *Engine) do(fn func(post *deferred) error) error {
	var post deferred
	e.mu.Lock()
	err := fn(&post)
	e.mu.Unlock()
	for _, f := range post {
		f()
	}
	return err
}

func (e *Engine) setStateLocked(next State, post *deferred) {
	prev := e.state
	if prev == next {
		return
	}
	e.state = next
	e.log.WithFields(logrus.Fields{
		"function": "setState",
		"from":     prev.String(),
		"to":       next.String(),
	}).Debug("Engine state changed")
	if cb := e.cfg.callbacks.OnStateChange; cb != nil {
		post.add(func() { cb(prev, next) })
	}
}

func (e *Engine) reportLocked(err error, post *deferred) {
	if cb := e.cfg.callbacks.OnError; cb != nil {
		post.add(func() { cb(err) })
	}
}

type silence struct{}

func (silence) Process(dst []float32) { clear(dst) }

// Initialize acquires the output device and builds the topology for the
// current mode. On failure the engine enters StateError and may be
// initialized again.
func (e *Engine) Initialize() error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		if e.state != StateIdle && e.state != StateError {
			return nil
		}
		out, err := e.cfg.backend(e.cfg.sampleRate, silence{})
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrAudioInit, err)
			e.log.WithFields(logrus.Fields{
				"function":    "Initialize",
				"sample_rate": e.cfg.sampleRate,
				"error":       err.Error(),
			}).Error("Failed to acquire audio output")
			e.setStateLocked(StateError, post)
			e.reportLocked(err, post)
			return err
		}
		_ = out.Close()

		topo, err := graph.Build(e.settings.Mode, e.cfg.sampleRate)
		if err != nil {
			return err
		}
		topo.Apply(e.settings)
		topo.Snap(0)
		e.topo = graph.Swap(e.topo, topo)
		e.log.WithFields(logrus.Fields{
			"function":    "Initialize",
			"sample_rate": e.cfg.sampleRate,
			"mode":        string(e.settings.Mode),
		}).Info("Engine initialized")
		e.setStateLocked(StateReady, post)
		return nil
	})
}

// LoadAudio replaces the loaded buffer. Playback stops and the position
// returns to the start.
func (e *Engine) LoadAudio(buf *Buffer) error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		switch e.state {
		case StateReady, StatePlaying, StatePaused:
		default:
			return fmt.Errorf("%w: cannot load audio while %s", ErrInvalidState, e.state)
		}
		if err := buf.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrProcessing, err)
		}
		if buf.SampleRate != e.cfg.sampleRate {
			return fmt.Errorf("%w: buffer is %d Hz, engine runs at %d Hz", ErrSampleRateMismatch, buf.SampleRate, e.cfg.sampleRate)
		}
		e.releaseSourceLocked(post)
		e.signalDoneLocked()
		e.setStateLocked(StateLoading, post)
		e.buffer = buf.Clone()
		e.offset = 0
		e.log.WithFields(logrus.Fields{
			"function": "LoadAudio",
			"frames":   buf.Frames(),
			"channels": buf.NumChannels(),
		}).Info("Audio loaded")
		e.setStateLocked(StateReady, post)
		return nil
	})
}

// Play starts or resumes playback. Without a loaded buffer it does nothing.
func (e *Engine) Play() error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		if e.buffer == nil {
			e.log.WithFields(logrus.Fields{
				"function": "Play",
				"state":    e.state.String(),
			}).Warn("Play called with no audio loaded")
			return nil
		}
		switch e.state {
		case StatePlaying:
			return nil
		case StatePaused:
			if e.out != nil {
				e.out.Play()
				e.startDriverLocked()
				e.setStateLocked(StatePlaying, post)
				return nil
			}
		case StateReady:
		default:
			return fmt.Errorf("%w: cannot play while %s", ErrInvalidState, e.state)
		}
		if err := e.startSourceLocked(e.offset); err != nil {
			e.setStateLocked(StateError, post)
			e.reportLocked(err, post)
			return err
		}
		e.setStateLocked(StatePlaying, post)
		return nil
	})
}

// startSourceLocked creates a fresh source at frame on the current topology
// and starts the output. The previous source must already be released.
func (e *Engine) startSourceLocked(frame int64) error {
	src := newRenderSource(e.buffer, frame, e.topo, e.cfg.sampleTap, nil)
	src.onEnd = func() { e.finished(src) }
	e.topo.Reset()
	e.topo.Snap(src.start)
	out, err := e.cfg.backend(e.cfg.sampleRate, src)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrAudioInit, err)
		e.log.WithFields(logrus.Fields{
			"function": "startSource",
			"error":    err.Error(),
		}).Error("Failed to open audio output")
		return err
	}
	e.src, e.out = src, out
	if e.done == nil {
		e.done = make(chan struct{})
	}
	out.Play()
	e.startDriverLocked()
	return nil
}

// releaseSourceLocked closes the output and detaches the source so it never
// touches the topology again.
func (e *Engine) releaseSourceLocked(post *deferred) {
	if e.out != nil {
		if err := e.out.Close(); err != nil {
			e.log.WithFields(logrus.Fields{
				"function": "releaseSource",
				"error":    err.Error(),
			}).Warn("Failed to close audio output")
		}
		e.out = nil
	}
	if e.src != nil {
		e.src.detach()
		e.src = nil
	}
	e.stopDriverLocked(post)
}

func (e *Engine) startDriverLocked() {
	cb := e.cfg.callbacks
	if cb.OnTimeUpdate == nil && cb.OnFrame == nil {
		return
	}
	src, out := e.src, e.out
	sr := float64(e.cfg.sampleRate)
	dur := e.buffer.Duration()
	end := e.buffer.Seconds()
	clock := func() float64 {
		return min(end, float64(src.start)/sr+out.Position().Seconds())
	}
	if cb.OnTimeUpdate != nil {
		e.ticker = trajectory.StartDriver(e.cfg.frameInterval, func() {
			cb.OnTimeUpdate(time.Duration(clock()*float64(time.Second)), dur)
		})
	}
	if sp, ok := e.topo.(*graph.SpatialTopology); ok && cb.OnFrame != nil {
		e.traj = sp.Trajectory
		e.frames = sp.Trajectory.Start(e.cfg.frameInterval, clock, cb.OnFrame)
	}
}

func (e *Engine) stopDriverLocked(post *deferred) {
	if d := e.ticker; d != nil {
		e.ticker = nil
		post.add(d.Stop)
	}
	if d, g := e.frames, e.traj; d != nil {
		e.frames, e.traj = nil, nil
		post.add(func() { g.StopDriver(d) })
	}
}

func (e *Engine) signalDoneLocked() {
	if e.done != nil {
		close(e.done)
		e.done = nil
	}
}

// finished runs when src has played past the end of the buffer.
func (e *Engine) finished(src *renderSource) {
	_ = e.do(func(post *deferred) error {
		if e.src != src {
			return nil
		}
		e.releaseSourceLocked(post)
		e.offset = 0
		e.log.WithFields(logrus.Fields{
			"function": "finished",
		}).Info("Playback ended")
		e.setStateLocked(StateReady, post)
		e.signalDoneLocked()
		return nil
	})
}

// Pause holds playback at the current position.
func (e *Engine) Pause() error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		if e.state != StatePlaying {
			return nil
		}
		e.offset = e.frameLocked()
		e.out.Pause()
		e.stopDriverLocked(post)
		e.setStateLocked(StatePaused, post)
		return nil
	})
}

// Stop ends playback and rewinds to the start.
func (e *Engine) Stop() error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		if e.state != StatePlaying && e.state != StatePaused {
			return nil
		}
		e.releaseSourceLocked(post)
		e.offset = 0
		e.setStateLocked(StateReady, post)
		e.signalDoneLocked()
		return nil
	})
}

// Seek moves the position. While playing, the current source is disposed
// and a new one starts at pos on the same topology.
func (e *Engine) Seek(pos time.Duration) error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		if e.buffer == nil {
			return ErrNoAudio
		}
		frame := int64(min(e.buffer.FrameAt(pos), e.buffer.Frames()))
		switch e.state {
		case StatePlaying:
			e.releaseSourceLocked(post)
			if err := e.startSourceLocked(frame); err != nil {
				e.setStateLocked(StateError, post)
				e.reportLocked(err, post)
				return err
			}
		case StatePaused, StateReady:
			e.releaseSourceLocked(post)
			e.offset = frame
		default:
			return fmt.Errorf("%w: cannot seek while %s", ErrInvalidState, e.state)
		}
		if cb := e.cfg.callbacks.OnTimeUpdate; cb != nil {
			p, d := e.frameDuration(frame), e.buffer.Duration()
			post.add(func() { cb(p, d) })
		}
		return nil
	})
}

func (e *Engine) frameDuration(frame int64) time.Duration {
	return time.Duration(float64(frame) / float64(e.cfg.sampleRate) * float64(time.Second))
}

// frameLocked returns the frame the listener is hearing.
func (e *Engine) frameLocked() int64 {
	if e.src != nil && e.out != nil {
		f := e.src.start + int64(math.Round(e.out.Position().Seconds()*float64(e.cfg.sampleRate)))
		return min(f, int64(e.buffer.Frames()))
	}
	return e.offset
}

// SetMode switches to mode, keeping the tone and volume fields and taking
// the new mode's defaults for everything else. Playback resumes at the same
// position.
func (e *Engine) SetMode(mode Mode) error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		return e.setModeLocked(mode, post)
	})
}

func (e *Engine) setModeLocked(mode Mode, post *deferred) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
	if mode == e.settings.Mode {
		return nil
	}
	return e.applyLocked(settings.SwitchMode(e.settings, mode), "mode "+string(mode), true, post)
}

// applyLocked makes next the current settings, rebuilding the topology when
// the mode changes.
func (e *Engine) applyLocked(next Settings, label string, push bool, post *deferred) error {
	if e.topo != nil && next.Mode != e.topo.Mode() {
		topo, err := graph.Build(next.Mode, e.cfg.sampleRate)
		if err != nil {
			return err
		}
		topo.Apply(next)

		playing := e.state == StatePlaying
		if playing {
			e.out.Pause()
			e.stopDriverLocked(post)
		}
		var old graph.Topology
		if e.src != nil {
			old = e.src.swap(topo)
		} else {
			topo.Snap(e.offset)
			old = e.topo
		}
		e.topo = graph.Swap(old, topo)
		if playing {
			e.out.Play()
			e.startDriverLocked()
		}
		e.log.WithFields(logrus.Fields{
			"function": "apply",
			"mode":     string(next.Mode),
			"playing":  playing,
		}).Info("Topology rebuilt")
	} else if e.topo != nil {
		e.topo.Apply(next)
	}
	e.settings = next
	if push {
		e.history.Push(next, label)
	}
	if cb := e.cfg.callbacks.OnSettingsChange; cb != nil {
		post.add(func() { cb(next) })
	}
	return nil
}

// UpdateParameter sets one numeric field. Out-of-range values are clamped.
func (e *Engine) UpdateParameter(field Field, value float64) error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		next := e.settings
		if err := next.Set(field, value); err != nil {
			return err
		}
		if got, _ := next.Get(field); got != value {
			e.log.WithFields(logrus.Fields{
				"function":  "UpdateParameter",
				"field":     string(field),
				"requested": value,
				"applied":   got,
			}).Debug("Parameter clamped")
		}
		return e.applyLocked(next, "update "+string(field), true, post)
	})
}

// UpdateChoice sets an enumerated field. Changing FieldMode behaves like
// SetMode.
func (e *Engine) UpdateChoice(field Field, choice string) error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		if field == settings.FieldMode {
			return e.setModeLocked(Mode(choice), post)
		}
		next := e.settings
		if err := next.SetChoice(field, choice); err != nil {
			return err
		}
		return e.applyLocked(next, "update "+string(field), true, post)
	})
}

// ApplySettings replaces every field at once, e.g. when restoring a saved
// track.
func (e *Engine) ApplySettings(s Settings) error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		return e.applyLocked(s.Normalize(), "apply", true, post)
	})
}

// Undo steps the settings history back. It reports false when there is
// nothing to undo.
func (e *Engine) Undo() (bool, error) {
	var moved bool
	err := e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		s, ok := e.history.Undo()
		if !ok {
			return nil
		}
		moved = true
		return e.applyLocked(s, "", false, post)
	})
	return moved, err
}

// Redo steps the settings history forward.
func (e *Engine) Redo() (bool, error) {
	var moved bool
	err := e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		s, ok := e.history.Redo()
		if !ok {
			return nil
		}
		moved = true
		return e.applyLocked(s, "", false, post)
	})
	return moved, err
}

// ResetSettings applies the defaults of the current mode.
func (e *Engine) ResetSettings() error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		return e.applyLocked(e.history.Reset(), "", false, post)
	})
}

// ResetToInitial applies the settings the engine was created with.
func (e *Engine) ResetToInitial() error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return ErrDisposed
		}
		return e.applyLocked(e.history.ResetToInitial(), "", false, post)
	})
}

// Export renders the region [start, end) of the loaded buffer offline with
// the current settings. A zero end means the end of the buffer.
func (e *Engine) Export(ctx context.Context, start, end time.Duration) (*Buffer, error) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return nil, ErrDisposed
	}
	buf, s := e.buffer, e.settings
	e.mu.Unlock()
	if buf == nil {
		return nil, ErrNoAudio
	}
	r := NewRenderer(WithRendererLogger(e.log))
	return r.Render(ctx, buf.Trim(start, end), s)
}

// Wait blocks until the current playback ends. Wait returns immediately if
// no playback is active or if it was stopped.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Dispose releases the output and topology. The engine cannot be used
// afterwards.
func (e *Engine) Dispose() error {
	return e.do(func(post *deferred) error {
		if e.disposed {
			return nil
		}
		e.releaseSourceLocked(post)
		if e.topo != nil {
			e.topo.Dispose()
			e.topo = nil
		}
		e.buffer = nil
		e.history.Clear()
		e.setStateLocked(StateIdle, post)
		e.signalDoneLocked()
		e.disposed = true
		e.log.WithFields(logrus.Fields{
			"function": "Dispose",
		}).Info("Engine disposed")
		return nil
	})
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Settings returns a copy of the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Mode
}

func (e *Engine) SampleRate() int { return e.cfg.sampleRate }

// Position returns the playback position the listener is hearing.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameDuration(e.frameLocked())
}

// Duration returns the length of the loaded buffer.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return 0
	}
	return e.buffer.Duration()
}

func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// History returns a copy of the settings history, oldest first.
func (e *Engine) History() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Entries()
}

// ControlValues reports the control values the live topology applied on
// its last processed frame.
func (e *Engine) ControlValues() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.src != nil {
		return e.src.controlValues()
	}
	if e.topo != nil {
		return e.topo.ControlValues()
	}
	return nil
}

// Pull advances a manual output by len(dst)/2 frames of interleaved stereo.
// It returns the frames produced and io.EOF at the end of the buffer. With
// any other backend it returns 0.
func (e *Engine) Pull(dst []float32) (int, error) {
	e.mu.Lock()
	m, ok := e.out.(*intaudio.Manual)
	e.mu.Unlock()
	if !ok {
		return 0, nil
	}
	return m.Pull(dst)
}
