package spatialfx

import (
	"errors"

	"github.com/cbegin/spatialfx-go/internal/graph"
	"github.com/cbegin/spatialfx-go/internal/settings"
)

var (
	// ErrAudioInit means the output device could not be acquired.
	ErrAudioInit = errors.New("spatialfx: audio initialization failed")
	// ErrRenderCancelled is returned by an offline render stopped through
	// its context. It is an expected outcome, not a failure.
	ErrRenderCancelled = errors.New("spatialfx: render cancelled")
	// ErrProcessing wraps failures in the processing path. The engine stays
	// usable after one.
	ErrProcessing = errors.New("spatialfx: processing failed")
	ErrNoAudio    = errors.New("spatialfx: no audio loaded")
	ErrDisposed   = errors.New("spatialfx: engine disposed")
	// ErrInvalidState is returned when an operation is not allowed in the
	// engine's current state.
	ErrInvalidState       = errors.New("spatialfx: invalid state")
	ErrSampleRateMismatch = errors.New("spatialfx: sample rate mismatch")

	ErrUnknownField    = settings.ErrUnknownField
	ErrInvalidChoice   = settings.ErrInvalidChoice
	ErrUnsupportedMode = graph.ErrUnsupportedMode
)
