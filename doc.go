// Package spatialfx turns a decoded audio buffer into moving, alternating or
// widened stereo.
//
// An Engine plays a loaded buffer live through the host audio device with
// one of four modes:
//
//   - 8d-spatial: the source travels around the head (interaural delay,
//     frequency-dependent level difference, pinna notch).
//   - bilateral: the sound sweeps smoothly between the ears.
//   - emdr: the sound jumps between the ears at a fixed rate.
//   - haas: a precedence-effect widener.
//
// Every mode shares a three-band tone chain, a depth (early reflection)
// stage and a master gain. Settings are normalized 0-100 values mapped to
// physical units; each change is recorded in a bounded undo history.
//
// A Renderer produces the same output offline. Live and offline paths run
// the same topology code and evaluate every time-varying control from the
// absolute sample position, so an export matches what was heard.
package spatialfx
