package effects

import (
	"math"
	"testing"
)

const sr = 44100

func TestDelayedZeroAndWholeDelays(t *testing.T) {
	l := newLine(0.01, sr)
	if got := delayed(l, 1, 0); got != 1 {
		t.Fatalf("zero delay should return the last write, got %f", got)
	}
	for i := 0; i < 9; i++ {
		delayed(l, 0, 0)
	}
	if got := readDelayed(l, 9); got != 1 {
		t.Fatalf("9-sample delay should see the impulse, got %f", got)
	}

	l = newLine(0.01, sr)
	for i := 0; i < 20; i++ {
		l.Write(float64(i))
	}
	if got := readDelayed(l, 4.5); math.Abs(got-14.5) > 1e-12 {
		t.Fatalf("fractional delay on a ramp = %f, want 14.5", got)
	}
}

func TestDesignersPassThroughAboveNyquist(t *testing.T) {
	c := lowShelf(30000, 6, butterworthQ, sr)
	if c != passthrough {
		t.Fatalf("corner above Nyquist should pass through, got %+v", c)
	}
	if m := magnitude(&c, 1000, sr); math.Abs(m-1) > 1e-12 {
		t.Fatalf("passthrough magnitude = %f", m)
	}
}

func TestToneChainFlatIsIdentity(t *testing.T) {
	tc := NewToneChain(sr)
	for i := 0; i < 1000; i++ {
		x := float32(math.Sin(float64(i) * 0.05))
		l, r := tc.Process(x, -x)
		if l != x || r != -x {
			t.Fatalf("flat tone chain altered sample %d: %f,%f", i, l, r)
		}
	}
}

func TestToneChainShelvesMoveTheRightBands(t *testing.T) {
	tc := NewToneChain(sr)
	tc.SetGains(12, 0, -12)
	tc.Process(0, 0)

	if g := 20 * math.Log10(tc.Response(40)); math.Abs(g-12) > 1 {
		t.Errorf("warmth +12 dB: response at 40 Hz = %.2f dB", g)
	}
	if g := 20 * math.Log10(tc.Response(18000)); math.Abs(g+12) > 1 {
		t.Errorf("air -12 dB: response at 18 kHz = %.2f dB", g)
	}
	if g := 20 * math.Log10(tc.Response(1500)); math.Abs(g) > 3 {
		t.Errorf("mid band should stay near flat, got %.2f dB", g)
	}
}

func TestBinauralTargetsFavorNearEar(t *testing.T) {
	tg := Targets(1, 1, sr)
	left, right := tg[0], tg[1]
	if right.Delay != 0 || right.LowGain != 1 || right.HighGain != 1 {
		t.Fatalf("near (right) ear should be untouched: %+v", right)
	}
	wantDelay := MaxITD * sr
	if math.Abs(left.Delay-wantDelay) > 1e-9 {
		t.Fatalf("far ear delay = %f, want %f", left.Delay, wantDelay)
	}
	if !(left.HighGain < left.LowGain && left.LowGain < 1) {
		t.Fatalf("far ear should lose more highs than lows: %+v", left)
	}
	if left.NotchQ <= right.NotchQ {
		t.Fatalf("far ear notch should be sharper: %f <= %f", left.NotchQ, right.NotchQ)
	}

	half := Targets(-0.5, 0.5, sr)
	if half[0].Delay != 0 || math.Abs(half[1].Delay-0.25*MaxITD*sr) > 1e-9 {
		t.Fatalf("delay should scale with |position|*intensity: %+v", half)
	}
}

func TestBinauralSmoothsPositionJumps(t *testing.T) {
	b := NewBinaural(sr)
	b.Intensity().Set(1)
	b.Snap()
	b.SetPosition(1)
	b.Process(0, 0)
	c := b.Controls()
	if c[0].Delay >= MaxITD*sr*0.1 {
		t.Fatalf("delay should approach the target gradually, jumped to %f", c[0].Delay)
	}
	for i := 0; i < sr/2; i++ {
		b.Process(0, 0)
	}
	c = b.Controls()
	if math.Abs(c[0].Delay-MaxITD*sr) > 1e-6 {
		t.Fatalf("delay should settle on target, got %f", c[0].Delay)
	}
}

func TestBinauralDelaysFarEar(t *testing.T) {
	b := NewBinaural(sr)
	b.Intensity().Set(1)
	b.SetPosition(1)
	b.Snap()

	// Impulse in both channels: the right ear should respond first.
	var firstL, firstR = -1, -1
	for i := 0; i < 100; i++ {
		var x float32
		if i == 0 {
			x = 1
		}
		l, r := b.Process(x, x)
		if firstL < 0 && math.Abs(float64(l)) > 0.05 {
			firstL = i
		}
		if firstR < 0 && math.Abs(float64(r)) > 0.05 {
			firstR = i
		}
	}
	if firstR != 0 || firstL < 20 {
		t.Fatalf("expected right ear first and left ear ~29 samples later, got L=%d R=%d", firstL, firstR)
	}
}

func TestBilateralHardCutPan(t *testing.T) {
	b := NewBilateral(sr)
	b.Rate().Set(1)
	b.Width().Set(0.6)
	b.SetAlgorithm(BilateralHardCut)
	if got := b.PanAt(0.2); got != -0.6 {
		t.Errorf("first half period should be left, got %f", got)
	}
	if got := b.PanAt(0.7); got != 0.6 {
		t.Errorf("second half period should be right, got %f", got)
	}
}

func TestBilateralSmoothPan(t *testing.T) {
	b := NewBilateral(sr)
	b.Rate().Set(2)
	b.Width().Set(1)
	if got := b.PanAt(0.125); math.Abs(got+1) > 1e-12 {
		t.Errorf("smooth pan should start towards the left, got %f", got)
	}
	if got := b.PanAt(0.375); math.Abs(got-1) > 1e-12 {
		t.Errorf("smooth pan should swing right, got %f", got)
	}
}

func TestStereoPanExtremes(t *testing.T) {
	l, r := StereoPan(0.5, 0.25, -1)
	if math.Abs(l-0.75) > 1e-12 || math.Abs(r) > 1e-12 {
		t.Errorf("full left: got %f,%f", l, r)
	}
	l, r = StereoPan(0.5, 0.25, 1)
	if math.Abs(l) > 1e-12 || math.Abs(r-0.75) > 1e-12 {
		t.Errorf("full right: got %f,%f", l, r)
	}
}

func TestPrecedenceDelaysLaggingChannel(t *testing.T) {
	p := NewPrecedence(sr)
	p.Delay().SetImmediate(10)
	lag := int(10 * sr / 1000)
	var gotAt = -1
	for i := 0; i < 2*lag; i++ {
		var x float32
		if i == 0 {
			x = 1
		}
		l, r := p.Process(x, x)
		if i == 0 && l != 1 {
			t.Fatalf("lead channel should pass through, got %f", l)
		}
		if r != 0 && gotAt < 0 {
			gotAt = i
			if math.Abs(float64(r)-LagGain) > 1e-6 {
				t.Fatalf("lagging channel gain = %f, want %f", r, LagGain)
			}
		}
	}
	if gotAt != lag {
		t.Fatalf("lagging impulse at %d, want %d", gotAt, lag)
	}

	p.SetLead(LeadRight)
	if _, r := p.Process(0.5, 0.5); r != 0.5 {
		t.Fatalf("right lead should pass right channel, got %f", r)
	}
}

func TestDepthBypassAndTail(t *testing.T) {
	d := NewDepth(sr)
	l, r := d.Process(0.3, 0.4)
	if l != 0.3 || r != 0.4 || !d.Bypassed() {
		t.Fatalf("zero wet should bypass, got %f,%f", l, r)
	}

	d.Wet().SetImmediate(1)
	d.Process(1, 1)
	var tail float64
	for i := 0; i < sr/4; i++ {
		l, r := d.Process(0, 0)
		tail += math.Abs(float64(l)) + math.Abs(float64(r))
	}
	if tail < 0.5 {
		t.Fatalf("expected early reflections, tail energy %f", tail)
	}
	if l, _ := d.Process(0.5, 0.5); math.Abs(float64(l)) > 0.5 {
		t.Fatalf("dry gain should be halved at full wet, got %f", l)
	}
}

func TestMasterBlockMatchesPerSample(t *testing.T) {
	a := NewMaster(sr)
	a.Gain().SetImmediate(0.5)
	a.Process(0, 0)
	buf := []float32{1, -1, 0.5, 0.25}
	a.ProcessBlock(buf)
	want := []float32{0.5, -0.5, 0.25, 0.125}
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d: got %f, want %f", i, buf[i], want[i])
		}
	}
}

func TestDisposedStagesPassThrough(t *testing.T) {
	stages := []Stage{NewToneChain(sr), NewBinaural(sr), NewBilateral(sr), NewPrecedence(sr), NewDepth(sr), NewMaster(sr)}
	for _, s := range stages {
		s.Dispose()
		l, r := s.Process(0.25, -0.5)
		if l != 0.25 || r != -0.5 {
			t.Errorf("%s: disposed stage altered audio: %f,%f", s.Name(), l, r)
		}
	}
}

func TestChainAppliesEffectsInOrder(t *testing.T) {
	m1 := NewMaster(sr)
	m1.Gain().SetImmediate(0.5)
	p := NewPrecedence(sr)
	p.Delay().SetImmediate(5)
	c := NewChain(m1)
	c.Add(p)
	l, r := c.Process(1, 1)
	if l != 0.5 || r != 0 {
		t.Errorf("chain output = %f,%f; want 0.5,0", l, r)
	}
}

func TestMasterGainsTraceRamp(t *testing.T) {
	m := NewMaster(sr)
	m.Gain().Set(0.25)
	buf := make([]float32, 2*256)
	for i := range buf {
		buf[i] = 1
	}
	m.ProcessBlock(buf)
	g := m.Gains()
	if len(g) != 256 {
		t.Fatalf("gains length = %d", len(g))
	}
	for i, v := range g {
		if buf[2*i] != v || buf[2*i+1] != v {
			t.Fatalf("frame %d scaled by %f/%f, trace says %f", i, buf[2*i], buf[2*i+1], v)
		}
		if i > 0 && v >= g[i-1] {
			t.Fatalf("gain should fall frame by frame: %f then %f", g[i-1], v)
		}
	}
	if g[0] >= 1 || g[255] <= 0.25 {
		t.Fatalf("ramp endpoints %f..%f", g[0], g[255])
	}

	m.Gain().SetImmediate(0.5)
	m.ProcessBlock(buf[:8])
	for _, v := range m.Gains() {
		if v != 0.5 {
			t.Fatalf("settled gain trace = %v", m.Gains())
		}
	}
}

func TestResetClearsStageState(t *testing.T) {
	impulse := func(s Stage) []float32 {
		var out []float32
		for i := 0; i < 512; i++ {
			var x float32
			if i == 0 {
				x = 1
			}
			l, r := s.Process(x, x)
			out = append(out, l, r)
		}
		return out
	}
	newStages := func() []Stage {
		tone := NewToneChain(sr)
		tone.SetGains(2, 0.5, 2)
		for i := ToneLow; i <= ToneHigh; i++ {
			tone.Gain(i).Snap()
		}
		b := NewBinaural(sr)
		b.Intensity().SetImmediate(1)
		b.SetPosition(0.7)
		b.Snap()
		p := NewPrecedence(sr)
		p.Delay().SetImmediate(20)
		d := NewDepth(sr)
		d.Wet().SetImmediate(0.8)
		return []Stage{tone, b, p, d}
	}
	fresh := newStages()
	used := newStages()
	for i, s := range used {
		impulse(s)
		s.Reset()
		want, got := impulse(fresh[i]), impulse(s)
		for j := range want {
			if want[j] != got[j] {
				t.Fatalf("%s: sample %d after Reset = %f, fresh stage gives %f", s.Name(), j, got[j], want[j])
			}
		}
	}
}
