package effects

// Effector processes stereo audio one frame at a time.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Stage is an Effector owned by a graph. Stages never free themselves: the
// owner calls Dispose on teardown, after which Process passes audio through.
type Stage interface {
	Effector
	Name() string
	Dispose()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
