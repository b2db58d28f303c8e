package services

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Rand is the source used for agent selection and time estimates.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// NewRand returns a goroutine-safe Rand. A zero seed draws one from the clock.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type settings struct {
	now    func() time.Time
	rng    Rand
	log    logrus.FieldLogger
	bounds EstimateBounds
}

func newSettings(opts []Option) settings {
	s := settings{
		now:    time.Now,
		log:    logrus.StandardLogger(),
		bounds: DefaultEstimateBounds,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.rng == nil {
		s.rng = NewRand(0)
	}
	return s
}

type Option func(*settings)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func WithRand(rng Rand) Option {
	return func(s *settings) { s.rng = rng }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *settings) { s.log = log }
}

func WithEstimateBounds(b EstimateBounds) Option {
	return func(s *settings) { s.bounds = b }
}
