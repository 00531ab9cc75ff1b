package diagnosis

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	minSimilarIssues = 5
	maxSimilarIssues = 50
)

// SimilarIssuesEstimator reports how many comparable issues are on record for a category.
// A negative count means no estimate is available.
type SimilarIssuesEstimator interface {
	Estimate(ctx context.Context, category Category) int
}

// RandomEstimator returns a uniformly random count in [5, 50]. It is safe for concurrent use.
type RandomEstimator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomEstimator(seed int64) *RandomEstimator {
	return &RandomEstimator{rnd: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededEstimator seeds from the wall clock.
func NewTimeSeededEstimator() *RandomEstimator {
	return NewRandomEstimator(time.Now().UnixNano())
}

func (e *RandomEstimator) Estimate(_ context.Context, _ Category) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return minSimilarIssues + e.rnd.Intn(maxSimilarIssues-minSimilarIssues+1)
}

// FixedEstimator always returns the same count.
type FixedEstimator int

func (f FixedEstimator) Estimate(context.Context, Category) int { return int(f) }
