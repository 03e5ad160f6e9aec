package narrowphase

import (
	"context"
	"sync"

	"github.com/akmonengine/narrowphase/actor"
	"github.com/akmonengine/narrowphase/query"
)

// Pair is one distance query of a batch
type Pair struct {
	A, B        actor.Body
	MaxDistance float64
}

// PairResult is the answer to the Pair at the same index
type PairResult struct {
	Hit    bool
	Result query.DistanceResult
}

// DistanceBatch runs Distance on every pair across workers goroutines.
// Results keep the order of pairs. A cancelled context stops the workers
// between chunks of work and returns ctx.Err(); the results computed so far
// are kept.
func (e *Engine) DistanceBatch(ctx context.Context, pairs []Pair, workers int) ([]PairResult, error) {
	results := make([]PairResult, len(pairs))
	err := task(ctx, workers, len(pairs), func(i int) {
		p := pairs[i]
		hit, r := e.Distance(p.A, p.B, p.MaxDistance)
		results[i] = PairResult{Hit: hit, Result: r}
	})
	return results, err
}

// checkEvery is how many items a worker runs between context checks
const checkEvery = 64

// task splits [0, size) in one contiguous chunk per worker
func task(ctx context.Context, workersCount, size int, fn func(i int)) error {
	workersCount = max(1, min(workersCount, size))
	chunkSize := (size + workersCount - 1) / workersCount

	var wg sync.WaitGroup
	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if (i-start)%checkEvery == 0 && ctx.Err() != nil {
					return
				}
				fn(i)
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, size))
	}
	wg.Wait()
	return ctx.Err()
}
