package simulation

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// parallelThreshold is the slot count below which chunked updates fall back to
// the serial path — fan-out overhead dominates for small pools.
const parallelThreshold = 4096

// chunkSize is the slot span handed to each worker task. Large enough to
// amortize task dispatch, small enough to balance uneven chunks across workers.
const chunkSize = 1024

// UpdateChunked ages and moves the pool's entities like Update, fanning the
// work out over the given worker pool for large capacities. The call joins all
// chunks before returning, so from the frame loop's perspective it is the same
// sequential step as Update — no entity state escapes the barrier. Workers are
// reused across frames; a WaitGroup provides the per-frame barrier since the
// pool's own Wait blocks until workers idle-exit, which is unsuitable for
// frame-rate workloads.
//
// Parameters:
//   - wp: the shared worker pool, may be nil to force the serial path
//   - dt: elapsed frame time in seconds
//   - fadeSpeed: aging multiplier (1 = real time)
func (p *Pool) UpdateChunked(wp worker.DynamicWorkerPool, dt, fadeSpeed float32) {
	if wp == nil || len(p.slots) < parallelThreshold {
		p.Update(dt, fadeSpeed)
		return
	}

	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(p.slots); start += chunkSize {
		end := min(start+chunkSize, len(p.slots))
		chunk := p.slots[start:end]

		wg.Add(1)
		id := taskID
		taskID++
		wp.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				ageStep(chunk, dt, fadeSpeed)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
