package poster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/datallboy/gonntp/internal/domain"
	"github.com/datallboy/gonntp/internal/nntp"
)

// Result is the outcome for one builder passed to PublishAll.
type Result struct {
	Index  int
	Record *domain.PostRecord
	Err    error
}

type postJob struct {
	index   int
	builder *nntp.Builder
}

// PublishAll posts every builder using a worker pool sized to the
// providers' connection capacity. Jobs that find every provider busy
// are requeued; any other error is final for that builder.
func (s *Service) PublishAll(ctx context.Context, builders []*nntp.Builder) ([]Result, error) {
	if len(builders) == 0 {
		return nil, nil
	}

	// Ask the manager for the connection limit
	capacity := s.app.NNTP.TotalCapacity()
	if capacity <= 0 {
		return nil, fmt.Errorf("no posting capacity available: check server max_connections")
	}

	// Add 2 extra workers to ensure there's always a worker waiting for a slot
	workerCount := capacity + 2

	// jobs holds every builder at once, so requeueing never blocks
	jobs := make(chan postJob, len(builders))
	results := make(chan Result, workerCount*2)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, jobs, results)
		}()
	}

	for i, b := range builders {
		jobs <- postJob{index: i, builder: b}
	}

	out := make([]Result, len(builders))
	completed := 0
	for completed < len(builders) {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case res := <-results:
			if errors.Is(res.Err, nntp.ErrProviderBusy) {
				job := postJob{index: res.Index, builder: builders[res.Index]}
				time.AfterFunc(100*time.Millisecond, func() {
					select {
					case <-ctx.Done():
					case jobs <- job:
					}
				})
				continue
			}
			if res.Err != nil {
				s.app.Logger.Error("[FAIL] Article %d failed: %v", res.Index, res.Err)
			}
			out[res.Index] = res
			completed++
		}
	}

	return out, nil
}

// worker pulls jobs from the channel until the context is cancelled
func (s *Service) worker(ctx context.Context, jobs <-chan postJob, results chan<- Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-jobs:
			rec, err := s.Publish(ctx, job.builder)
			select {
			case results <- Result{Index: job.index, Record: rec, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}
