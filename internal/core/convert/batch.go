package convert

import (
	"context"
	"sync"

	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

// BatchResult is the outcome of one conversion in a batch.
type BatchResult struct {
	Name string
	Path string
	Err  error
}

// ConvertBatch runs one pipeline instance per request over a bounded worker
// pool. Conversions are independent: each is committed or failed on its own,
// and a failure never rolls back earlier successes. Results keep the input
// order.
func (p *Pipeline) ConvertBatch(ctx context.Context, reqs []Request, workers int) []BatchResult {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	type job struct {
		index int
		req   Request
	}

	jobs := make(chan job)
	results := make([]BatchResult, len(reqs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := p.Convert(ctx, j.req)
				results[j.index] = BatchResult{Name: j.req.Name, Err: err}
				if err == nil {
					results[j.index].Path = res.Path
				}
			}
		}()
	}

	for i, req := range reqs {
		select {
		case jobs <- job{index: i, req: req}:
		case <-ctx.Done():
			// Unscheduled requests fail with the context error;
			// in-flight ones run to completion or fail cleanly.
			results[i] = BatchResult{
				Name: req.Name,
				Err:  common.NewExtractionError(common.KindServiceUnavailable, ctx.Err()),
			}
		}
	}
	close(jobs)
	wg.Wait()

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	common.LogInfo("batch finished",
		zap.Int("total", len(reqs)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)

	return results
}
