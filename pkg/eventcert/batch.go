package eventcert

import (
	"context"
	"runtime"
	"sync"
)

type BatchResult struct {
	Index    int
	Document *Document
	Err      error
}

func (r BatchResult) OK() bool {
	return r.Err == nil
}

type renderJob struct {
	index int
	input RenderInput
}

// Bounded by the number of jobs and the configured cap.
func calculateWorkerCount(jobCount, maxWorkers int) int {
	workers := max(runtime.GOMAXPROCS(0)*2, 1)
	if maxWorkers > 0 {
		workers = min(workers, maxWorkers)
	}
	return max(min(workers, jobCount), 1)
}

// BatchHandler consumes a result inside the worker that rendered it. An error it returns
// becomes the error of a successful result.
type BatchHandler func(ctx context.Context, res BatchResult) error

// RenderAll renders every input independently. Results keep the order of inputs and a failed
// input never aborts its siblings. Cancelling ctx stops inputs that have not started yet,
// which then report the context error.
func (r *Renderer) RenderAll(ctx context.Context, inputs []RenderInput, opts RenderOptions) []BatchResult {
	return r.RenderEach(ctx, inputs, opts, nil)
}

// RenderEach is RenderAll handing every rendered result to handle as soon as it is done. The
// returned results carry no documents, so a batch never holds more than one document per
// worker. Inputs skipped by cancellation are not handed to handle.
func (r *Renderer) RenderEach(ctx context.Context, inputs []RenderInput, opts RenderOptions, handle BatchHandler) []BatchResult {
	results := make([]BatchResult, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	jobs := make(chan renderJob)
	var wg sync.WaitGroup

	for range calculateWorkerCount(len(inputs), r.cfg.MaxWorkers) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				doc, err := r.render(ctx, job.input, opts)
				res := BatchResult{Index: job.index, Document: doc, Err: err}
				if handle != nil {
					if err := handle(ctx, res); err != nil && res.Err == nil {
						res.Err = err
					}
					res.Document = nil
				}
				results[job.index] = res
			}
		}()
	}

	next := 0
feed:
	for ; next < len(inputs); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- renderJob{index: next, input: inputs[next]}:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(inputs); i++ {
		results[i] = BatchResult{Index: i, Err: ctx.Err()}
	}

	return results
}

// render turns a panic of one input into its error.
func (r *Renderer) render(ctx context.Context, in RenderInput, opts RenderOptions) (doc *Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, &RenderPanicError{Value: p}
		}
	}()
	return r.Render(ctx, in, opts)
}
