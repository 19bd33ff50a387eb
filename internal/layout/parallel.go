package layout

import (
	"runtime"
	"sync"

	"github.com/inodb/vibe-track/internal/cache"
	"github.com/inodb/vibe-track/internal/clinvar"
)

// Job is one track to lay out, e.g. one gene's variants.
type Job struct {
	Seq         int
	Name        string
	Variants    []*clinvar.Variant
	Transcripts []*cache.Transcript
	Scale       Scaler
}

// Result holds the layout of a single job.
type Result struct {
	Seq   int
	Name  string
	Track *Track
}

// LayoutAll lays out jobs using a pool of workers. Results are sent to the
// returned channel in arrival order (not sequence order); use
// OrderedCollect to consume them in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (e *Engine) LayoutAll(jobs <-chan Job, workers int) <-chan Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan Result, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- Result{
					Seq:   job.Seq,
					Name:  job.Name,
					Track: e.Layout(job.Variants, job.Transcripts, job.Scale),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// Out-of-order results wait in a pending map until the next expected
// sequence number arrives. Blocks until the results channel is closed.
func OrderedCollect(results <-chan Result, fn func(Result) error) error {
	pending := make(map[int]Result)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
