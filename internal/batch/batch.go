// Package batch translates many documents on a bounded worker pool,
// skipping sources that have not changed since their last translation.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gerunddev/mdtrans/internal/logger"
	"github.com/gerunddev/mdtrans/internal/state"
	"github.com/gerunddev/mdtrans/internal/translate"
	"github.com/gerunddev/mdtrans/internal/walk"
)

// Translator translates one document and writes its output.
type Translator interface {
	TranslateFile(ctx context.Context, pair walk.Pair, req translate.Request) (*translate.Result, error)
}

// Status is the outcome of one document.
type Status int

const (
	StatusTranslated Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusTranslated:
		return "translated"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// FileResult reports one document of a run.
type FileResult struct {
	Pair     walk.Pair
	Status   Status
	Reason   string
	Chars    int
	Err      error
	Duration time.Duration
}

// Result represents the result of a batch run
type Result struct {
	RunID     string
	Files     []FileResult
	StartTime time.Time
	EndTime   time.Time
}

func (r *Result) count(s Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == s {
			n++
		}
	}
	return n
}

func (r *Result) Translated() int { return r.count(StatusTranslated) }
func (r *Result) Skipped() int    { return r.count(StatusSkipped) }
func (r *Result) Failed() int     { return r.count(StatusFailed) }

// Err joins the errors of all failed documents, nil when none failed.
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// String returns a human-readable summary
func (r *Result) String() string {
	return fmt.Sprintf(
		"Translation complete: %d files translated, %d skipped, %d errors (took %v)",
		r.Translated(),
		r.Skipped(),
		r.Failed(),
		r.EndTime.Sub(r.StartTime).Round(time.Millisecond),
	)
}

// Runner runs batches. The State may be nil, in which case every document
// is translated.
type Runner struct {
	translator Translator
	state      *state.State
	log        *logger.Logger
	workers    int
	force      bool
	progress   func(FileResult)
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of documents in flight.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithForce translates unchanged documents too.
func WithForce(force bool) Option {
	return func(r *Runner) { r.force = force }
}

// WithProgress registers fn to be called after each document. It is called
// from worker goroutines.
func WithProgress(fn func(FileResult)) Option {
	return func(r *Runner) { r.progress = fn }
}

// NewRunner creates a new runner instance
func NewRunner(tr Translator, st *state.State, log *logger.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	r := &Runner{
		translator: tr,
		state:      st,
		log:        log,
		workers:    1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run translates pairs. A failing document never stops the others; the
// returned Result lists every document in input order.
func (r *Runner) Run(ctx context.Context, pairs []walk.Pair, req translate.Request) *Result {
	result := &Result{
		RunID:     uuid.NewString(),
		Files:     make([]FileResult, len(pairs)),
		StartTime: time.Now(),
	}
	r.log.TranslationStarted(result.RunID, req.From.String(), req.To.String(), len(pairs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(r.workers, len(pairs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fr := r.process(ctx, pairs[i], req)
				result.Files[i] = fr
				if r.progress != nil {
					r.progress(fr)
				}
			}
		}()
	}
	for i := range pairs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result.EndTime = time.Now()
	r.log.BatchCompleted(result.Translated(), result.Skipped(), result.Failed(), result.EndTime.Sub(result.StartTime))
	return result
}

func (r *Runner) process(ctx context.Context, pair walk.Pair, req translate.Request) FileResult {
	start := time.Now()
	fr := FileResult{Pair: pair}
	fail := func(err error) FileResult {
		r.log.FileError(pair.Source, err)
		fr.Status = StatusFailed
		fr.Err = err
		fr.Duration = time.Since(start)
		return fr
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	key := state.Pair(req.From.String(), req.To.String())
	if r.state != nil && !r.force {
		need, reason, err := r.state.NeedsTranslation(pair.Source, pair.Dest, key)
		switch {
		case err != nil:
			r.log.StateError("check", err)
		case !need:
			r.log.FileSkipped(pair.Source, reason)
			fr.Status = StatusSkipped
			fr.Reason = reason
			fr.Duration = time.Since(start)
			return fr
		default:
			fr.Reason = reason
		}
	}

	res, err := r.translator.TranslateFile(ctx, pair, req)
	if err != nil {
		return fail(err)
	}

	if r.state != nil {
		if err := r.state.Record(pair.Source, pair.Dest, key); err != nil {
			r.log.StateError("record", err)
		}
	}

	fr.Status = StatusTranslated
	fr.Chars = res.Chars
	fr.Duration = time.Since(start)
	return fr
}
