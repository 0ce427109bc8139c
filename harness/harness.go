// Package harness runs fixed sets of workers against a shared counter and joins them.
//
// A Workload describes the work: a Plan gives every worker its own run of operations, a Pool feeds
// single-operation tasks to a fixed number of workers. Run, RunPool and Compare execute a workload and
// report the counter's final value next to the value the workload guarantees.
package harness

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/1gm/sharedcounter/counter"
	"github.com/1gm/sharedcounter/internal/log"
)

// ErrIncompleteJoin is returned when the context ends or the timeout expires before every worker has
// finished. No result is produced in that case.
var ErrIncompleteJoin = errors.New("incomplete join")

// Workload is a fixed amount of work against a shared counter. It is implemented by Plan and Pool.
type Workload interface {
	// Ops returns the number of counter operations in the workload.
	Ops() int
	// Expected returns the final value of a counter that started at initial.
	Expected(initial int64) int64

	validate() error
	schedule() schedule
}

// schedule is how a workload is fed to the errgroup: n tasks with at most limit running at once.
type schedule struct {
	limit int
	n     int
	task  func(ctx context.Context, c counter.Counter, i int) error
}

// Result is the outcome of a workload whose workers all finished.
type Result struct {
	Initial  int64
	Final    int64
	Expected int64
	Ops      int
	Elapsed  time.Duration
}

// OK reports whether the counter ended on the expected value.
func (r *Result) OK() bool {
	return r.Final == r.Expected
}

// Throughput returns counter operations per second.
func (r *Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// Option configures a run.
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithTimeout bounds how long the coordinator waits for the workers. Zero or negative waits forever.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Run executes p against c and waits for every worker.
func Run(ctx context.Context, c counter.Counter, p Plan, opts ...Option) (*Result, error) {
	return Execute(ctx, c, p, opts...)
}

// RunPool executes p against c and waits for every task.
func RunPool(ctx context.Context, c counter.Counter, p Pool, opts ...Option) (*Result, error) {
	return Execute(ctx, c, p, opts...)
}

// Execute runs w against c and joins every worker. If ctx ends or the timeout expires first, the
// error wraps ErrIncompleteJoin. Workers that have all finished by then still count as a complete
// join, and a workload with nothing to run always succeeds. A worker that panics fails the run.
func Execute(ctx context.Context, c counter.Counter, w Workload, opts ...Option) (*Result, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	s := w.schedule()
	initial := c.Get()
	finished := counter.NewAtomicCounter(0)
	start := time.Now()

	switch {
	case s.n == 0:
		return result(ctx, c, w, initial, start), nil
	case ctx.Err() != nil:
		return nil, incomplete(ctx, 0, s.n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	joined := make(chan error, 1)
	go func() {
		for i := 0; i < s.n; i++ {
			i := i
			if gctx.Err() != nil {
				break
			}
			g.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = errors.Errorf("task %d panicked: %v", i, r)
					}
				}()
				if err = s.task(gctx, c, i); err == nil {
					finished.Increment()
				}
				return err
			})
		}
		joined <- g.Wait()
	}()

	var err error
	select {
	case err = <-joined:
	case <-ctx.Done():
		// the workers may have finished as the context ended
		select {
		case err = <-joined:
		default:
			return nil, incomplete(ctx, finished.Get(), s.n)
		}
	}

	if err != nil || finished.Get() != int64(s.n) {
		if ctx.Err() != nil {
			return nil, incomplete(ctx, finished.Get(), s.n)
		}
		log.Errorw(ctx, "worker failed", "error", err)
		return nil, errors.Wrap(err, "harness")
	}
	return result(ctx, c, w, initial, start), nil
}

func result(ctx context.Context, c counter.Counter, w Workload, initial int64, start time.Time) *Result {
	res := &Result{
		Initial:  initial,
		Final:    c.Get(),
		Expected: w.Expected(initial),
		Ops:      w.Ops(),
		Elapsed:  time.Since(start),
	}
	log.Infow(ctx, "run complete", "final", res.Final, "expected", res.Expected, "ops", res.Ops, "elapsed", res.Elapsed)
	return res
}

func incomplete(ctx context.Context, finished int64, total int) error {
	log.Errorw(ctx, "tasks did not finish", "finished_tasks", finished, "total_tasks", total, "cause", ctx.Err())
	return errors.Wrapf(ErrIncompleteJoin, "%d of %d tasks finished: %v", finished, total, ctx.Err())
}

func (p Plan) schedule() schedule {
	limit := -1
	if p.Sequential {
		limit = 1
	}
	return schedule{
		limit: limit,
		n:     len(p.Workers),
		task: func(ctx context.Context, c counter.Counter, i int) error {
			w := p.Workers[i]
			done := ctx.Done()
			for j := 0; j < w.Count; j++ {
				select {
				case <-done:
					return ctx.Err()
				default:
				}
				w.Op.apply(c)
			}
			log.Debugw(log.Put(ctx, "worker", i), "worker finished", "op", w.Op.String(), "count", w.Count)
			return nil
		},
	}
}

func (p Pool) schedule() schedule {
	return schedule{
		limit: p.Size,
		n:     p.Tasks,
		task: func(_ context.Context, c counter.Counter, _ int) error {
			p.Op.apply(c)
			return nil
		},
	}
}
