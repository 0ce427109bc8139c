package harness

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/1gm/sharedcounter/counter"
)

// ErrInvalidPlan is returned for workloads that cannot be run, such as negative operation counts.
var ErrInvalidPlan = errors.New("invalid plan")

// Op is a single counter operation performed by a worker.
type Op int

const (
	Increment Op = iota
	Decrement
)

func (o Op) String() string {
	switch o {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

func (o Op) delta() int64 {
	if o == Decrement {
		return -1
	}
	return 1
}

func (o Op) apply(c counter.Counter) {
	if o == Decrement {
		c.Decrement()
		return
	}
	c.Increment()
}

func (o Op) valid() bool {
	return o == Increment || o == Decrement
}

// Worker performs Op on the shared counter Count times in a row.
type Worker struct {
	Op    Op
	Count int
}

// Plan is a fixed set of workers run against one shared counter.
type Plan struct {
	Workers []Worker
	// Sequential runs the workers one after another in declaration order instead of concurrently.
	Sequential bool
}

// Uniform returns a concurrent Plan of n workers that each perform op k times.
func Uniform(n, k int, op Op) Plan {
	var p Plan
	for i := 0; i < n; i++ {
		p.Workers = append(p.Workers, Worker{Op: op, Count: k})
	}
	return p
}

// Then returns a copy of p with w appended.
func (p Plan) Then(w Worker) Plan {
	workers := make([]Worker, 0, len(p.Workers)+1)
	workers = append(workers, p.Workers...)
	p.Workers = append(workers, w)
	return p
}

// Ops returns the total number of operations in the plan.
func (p Plan) Ops() int {
	var n int
	for _, w := range p.Workers {
		n += w.Count
	}
	return n
}

// Expected returns the value a counter starting at initial must hold once every worker has finished.
func (p Plan) Expected(initial int64) int64 {
	v := initial
	for _, w := range p.Workers {
		v += w.Op.delta() * int64(w.Count)
	}
	return v
}

func (p Plan) validate() error {
	for i, w := range p.Workers {
		if w.Count < 0 {
			return errors.Wrapf(ErrInvalidPlan, "worker %d: negative count %d", i, w.Count)
		}
		if !w.Op.valid() {
			return errors.Wrapf(ErrInvalidPlan, "worker %d: %s", i, w.Op)
		}
	}
	return nil
}

// Pool submits Tasks single-operation tasks in order, with at most Size of them running at once.
type Pool struct {
	Size  int
	Tasks int
	Op    Op
}

// Ops returns the total number of operations submitted to the pool.
func (p Pool) Ops() int {
	return p.Tasks
}

// Expected returns the value a counter starting at initial must hold once every task has run.
func (p Pool) Expected(initial int64) int64 {
	return initial + p.Op.delta()*int64(p.Tasks)
}

func (p Pool) validate() error {
	switch {
	case p.Tasks < 0:
		return errors.Wrapf(ErrInvalidPlan, "negative task count %d", p.Tasks)
	case p.Size < 0:
		return errors.Wrapf(ErrInvalidPlan, "negative pool size %d", p.Size)
	case p.Size == 0 && p.Tasks > 0:
		return errors.Wrapf(ErrInvalidPlan, "%d tasks submitted to an empty pool", p.Tasks)
	case !p.Op.valid():
		return errors.Wrap(ErrInvalidPlan, p.Op.String())
	}
	return nil
}
