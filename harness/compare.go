package harness

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/1gm/sharedcounter/counter"
	"github.com/1gm/sharedcounter/internal/log"
)

// Comparison is the result of running a workload with one counter strategy.
type Comparison struct {
	Strategy counter.Strategy
	*Result
}

// Compare runs w once per strategy, each time against a fresh counter starting at initial, and
// returns the results in the order the strategies were given. A failed strategy does not stop the
// others; its error is combined into the returned error and it is left out of the results.
func Compare(ctx context.Context, w Workload, initial int64, strategies []counter.Strategy, opts ...Option) ([]Comparison, error) {
	var (
		out  []Comparison
		errs error
	)
	for _, s := range strategies {
		c, err := counter.New(s, initial)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		res, err := Execute(log.Put(ctx, "strategy", s.String()), c, w, opts...)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, s.String()))
			continue
		}
		out = append(out, Comparison{Strategy: s, Result: res})
	}
	return out, errs
}
