package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/1gm/sharedcounter/counter"
	"github.com/1gm/sharedcounter/harness"
	"github.com/1gm/sharedcounter/internal/log"
)

func newCompareCmd(root *rootArgs) *cobra.Command {
	args := &runArgs{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the same workers against every counter strategy",
		Long: `Run the same workload once per strategy, each against a fresh counter, and print
the final value, elapsed time and throughput for each. The --strategy flag is ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := args.load(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = log.G().Sync() }()

			results, err := harness.Compare(cmd.Context(), cfg.Workload(), cfg.Initial, counter.Strategies, cfg.Options()...)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			var mismatched []string
			for _, r := range results {
				fmt.Fprintf(w, "counter(%s) = %d\telapsed=%s\tops/s=%.0f\n", r.Strategy, r.Final, r.Elapsed, r.Throughput())
				if !r.OK() {
					mismatched = append(mismatched, r.Strategy.String())
				}
			}
			if ferr := w.Flush(); ferr != nil && err == nil {
				err = ferr
			}

			if err != nil {
				return err
			}
			if len(mismatched) > 0 {
				return errors.Wrapf(ErrMismatch, "%v", mismatched)
			}
			return nil
		},
	}
	args.register(cmd)
	return cmd
}
