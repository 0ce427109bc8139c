package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/1gm/sharedcounter/counter"
	"github.com/1gm/sharedcounter/harness"
	"github.com/1gm/sharedcounter/internal/log"
)

// ErrMismatch is returned when the counter does not end on the value the workload guarantees.
var ErrMismatch = errors.New("final value does not match expected value")

func newRunCmd(root *rootArgs) *cobra.Command {
	args := &runArgs{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the workers once and print the counter's final value",
		Example: `  sharedcounter run --strategy mutex --workers 2 --ops 100
  sharedcounter run --strategy atomic --pool 4 --tasks 100
  sharedcounter run --workers 1 --ops 50 --decrements 20 --sequential`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := args.load(cmd, root)
			if err != nil {
				return err
			}
			defer func() { _ = log.G().Sync() }()

			s, err := cfg.StrategyValue()
			if err != nil {
				return err
			}
			c, err := counter.New(s, cfg.Initial)
			if err != nil {
				return err
			}
			named := counter.Named(fmt.Sprintf("counter(%s)", s), c)

			ctx := log.Put(cmd.Context(), "strategy", s.String(), "counter", named.Name())
			res, err := harness.Execute(ctx, named, cfg.Workload(), cfg.Options()...)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), named)
			if !res.OK() {
				log.Warnw(ctx, "final value does not match", "final", res.Final, "expected", res.Expected)
				return errors.Wrapf(ErrMismatch, "got %d, want %d", res.Final, res.Expected)
			}
			return nil
		},
	}
	args.register(cmd)
	return cmd
}
