// Package commands implements the sharedcounter command line.
package commands

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/1gm/sharedcounter/config"
	"github.com/1gm/sharedcounter/internal/log"
)

const (
	shortDesc = "Increment a shared counter from many goroutines."
	longDesc  = `sharedcounter runs a fixed set of workers against one counter and reports its final value.

The counter is protected either by a mutex (every caller takes the same lock) or
by atomic compare-and-swap (no caller ever blocks). Both end on the same value;
compare runs the same workload with each so their cost under contention can be
seen side by side.`
)

type rootArgs struct {
	logLevel  string
	logFormat string
	logFields map[string]string
	logOutput []string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	args := &rootArgs{}

	cmd := &cobra.Command{
		Use:           "sharedcounter",
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&args.logLevel, "log_level", "", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&args.logFormat, "log_format", "", "Set the log format (text, json)")
	cmd.PersistentFlags().StringSliceVar(&args.logOutput, "log_output", nil, "Write logs to these paths instead of stderr")
	cmd.PersistentFlags().StringToStringVar(&args.logFields, "log_fields", nil, "Fields added to every log entry (key=value,...)")

	cmd.AddCommand(newRunCmd(args), newCompareCmd(args))
	return cmd
}

type runArgs struct {
	configFile string
	strategy   string
	initial    int64
	workers    int
	ops        int
	decrements int
	sequential bool
	poolSize   int
	tasks      int
	timeout    string
}

func (a *runArgs) register(cmd *cobra.Command) {
	def := config.Default()

	f := cmd.Flags()
	f.StringVarP(&a.configFile, "config", "c", "", "YAML file with run settings, flags override it")
	f.StringVar(&a.strategy, "strategy", def.Strategy, "Counter strategy (mutex, atomic)")
	f.Int64Var(&a.initial, "initial", def.Initial, "Starting counter value")
	f.IntVarP(&a.workers, "workers", "w", def.Workers, "Number of incrementing workers")
	f.IntVarP(&a.ops, "ops", "n", def.Ops, "Increments per worker")
	f.IntVar(&a.decrements, "decrements", def.Decrements, "Decrements performed by one extra worker")
	f.BoolVar(&a.sequential, "sequential", def.Sequential, "Run workers one after another")
	f.IntVar(&a.poolSize, "pool", def.Pool.Size, "Run in pool mode with this many workers")
	f.IntVar(&a.tasks, "tasks", def.Pool.Tasks, "Increment tasks submitted in pool mode")
	f.StringVar(&a.timeout, "timeout", "", "Give up waiting for workers after this long (e.g. 5s)")

	if err := cmd.MarkFlagFilename("config", "yaml", "yml"); err != nil {
		panic(err)
	}
}

// load builds the run settings: defaults, then the config file, then any flag set explicitly.
func (a *runArgs) load(cmd *cobra.Command, root *rootArgs) (config.Config, error) {
	cfg := config.Default()
	if a.configFile != "" {
		var err error
		if cfg, err = config.Load(a.configFile); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("strategy") {
		cfg.Strategy = a.strategy
	}
	if f.Changed("initial") {
		cfg.Initial = a.initial
	}
	if f.Changed("workers") {
		cfg.Workers = a.workers
	}
	if f.Changed("ops") {
		cfg.Ops = a.ops
	}
	if f.Changed("decrements") {
		cfg.Decrements = a.decrements
	}
	if f.Changed("sequential") {
		cfg.Sequential = a.sequential
	}
	if f.Changed("pool") {
		cfg.Pool.Size = a.poolSize
	}
	if f.Changed("tasks") {
		cfg.Pool.Tasks = a.tasks
	}
	if f.Changed("timeout") {
		var d config.Duration
		if err := d.Set(a.timeout); err != nil {
			return cfg, errors.Wrap(err, "--timeout")
		}
		cfg.Timeout = d
	}
	if root.logLevel != "" {
		cfg.Log.Level = root.logLevel
	}
	if root.logFormat != "" {
		cfg.Log.Format = root.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	opts := []log.Option{log.WithName("sharedcounter"), log.WithLevel(cfg.Log.Level), log.WithFormat(cfg.Log.Format)}
	if len(root.logOutput) > 0 {
		opts = append(opts, log.WithOutputPaths(root.logOutput...))
	}
	for k, v := range root.logFields {
		opts = append(opts, log.WithFields(k, v))
	}
	log.New(opts...)
	return cfg, nil
}
