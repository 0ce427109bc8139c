// Package config loads the settings for a counter run from YAML.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/1gm/sharedcounter/counter"
	"github.com/1gm/sharedcounter/harness"
	"github.com/1gm/sharedcounter/internal/log"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents a counter run.
type Config struct {
	Strategy   string   `yaml:"strategy"`
	Initial    int64    `yaml:"initial"`
	Workers    int      `yaml:"workers"`
	Ops        int      `yaml:"ops"`
	Decrements int      `yaml:"decrements"`
	Sequential bool     `yaml:"sequential"`
	Pool       Pool     `yaml:"pool"`
	Timeout    Duration `yaml:"timeout"`
	Log        Log      `yaml:"log"`
}

// Pool switches the run to pool mode when Size is non-zero.
type Pool struct {
	Size  int `yaml:"size"`
	Tasks int `yaml:"tasks"`
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a time.Duration written as a string such as "30s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return errors.Wrapf(d.Set(s), "line %d", node.Line)
}

// Set parses s with time.ParseDuration. An empty string means no timeout.
func (d *Duration) Set(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the settings used when no file is given: 2 workers incrementing a mutex counter
// 100 times each.
func Default() Config {
	return Config{
		Strategy: counter.Mutex.String(),
		Workers:  2,
		Ops:      100,
		Log: Log{
			Level:  log.InfoLevel,
			Format: log.TextFormat,
		},
	}
}

// Load reads filename and overlays it on Default.
func Load(filename string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to parse config file")
	}
	return cfg, nil
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs error
	add := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidConfig, format, args...))
	}

	if _, err := counter.ParseStrategy(c.Strategy); err != nil {
		add("strategy %q", c.Strategy)
	}
	if c.Workers < 0 {
		add("workers must not be negative, got %d", c.Workers)
	}
	if c.Ops < 0 {
		add("ops must not be negative, got %d", c.Ops)
	}
	if c.Decrements < 0 {
		add("decrements must not be negative, got %d", c.Decrements)
	}
	if c.Pool.Size < 0 {
		add("pool.size must not be negative, got %d", c.Pool.Size)
	}
	if c.Pool.Tasks < 0 {
		add("pool.tasks must not be negative, got %d", c.Pool.Tasks)
	}
	if c.Pool.Size == 0 && c.Pool.Tasks > 0 {
		add("pool.tasks set without pool.size")
	}
	if c.Timeout < 0 {
		add("timeout must not be negative, got %s", time.Duration(c.Timeout))
	}
	if !log.ValidLevel(c.Log.Level) {
		add("log.level %q", c.Log.Level)
	}
	if !log.ValidFormat(c.Log.Format) {
		add("log.format %q", c.Log.Format)
	}
	return errs
}

// StrategyValue returns the parsed Strategy.
func (c Config) StrategyValue() (counter.Strategy, error) {
	return counter.ParseStrategy(c.Strategy)
}

// Workload converts the settings into a harness workload. In pool mode Pool.Tasks increments are
// submitted to Pool.Size workers. Otherwise Workers workers increment Ops times each alongside a
// single worker decrementing Decrements times, one after another when Sequential is set.
func (c Config) Workload() harness.Workload {
	if c.Pool.Size > 0 {
		return harness.Pool{Size: c.Pool.Size, Tasks: c.Pool.Tasks, Op: harness.Increment}
	}

	plan := harness.Uniform(c.Workers, c.Ops, harness.Increment)
	if c.Decrements > 0 {
		plan = plan.Then(harness.Worker{Op: harness.Decrement, Count: c.Decrements})
	}
	plan.Sequential = c.Sequential
	return plan
}

// Options returns the harness options for the run.
func (c Config) Options() []harness.Option {
	return []harness.Option{harness.WithTimeout(time.Duration(c.Timeout))}
}
