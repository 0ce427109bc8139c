package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/1gm/sharedcounter/config"
	"github.com/1gm/sharedcounter/counter"
	"github.com/1gm/sharedcounter/harness"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	s, err := cfg.StrategyValue()
	require.NoError(t, err)
	assert.Equal(t, counter.Mutex, s)
	assert.Equal(t, int64(200), cfg.Workload().Expected(0))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
strategy: atomic
initial: 5
workers: 1
ops: 50
decrements: 20
sequential: true
timeout: 2s
log:
  level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "atomic", cfg.Strategy)
	assert.Equal(t, int64(5), cfg.Initial)
	assert.Equal(t, config.Duration(2*time.Second), cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset fields keep their defaults")

	plan, ok := cfg.Workload().(harness.Plan)
	require.True(t, ok)
	assert.True(t, plan.Sequential)
	assert.Equal(t, int64(30), plan.Expected(0))
}

func TestLoadPool(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeFile(t, "strategy: lock-free\npool:\n  size: 4\n  tasks: 100\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, harness.Pool{Size: 4, Tasks: 100, Op: harness.Increment}, cfg.Workload())
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"bad yaml":     "workers: [",
		"bad duration": "timeout: soon",
		"wrong type":   "workers: many",
	}

	for name, content := range tests {
		content := content
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Load(writeFile(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to parse config file")
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Strategy = "semaphore"
	cfg.Workers = -1
	cfg.Ops = -2
	cfg.Pool.Tasks = 3
	cfg.Timeout = config.Duration(-time.Second)
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Len(t, multierr.Errors(err), 6)
}
