package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1gm/sharedcounter/cmd/sharedcounter/commands"
	"github.com/1gm/sharedcounter/config"
	"github.com/1gm/sharedcounter/harness"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := commands.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log_level", "error"))

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRun(t *testing.T) {
	tests := map[string]struct {
		args []string
		want string
	}{
		"defaults": {
			args: []string{"run"},
			want: "counter(mutex) = 200",
		},
		"mutex 2x100": {
			args: []string{"run", "--strategy", "mutex", "-w", "2", "-n", "100"},
			want: "counter(mutex) = 200",
		},
		"atomic pool": {
			args: []string{"run", "--strategy", "atomic", "--pool", "4", "--tasks", "100"},
			want: "counter(atomic) = 100",
		},
		"increments then decrements": {
			args: []string{"run", "--strategy", "atomic", "-w", "1", "-n", "50", "--decrements", "20", "--sequential"},
			want: "counter(atomic) = 30",
		},
		"no workers": {
			args: []string{"run", "-w", "0"},
			want: "counter(mutex) = 0",
		},
		"initial value": {
			args: []string{"run", "--initial", "-5", "-w", "1", "-n", "5", "--timeout", "1m"},
			want: "counter(mutex) = 0",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, context.Background(), tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, strings.TrimSpace(out))
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy: atomic\nworkers: 3\nops: 10\n"), 0o644))

	out, err := execute(t, context.Background(), "run", "-c", path)
	require.NoError(t, err)
	assert.Equal(t, "counter(atomic) = 30", strings.TrimSpace(out))

	out, err = execute(t, context.Background(), "run", "-c", path, "--strategy", "mutex")
	require.NoError(t, err)
	assert.Equal(t, "counter(mutex) = 30", strings.TrimSpace(out), "flags override the file")
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, context.Background(), "run", "--strategy", "spinlock")
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = execute(t, context.Background(), "run", "--timeout", "soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--timeout")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = execute(t, ctx, "run", "-w", "4", "-n", "1000")
	require.ErrorIs(t, err, harness.ErrIncompleteJoin)
}

func TestCompare(t *testing.T) {
	out, err := execute(t, context.Background(), "compare", "-w", "4", "-n", "250")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "counter(mutex) = 1000"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "counter(atomic) = 1000"), lines[1])
	assert.Contains(t, lines[0], "elapsed=")
	assert.Contains(t, lines[1], "ops/s=")
}

func TestRunLogFields(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")

	var out bytes.Buffer
	cmd := commands.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"run", "--strategy", "atomic",
		"--log_level", "info", "--log_format", "json",
		"--log_output", logFile, "--log_fields", "app=sharedcounter,env=test",
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, "counter(atomic) = 200", strings.TrimSpace(out.String()))

	b, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var complete map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "run complete" {
			complete = entry
		}
	}
	require.NotNil(t, complete, "no run complete entry in %s", b)

	assert.Equal(t, "sharedcounter", complete["logger"])
	assert.Equal(t, "sharedcounter", complete["app"])
	assert.Equal(t, "test", complete["env"])
	assert.Equal(t, "atomic", complete["strategy"])
	assert.Equal(t, "counter(atomic)", complete["counter"])
	assert.Equal(t, float64(200), complete["final"])
}
