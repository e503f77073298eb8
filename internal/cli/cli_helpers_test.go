package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"psitool/internal/logger"
)

type fixture struct {
	dir        string
	configPath string
	cachePath  string
	ledgerPath string
	pools      map[string]string
	opened     []string
}

// newFixture writes a config with the given pools; each pool maps file names
// to contents.
func newFixture(t *testing.T, pools map[string]map[string]string, labels map[string]string) *fixture {
	t.Helper()
	for _, k := range []string{"PSITOOL_CONFIG", "PSITOOL_CACHE_PATH", "PSITOOL_LEDGER_PATH", "PSITOOL_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	f := &fixture{
		dir:        dir,
		configPath: filepath.Join(dir, "psitool.yaml"),
		cachePath:  filepath.Join(dir, "state", "cache.yaml"),
		ledgerPath: filepath.Join(dir, "state", "completed.yaml"),
		pools:      map[string]string{},
	}

	var cfg strings.Builder
	cfg.WriteString("target_pools:\n")
	for name, files := range pools {
		pdir := filepath.Join(dir, "pools", name)
		require.NoError(t, os.MkdirAll(pdir, 0o755))
		for fname, content := range files {
			require.NoError(t, os.WriteFile(filepath.Join(pdir, fname), []byte(content), 0o644))
		}
		f.pools[name] = pdir
		cfg.WriteString("  " + name + ":\n    path: pools/" + name + "\n")
		if l, ok := labels[name]; ok {
			cfg.WriteString("    labels: [" + l + "]\n")
		}
		cfg.WriteString("    wiki:\n      queries:\n        - query: lighthouse\n")
	}
	require.NoError(t, os.WriteFile(f.configPath, []byte(cfg.String()), 0o644))
	return f
}

func (f *fixture) run(t *testing.T, input string, args ...string) (int, string, string) {
	t.Helper()
	return f.runApp(t, nil, input, args...)
}

func (f *fixture) runApp(t *testing.T, tweak func(*App), input string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(strings.NewReader(input), &out, &errOut)
	app.Log = logger.NewNop()
	app.NoColor = true
	app.Open = func(path string) error {
		f.opened = append(f.opened, path)
		return nil
	}
	if tweak != nil {
		tweak(app)
	}
	full := append([]string{"--config", f.configPath, "--cache", f.cachePath, "--ledger", f.ledgerPath}, args...)
	code := app.Run(context.Background(), full)
	return code, out.String(), errOut.String()
}
