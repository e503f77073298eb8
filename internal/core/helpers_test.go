package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"psitool/internal/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(NewHashCache(logger.NewNop()), logger.NewNop())
	e.Rand = NewSeededRand(1)
	return e
}

// fixedRand returns the queued values in order, then repeats the last one.
type fixedRand struct {
	values []int
	calls  []int
}

func (r *fixedRand) IntN(n int) int {
	r.calls = append(r.calls, n)
	v := r.values[0]
	if len(r.values) > 1 {
		r.values = r.values[1:]
	}
	return v % n
}
