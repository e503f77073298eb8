package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psitool/internal/rvuid"
	"psitool/internal/trace"
)

func poolDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "c.target", "a written target")
	writeFile(t, dir, "a.jpg", "jpeg bytes")
	writeFile(t, dir, "a.jpg.yaml", "query: lighthouse\nfrontloading: [tall]\nlicense: CC0\n")
	writeFile(t, dir, "b.SVG", "<svg/>")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "README", "no extension")
	writeFile(t, dir, "sub/d.jpg", "nested, not scanned")
	return dir
}

func TestListTargets_ClassifiesAndSorts(t *testing.T) {
	dir := poolDir(t)
	e := newTestEngine(t)

	targets, err := e.ListTargets(dir, nil)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	assert.Equal(t, "a.jpg", filepath.Base(targets[0].Path))
	assert.Equal(t, "b.SVG", filepath.Base(targets[1].Path))
	assert.Equal(t, "c.target", filepath.Base(targets[2].Path))

	assert.Equal(t, EntryRasterImage, targets[0].Type)
	assert.Equal(t, EntryVectorImage, targets[1].Type)
	assert.Equal(t, EntryText, targets[2].Type)

	assert.True(t, filepath.IsAbs(targets[0].Path))
	assert.Equal(t, targets[0].Path+".yaml", targets[0].MetaPath)
	assert.Equal(t, []string{"tall"}, targets[0].Frontloading)
	assert.Equal(t, "lighthouse", targets[0].Meta[MetaQuery])
	assert.NotNil(t, targets[0].Sidecar)

	assert.Empty(t, targets[1].MetaPath)
	assert.Empty(t, targets[1].Meta)
	assert.Equal(t, rvuid.Derive([]byte("<svg/>")).UUID(), targets[1].ID.UUID())
}

func TestListTargets_MalformedSidecarDropsOnlyThatTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.jpg", "bad")
	writeFile(t, dir, "bad.jpg.yaml", "frontloading: {oops: 1}\n")
	writeFile(t, dir, "good.jpg", "good")

	e := newTestEngine(t)
	rec := trace.NewRecorder()
	e.Trace = rec

	targets, err := e.ListTargets(dir, nil)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "good.jpg", filepath.Base(targets[0].Path))

	events := rec.Trace().Events
	require.Len(t, events, 1)
	assert.Equal(t, trace.EventSidecarRejected, events[0].Kind)
}

func TestListTargets_Exclusion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "a")
	writeFile(t, dir, "b.jpg", "b")
	writeFile(t, dir, "c.jpg", "c")
	idA := rvuid.Derive([]byte("a"))
	idB := rvuid.Derive([]byte("b"))

	e := newTestEngine(t)

	targets, err := e.ListTargets(dir, rvuid.NewSet(idA, idB.Truncate()))
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "c.jpg", filepath.Base(targets[0].Path))

	n, err := e.CountEligible(dir, rvuid.NewSet())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestListTargets_UnreadableRoot(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.ListTargets(filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, ErrIO)
}

func TestListTargets_SkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "a")
	if err := os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, "dangling.jpg")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	targets, err := newTestEngine(t).ListTargets(dir, nil)
	require.NoError(t, err)
	require.Len(t, targets, 1)
}

func TestPickRandom(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "a")
	writeFile(t, dir, "b.jpg", "b")

	e := newTestEngine(t)
	e.Rand = &fixedRand{values: []int{1}}
	got, err := e.PickRandom(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", filepath.Base(got.Path))

	_, err = e.PickRandom(dir, rvuid.NewSet(rvuid.Derive([]byte("a")), rvuid.Derive([]byte("b"))))
	assert.ErrorIs(t, err, ErrEmptyPool)
}
