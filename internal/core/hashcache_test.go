package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psitool/internal/logger"
	"psitool/internal/rvuid"
)

func countingCache(reads *int) *HashCache {
	c := NewHashCache(logger.NewNop())
	c.ReadFile = func(name string) ([]byte, error) {
		*reads++
		return os.ReadFile(name)
	}
	return c
}

func TestHashCache_ComputesOnce(t *testing.T) {
	p := writeFile(t, t.TempDir(), "a.target", "foobar")
	reads := 0
	c := countingCache(&reads)

	id1, err := c.GetOrCompute(p)
	require.NoError(t, err)
	id2, err := c.GetOrCompute(p)
	require.NoError(t, err)

	assert.Equal(t, 1, reads)
	assert.Equal(t, "R-HZMH-0W6C-PDCY142E5BEYNC5GGW", id1.String())
	assert.True(t, id1.Equal(id2))
	assert.True(t, c.Dirty())
}

func TestHashCache_SymlinkSharesEntry(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.target", "content")
	link := filepath.Join(dir, "link.target")
	if err := os.Symlink(p, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	reads := 0
	c := countingCache(&reads)

	_, err := c.GetOrCompute(p)
	require.NoError(t, err)
	_, err = c.GetOrCompute(link)
	require.NoError(t, err)
	_, err = c.GetOrCompute(filepath.Join(dir, ".", "a.target"))
	require.NoError(t, err)

	assert.Equal(t, 1, reads)
	assert.Equal(t, 1, c.Len())
}

func TestHashCache_MissingFileIsIOError(t *testing.T) {
	c := NewHashCache(nil)
	_, err := c.GetOrCompute(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, ErrIO)
	assert.Zero(t, c.Len())
}

func TestHashCache_SaveLoadRoundTripSkipsRehash(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.jpg", "bbb")
	a := writeFile(t, dir, "a.jpg", "aaa")
	cachePath := filepath.Join(dir, "state", "cache.yaml")

	c := NewHashCache(nil)
	idA, err := c.GetOrCompute(a)
	require.NoError(t, err)
	_, err = c.GetOrCompute(b)
	require.NoError(t, err)
	require.NoError(t, c.Save(cachePath))
	assert.False(t, c.Dirty())

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	text := string(data)
	assert.Less(t, strings.Index(text, "a.jpg"), strings.Index(text, "b.jpg"), "entries sorted by path")
	assert.Contains(t, text, "rvuid: "+idA.String())

	reads := 0
	loaded, err := LoadHashCache(cachePath, nil)
	require.NoError(t, err)
	loaded.ReadFile = func(name string) ([]byte, error) {
		reads++
		return os.ReadFile(name)
	}
	got, err := loaded.GetOrCompute(a)
	require.NoError(t, err)
	assert.Equal(t, idA.UUID(), got.UUID())
	assert.Zero(t, reads)
	assert.Equal(t, 2, loaded.Len())
}

func TestLoadHashCache_MissingIsEmpty(t *testing.T) {
	c, err := LoadHashCache(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestLoadHashCache_Malformed(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"not a list":     "rvuid: x\n",
		"bad identifier": "- rvuid: R-NOPE\n  path: /tmp/x\n",
		"partial":        "- rvuid: R-2DTH-GZW5\n  path: /tmp/x\n",
		"missing path":   "- rvuid: R-2DTH-GZW5-W9FMX29F6HJ52Q8N9C\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, dir, name+".yaml", body)
			_, err := LoadHashCache(p, nil)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestLoadHashCache_DropsVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	kept := writeFile(t, dir, "kept.jpg", "k")
	id := rvuid.Derive([]byte("k"))
	body := "- rvuid: " + id.String() + "\n  path: " + kept + "\n" +
		"- rvuid: " + rvuid.Derive([]byte("g")).String() + "\n  path: " + filepath.Join(dir, "gone.jpg") + "\n"
	p := writeFile(t, dir, "cache.yaml", body)

	c, err := LoadHashCache(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Dirty())
}
