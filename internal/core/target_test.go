package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]EntryKind{
		"a.jpg":        EntryRasterImage,
		"a.JPG":        EntryRasterImage,
		"a.jpeg":       EntryRasterImage,
		"a.Jpeg":       EntryRasterImage,
		"a.svg":        EntryVectorImage,
		"a.SVG":        EntryVectorImage,
		"a.target":     EntryText,
		"a.jpg.yaml":   EntrySidecar,
		"a.yml":        EntrySidecar,
		"README":       EntryUnrecognized,
		"a.png":        EntryUnrecognized,
		"a.jpg.bak":    EntryUnrecognized,
		"archive.tar":  EntryUnrecognized,
		"":             EntryUnrecognized,
		"dir/b.target": EntryText,
	}
	for name, want := range cases {
		assert.Equal(t, want, Classify(name), "name %q", name)
	}
}

func TestEntryKind_IsTarget(t *testing.T) {
	assert.True(t, EntryRasterImage.IsTarget())
	assert.True(t, EntryVectorImage.IsTarget())
	assert.True(t, EntryText.IsTarget())
	assert.False(t, EntrySidecar.IsTarget())
	assert.False(t, EntryUnrecognized.IsTarget())
	assert.Equal(t, "raster-image", EntryRasterImage.String())
}

func TestTargetRecord_IterMetaOrder(t *testing.T) {
	rec := TargetRecord{Meta: map[string]string{
		MetaLicense: "CC0",
		MetaQuery:   "lighthouse",
		"Other":     "ignored",
	}}
	assert.Equal(t, []MetaItem{
		{Key: "Query", Value: "lighthouse"},
		{Key: "Description", Value: ""},
		{Key: "Datetime", Value: ""},
		{Key: "License", Value: "CC0"},
	}, rec.IterMeta())
}
