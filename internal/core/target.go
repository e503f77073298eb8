package core

import (
	"path/filepath"
	"strings"

	"psitool/internal/rvuid"
)

// EntryKind is the closed classification of a directory entry by extension.
type EntryKind int

const (
	EntryUnrecognized EntryKind = iota
	EntryRasterImage
	EntryVectorImage
	EntryText
	EntrySidecar
)

func (k EntryKind) String() string {
	switch k {
	case EntryRasterImage:
		return "raster-image"
	case EntryVectorImage:
		return "vector-image"
	case EntryText:
		return "text"
	case EntrySidecar:
		return "sidecar"
	default:
		return "unrecognized"
	}
}

// IsTarget reports whether entries of this kind are offered as targets.
func (k EntryKind) IsTarget() bool {
	return k == EntryRasterImage || k == EntryVectorImage || k == EntryText
}

// Classify maps a file name to its kind. Matching is case-insensitive.
func Classify(name string) EntryKind {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "jpg", "jpeg":
		return EntryRasterImage
	case "svg":
		return EntryVectorImage
	case "target":
		return EntryText
	case "yaml", "yml":
		return EntrySidecar
	default:
		return EntryUnrecognized
	}
}

// Metadata keys exposed on every TargetRecord, in presentation order.
const (
	MetaQuery       = "Query"
	MetaDescription = "Description"
	MetaDatetime    = "Datetime"
	MetaLicense     = "License"
)

var metaKeys = []string{MetaQuery, MetaDescription, MetaDatetime, MetaLicense}

// TargetRecord is one eligible target found by a scan. It is rebuilt on
// every run and never persisted.
type TargetRecord struct {
	ID       rvuid.Identifier
	Path     string
	MetaPath string
	Type     EntryKind

	Frontloading []string
	Meta         map[string]string

	// Sidecar is the parsed metadata file, nil when the target has none.
	Sidecar *Sidecar
}

func (t TargetRecord) String() string {
	return "Target[" + t.ID.String() + "]"
}

// MetaItem is one key/value pair of target metadata.
type MetaItem struct {
	Key   string
	Value string
}

// IterMeta returns the well-known metadata keys in fixed order. Missing keys
// have an empty value.
func (t TargetRecord) IterMeta() []MetaItem {
	out := make([]MetaItem, 0, len(metaKeys))
	for _, k := range metaKeys {
		out = append(out, MetaItem{Key: k, Value: t.Meta[k]})
	}
	return out
}
