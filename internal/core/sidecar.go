package core

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SidecarSuffix is appended to a target's file name to locate its metadata.
const SidecarSuffix = ".yaml"

// SidecarPath returns the metadata path for the target at path.
func SidecarPath(path string) string { return path + SidecarSuffix }

// Sidecar is the metadata file written next to an acquired target. Every
// field is optional when reading; files in the wild predate some of them.
type Sidecar struct {
	Query            string         `yaml:"query"`
	Frontloading     []string       `yaml:"frontloading"`
	ImageDescription any            `yaml:"image_description"`
	DatetimeOriginal any            `yaml:"datetime_original"`
	ImgMetadata      map[string]any `yaml:"img_metadata"`
	License          string         `yaml:"license"`
	LicenseMeta      map[string]any `yaml:"license_meta"`
}

// LoadSidecar reads and parses the sidecar at path.
func LoadSidecar(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read sidecar", path, err)
	}
	var sc Sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, formatError("parse sidecar", path, err)
	}
	return &sc, nil
}

// Meta flattens the sidecar into the string map carried by TargetRecord.
func (s *Sidecar) Meta() map[string]string {
	if s == nil {
		return map[string]string{}
	}
	return map[string]string{
		MetaQuery:       s.Query,
		MetaDescription: scalarText(s.ImageDescription),
		MetaDatetime:    scalarText(s.DatetimeOriginal),
		MetaLicense:     s.License,
	}
}

// Marshal encodes the sidecar as YAML. A nil frontloading list is written as
// an empty list so readers always find the key.
func (s *Sidecar) Marshal() ([]byte, error) {
	out := *s
	if out.Frontloading == nil {
		out.Frontloading = []string{}
	}
	return yaml.Marshal(&out)
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
