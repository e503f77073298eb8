package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"psitool/internal/core"
	"psitool/internal/fsutil"
	"psitool/internal/logger"
)

// licenseMetaKeys are the extmetadata fields copied into license_meta. Every
// other field goes to img_metadata.
var licenseMetaKeys = map[string]bool{
	"License":             true,
	"LicenseUrl":          true,
	"LicenseShortName":    true,
	"UsageTerms":          true,
	"AttributionRequired": true,
	"Artist":              true,
	"Permission":          true,
	"Restrictions":        true,
	"Copyrighted":         true,
	"Credit":              true,
}

// Saved locates one acquired target and its sidecar.
type Saved struct {
	Path     string
	MetaPath string

	// Downloaded is false when the image already existed and only the
	// sidecar was rewritten.
	Downloaded bool
}

// Save stores page under dir. It returns ok=false when the page has no image
// or its license is not on the allow-list.
func (c *Client) Save(ctx context.Context, query string, page Page, dir string) (Saved, bool, error) {
	if len(page.ImageInfo) == 0 {
		c.log.Debug("page has no imageinfo", logger.Stringer("page", page))
		return Saved{}, false, nil
	}
	info := page.ImageInfo[0]
	meta := info.ExtMetadata

	license := strings.ReplaceAll(fmt.Sprint(valueOf(meta, "LicenseShortName")), `"`, "")
	if !ValidLicense(license) {
		c.log.Info("rejected license", logger.Stringer("page", page), logger.String("license", license))
		return Saved{}, false, nil
	}
	c.log.Debug("accepted license", logger.Stringer("page", page), logger.String("license", license))

	path := filepath.Join(dir, fileName(page.Title))
	saved := Saved{Path: path, MetaPath: core.SidecarPath(path)}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		c.log.Info("downloading", logger.Stringer("page", page), logger.String("url", info.URL), logger.String("path", path))
		if err := c.download(ctx, info.URL, path); err != nil {
			return Saved{}, false, err
		}
		saved.Downloaded = true
	} else if err != nil {
		return Saved{}, false, core.IOError("stat", path, err)
	}

	sc := &core.Sidecar{
		Query:            query,
		Frontloading:     []string{},
		ImageDescription: metaText(valueOf(meta, "ImageDescription")),
		DatetimeOriginal: metaText(valueOf(meta, "DateTimeOriginal")),
		ImgMetadata:      map[string]any{},
		License:          license,
		LicenseMeta:      map[string]any{},
	}
	for k, v := range meta {
		if licenseMetaKeys[k] {
			sc.LicenseMeta[k] = v.Value
		} else {
			sc.ImgMetadata[k] = v.Value
		}
	}
	data, err := sc.Marshal()
	if err != nil {
		return Saved{}, false, core.FormatError("encode sidecar", saved.MetaPath, err)
	}
	if err := fsutil.WriteFileAtomic(saved.MetaPath, data, 0o644); err != nil {
		return Saved{}, false, core.IOError("write sidecar", saved.MetaPath, err)
	}
	return saved, true, nil
}

func (c *Client) download(ctx context.Context, rawURL, path string) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return core.IOError("write target", path, err)
	}
	return nil
}

func valueOf(meta map[string]ExtValue, key string) any {
	if v, ok := meta[key]; ok && v.Value != nil {
		return v.Value
	}
	return ""
}

// fileName turns "File:Some picture.jpg" into "Some_picture.jpg". Path
// separators are replaced so a title cannot escape the pool directory.
func fileName(title string) string {
	name := strings.TrimPrefix(title, "File:")
	name = strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return name
}
