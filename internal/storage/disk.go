package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/filex"
	"github.com/korssa/gong34/internal/models"
)

var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "webp": {}, "svg": {}, "avif": {}, "ico": {}, "bmp": {},
}

// Disk is the filesystem side of the local file endpoints.
type Disk struct {
	dir string
	now func() time.Time
}

func NewDisk(dir string) (*Disk, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Disk{dir: abs, now: time.Now}, nil
}

func (d *Disk) Dir() string { return d.dir }

// Save writes asset under a generated name and returns its /uploads/ URL.
// Only image extensions are accepted.
func (d *Disk) Save(asset models.Asset, prefix string) (string, error) {
	ext := asset.Ext()
	if _, ok := imageExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: unsupported file type %q", common.ErrValidation, ext)
	}
	if len(asset.Data) == 0 {
		return "", fmt.Errorf("%w: empty file", common.ErrValidation)
	}

	name := ObjectName(prefix, ext, d.now())
	p, err := filex.SafeJoin(d.dir, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, asset.Data, 0o640); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", common.ErrUpload, name, err)
	}
	return LocalURLPrefix + name, nil
}

// Remove deletes the file behind a /uploads/ URL.
func (d *Disk) Remove(url string) error {
	if !IsLocalURL(url) {
		return fmt.Errorf("%w: not a local url %q", common.ErrValidation, url)
	}
	name := strings.TrimPrefix(url, LocalURLPrefix)
	p, err := filex.SafeJoin(d.dir, name)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", common.ErrNotFound, name)
		}
		return fmt.Errorf("%w: %v", common.ErrDelete, err)
	}
	return nil
}
