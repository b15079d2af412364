package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores uploads in a local directory served at URLPrefix.
type Disk struct {
	dir       string
	urlPrefix string
}

// NewDisk creates a Disk backend writing into dir. Files are addressed as
// urlPrefix + "/" + name.
func NewDisk(dir, urlPrefix string) *Disk {
	return &Disk{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Dir returns the directory uploads are written to.
func (d *Disk) Dir() string {
	return d.dir
}

// Save writes data to dir/name, creating dir if needed.
func (d *Disk) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("disk save: invalid name %q", name)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("disk save: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("disk save: %w", err)
	}
	return d.urlPrefix + "/" + name, nil
}
