package storage

import (
	"os"
	"path/filepath"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/logger"
)

// DiskBackend persists blobs as flat files under a single directory:
// <root>/<sanitized filename>. No subdirectories, no extensions rewritten.
type DiskBackend struct {
	root string
	lgr  logger.Logger
}

// NewDiskBackend creates the root directory if needed and returns a backend
// rooted there.
func NewDiskBackend(root string, lgr logger.Logger) (*DiskBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskBackend{root: root, lgr: lgr}, nil
}

func (d *DiskBackend) path(name string) (string, error) {
	clean, err := SanitizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, clean), nil
}

func (d *DiskBackend) Save(name string, data []byte) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		d.lgr.Error("backend: save failed", logger.F("name", name), logger.F("err", err.Error()))
		return chorderr.ErrInternal
	}
	d.lgr.Debug("backend: file saved", logger.F("name", name))
	return nil
}

func (d *DiskBackend) Get(name string) ([]byte, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, chorderr.ErrNotFound
	}
	if err != nil {
		d.lgr.Error("backend: read failed", logger.F("name", name), logger.F("err", err.Error()))
		return nil, chorderr.ErrInternal
	}
	return data, nil
}

func (d *DiskBackend) Delete(name string) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); os.IsNotExist(err) {
		return chorderr.ErrNotFound
	} else if err != nil {
		d.lgr.Error("backend: delete failed", logger.F("name", name), logger.F("err", err.Error()))
		return chorderr.ErrInternal
	}
	d.lgr.Debug("backend: file deleted", logger.F("name", name))
	return nil
}

func (d *DiskBackend) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, chorderr.ErrInternal
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (d *DiskBackend) ScanRange(inRange func(name string) bool) ([]Entry, error) {
	names, err := d.List()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, name := range names {
		if !inRange(name) {
			continue
		}
		data, err := d.Get(name)
		if err != nil {
			continue
		}
		out = append(out, Entry{Name: name, Data: data})
	}
	return out, nil
}
