// Package storage writes report attachments to the local filesystem under the
// {tenant}/{reportID}/{filename} convention. Upload storage mechanics beyond
// this (CDNs, object stores) live outside this service.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Save streams r to disk and returns the tenant-scoped storage path and the
// number of bytes written. The filename is flattened to its base to keep
// writes inside the upload root.
func (l *Local) Save(tenantID, reportID, filename string, r io.Reader) (string, int64, error) {
	name := filepath.Base(filename)
	relPath := filepath.Join(tenantID, reportID, name)
	absPath := filepath.Join(l.root, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return "", 0, fmt.Errorf("failed to write upload: %w", err)
	}
	return relPath, n, nil
}
