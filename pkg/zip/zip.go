// Package zip bundles in-memory files into a zip archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

type File struct {
	Filename string
	Modified time.Time
	Data     []byte
}

// Archive writes files in order. Names must be unique.
func Archive(files []File) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f.Filename]; dup {
			return nil, fmt.Errorf("zip: duplicate file %q", f.Filename)
		}
		seen[f.Filename] = struct{}{}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Filename,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", f.Filename, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", f.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}
