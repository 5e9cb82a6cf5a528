package httpapi

import (
	"io/fs"
	"net/http"
)

// fileOnlyFS hides directories so the file server never renders a listing
// of uploaded images.
type fileOnlyFS struct {
	root http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func staticFiles(dir string) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(fileOnlyFS{root: http.Dir(dir)}))
}
