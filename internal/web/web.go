// Package web serves the progressive web app manifest and service worker.
package web

import (
	"embed"
	"net/http"
)

//go:embed static/manifest.json static/sw.js
var assets embed.FS

func Manifest(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "static/manifest.json", "application/manifest+json")
}

// ServiceWorker is served from the root so its scope covers the whole app.
func ServiceWorker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Service-Worker-Allowed", "/")
	w.Header().Set("Cache-Control", "no-cache")
	serve(w, r, "static/sw.js", "application/javascript")
}

func serve(w http.ResponseWriter, r *http.Request, name, contentType string) {
	data, err := assets.ReadFile(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
