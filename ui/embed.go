// Package ui provides the static assets embedded into the page host.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

// static contains the stylesheet and icons referenced by the page layout.
//
//go:embed static/*
var static embed.FS

// Prefix is the URL path the assets are mounted under.
const Prefix = "/assets/"

// Handler serves the embedded assets under Prefix. Directory listings and
// unknown files are 404s.
func Handler() http.Handler {
	fsys, err := fs.Sub(static, "static")
	if err != nil {
		panic("failed to get static subdirectory: " + err.Error())
	}

	fileServer := http.StripPrefix(strings.TrimSuffix(Prefix, "/"), http.FileServer(http.FS(fsys)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, Prefix)
		if name == "" || strings.HasSuffix(name, "/") || !isAssetPath(name) {
			http.NotFound(w, r)
			return
		}
		if _, err := fs.Stat(fsys, name); err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}

// isAssetPath returns true if the path has a static asset extension.
func isAssetPath(path string) bool {
	assetExtensions := []string{".css", ".js", ".map", ".svg", ".ico", ".png", ".woff2"}

	for _, ext := range assetExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// Available returns true if the embedded assets are present.
func Available() bool {
	entries, err := static.ReadDir("static")
	if err != nil {
		return false
	}
	return len(entries) > 0
}
