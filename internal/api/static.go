package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/hlog"
)

// staticTypes is the fixed extension → Content-Type table for front-end assets.
var staticTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

const defaultStaticType = "application/octet-stream"

// contentTypeFor returns the Content-Type for a file name.
func contentTypeFor(name string) string {
	if ct, ok := staticTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return defaultStaticType
}

// StaticHandler serves files from root. "/" maps to index.html. Paths that
// resolve outside root get 403; missing files and directories get 404.
func StaticHandler(root string) http.HandlerFunc {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = filepath.Clean(root)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// r.URL.Path is already percent-decoded.
		name := r.URL.Path
		if name == "/" || name == "" {
			name = "/index.html"
		}

		full := filepath.Join(absRoot, filepath.FromSlash(name))
		rel, err := filepath.Rel(absRoot, full)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			WriteText(w, http.StatusForbidden, "Forbidden")
			return
		}

		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			WriteText(w, http.StatusNotFound, "Not Found")
			return
		}

		data, err := os.ReadFile(full)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("file", full).Msg("static read failed")
			WriteText(w, http.StatusNotFound, "Not Found")
			return
		}

		w.Header().Set("Content-Type", contentTypeFor(full))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
