package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// newAssetRoot creates public/ inside a temp dir with a sibling secret file
// outside the root, so traversal attempts have something to reach for.
func newAssetRoot(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "public")
	files := map[string]string{
		"public/index.html":    "<!DOCTYPE html><title>Recorder</title>",
		"public/app.js":        "console.log('hi')",
		"public/style.css":     "body{}",
		"public/logo.PNG":      "png",
		"public/data.bin":      "\x00\x01",
		"public/sub/page.html": "<p>nested</p>",
		"secret.txt":           "do not serve",
	}
	for name, content := range files {
		p := filepath.Join(base, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestStaticHandler(t *testing.T) {
	root := newAssetRoot(t)
	handler := StaticHandler(root)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantType string
		wantBody string
	}{
		{"root_serves_index", "/", 200, "text/html; charset=utf-8", "<!DOCTYPE html><title>Recorder</title>"},
		{"javascript", "/app.js", 200, "text/javascript; charset=utf-8", "console.log('hi')"},
		{"css", "/style.css", 200, "text/css; charset=utf-8", "body{}"},
		{"extension_case_insensitive", "/logo.PNG", 200, "image/png", "png"},
		{"unknown_extension", "/data.bin", 200, "application/octet-stream", "\x00\x01"},
		{"nested_file", "/sub/page.html", 200, "text/html; charset=utf-8", "<p>nested</p>"},
		{"missing_file", "/nonexistent.png", 404, "text/plain; charset=utf-8", "Not Found"},
		{"directory", "/sub", 404, "text/plain; charset=utf-8", "Not Found"},
		{"traversal", "/../../etc/passwd", 403, "text/plain; charset=utf-8", "Forbidden"},
		{"traversal_to_sibling", "/../secret.txt", 403, "text/plain; charset=utf-8", "Forbidden"},
		{"dotdot_inside_root_is_fine", "/sub/../app.js", 200, "text/javascript; charset=utf-8", "console.log('hi')"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.URL.Path = tt.path
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d; body = %q", rec.Code, tt.wantCode, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantType)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestStaticHandler_RelativeRoot(t *testing.T) {
	root := newAssetRoot(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	rel, err := filepath.Rel(wd, root)
	if err != nil {
		t.Skipf("temp dir not relative to working dir: %v", err)
	}

	rec := httptest.NewRecorder()
	StaticHandler(rel)(rec, httptest.NewRequest("GET", "/app.js", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
