package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestElevenLabs_Success(t *testing.T) {
	var gotPath, gotKey, gotModel, gotFile, gotType string
	var gotAudio []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		gotModel = r.FormValue("model_id")
		f, h, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		gotFile = h.Filename
		gotType = h.Header.Get("Content-Type")
		gotAudio, _ = io.ReadAll(f)
		f.Close()
		io.WriteString(w, `{"language_code":"en","text":"scribe says hi","words":[]}`)
	}))
	defer srv.Close()

	client := NewElevenLabsClient(srv.URL+"/", "xi-test", "", 5*time.Second)
	resp, err := client.Transcribe(context.Background(), Request{
		Audio:    []byte("fake-audio"),
		MimeType: "audio/wav",
		FileName: "memo.wav",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "scribe says hi" {
		t.Errorf("Text = %q", resp.Text)
	}
	if gotPath != "/v1/speech-to-text" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "xi-test" {
		t.Errorf("xi-api-key = %q", gotKey)
	}
	if gotModel != "scribe_v1" {
		t.Errorf("model_id = %q", gotModel)
	}
	if gotFile != "memo.wav" || gotType != "audio/wav" {
		t.Errorf("file = %q (%q), want memo.wav (audio/wav)", gotFile, gotType)
	}
	if string(gotAudio) != "fake-audio" {
		t.Errorf("audio = %q", gotAudio)
	}
}

func TestElevenLabs_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantUp   bool
		wantMsg  string
		wantResp error
	}{
		{"upstream_401", 401, `{"detail":{"status":"invalid_api_key"}}`, true, `{"detail":{"status":"invalid_api_key"}}`, nil},
		{"upstream_empty_body", 503, "", true, "Transcription failed.", nil},
		{"not_json", 200, "<html>", false, "", ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewElevenLabsClient(srv.URL, "k", "", 5*time.Second)
			_, err := client.Transcribe(context.Background(), Request{Audio: []byte("x"), MimeType: "audio/webm"})
			if err == nil {
				t.Fatal("expected error")
			}
			var upErr *UpstreamError
			if tt.wantUp {
				if !errors.As(err, &upErr) {
					t.Fatalf("err = %T %v, want *UpstreamError", err, err)
				}
				if upErr.StatusCode != tt.status || upErr.Message != tt.wantMsg {
					t.Errorf("got %d %q, want %d %q", upErr.StatusCode, upErr.Message, tt.status, tt.wantMsg)
				}
				return
			}
			if !errors.Is(err, tt.wantResp) {
				t.Errorf("err = %v, want %v", err, tt.wantResp)
			}
		})
	}
}
