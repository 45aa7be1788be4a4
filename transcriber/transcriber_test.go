package transcriber

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"murmur/audio"
)

var testBlob = audio.Blob{Data: []byte("fake-flac-bytes"), Format: "flac", Frames: 16000}

func TestLocalTranscribe(t *testing.T) {
	var gotLanguage, gotITN, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe/normal" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotITN = r.FormValue("use_itn")
		if fhs := r.MultipartForm.File["file"]; len(fhs) == 1 {
			gotFilename = fhs[0].Filename
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "你好 世界"})
	}))
	defer srv.Close()

	l := NewLocal(srv.URL, 5*time.Second)
	res, err := l.Transcribe(context.Background(), testBlob, Options{Language: "auto", InverseTextNorm: true})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "你好 世界" {
		t.Errorf("text = %q", res.Text)
	}
	if gotLanguage != "auto" {
		t.Errorf("language = %q, want auto", gotLanguage)
	}
	if gotITN != "true" {
		t.Errorf("use_itn = %q, want true", gotITN)
	}
	if gotFilename != "audio.flac" {
		t.Errorf("filename = %q", gotFilename)
	}
}

func TestRemoteTranscribe(t *testing.T) {
	var gotAuth, gotModel, gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		r.ParseMultipartForm(1 << 20)
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		json.NewEncoder(w).Encode(map[string]string{"text": "hello world"})
	}))
	defer srv.Close()

	rt := NewRemote(srv.URL, "secret", "", 5*time.Second)
	res, err := rt.Transcribe(context.Background(), testBlob, Options{Language: "auto"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "hello world" {
		t.Errorf("text = %q", res.Text)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotModel != defaultRemoteModel {
		t.Errorf("model = %q", gotModel)
	}
	if gotLanguage != "" {
		t.Errorf("language sent for auto: %q", gotLanguage)
	}
}

func TestErrorClassification(t *testing.T) {
	t.Run("status 4xx is bad audio", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unsupported codec", http.StatusUnsupportedMediaType)
		}))
		defer srv.Close()

		_, err := NewLocal(srv.URL, time.Second).Transcribe(context.Background(), testBlob, Options{})
		assertKind(t, err, BadAudio)
		if IsConnection(err) {
			t.Error("content error classified as connection error")
		}
	})

	t.Run("status 5xx is server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewLocal(srv.URL, time.Second).Transcribe(context.Background(), testBlob, Options{})
		assertKind(t, err, ServerError)
	})

	t.Run("refused connection is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // nothing listens any more

		_, err := NewLocal(srv.URL, time.Second).Transcribe(context.Background(), testBlob, Options{})
		assertKind(t, err, Unreachable)
		if !IsConnection(err) {
			t.Error("refused connection not classified as connection error")
		}
	})

	t.Run("deadline is timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Hold the request open until the client gives up.
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := NewLocal(srv.URL, time.Minute).Transcribe(ctx, testBlob, Options{})
		assertKind(t, err, Timeout)
		if !IsConnection(err) {
			t.Error("timeout not classified as connection error")
		}
	})
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	te, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type %T, want *Error (%v)", err, err)
	}
	if te.Kind != want {
		t.Errorf("kind = %v, want %v", te.Kind, want)
	}
}
