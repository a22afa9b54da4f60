package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagecli/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"chatty", logrus.InfoLevel},
	}
	for _, tt := range tests {
		log := New(config.LoggingConfig{Level: tt.level}, &bytes.Buffer{})
		if log.GetLevel() != tt.want {
			t.Errorf("level %q: got %v, want %v", tt.level, log.GetLevel(), tt.want)
		}
	}
}

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	log.WithField("profile", "default").Info("loaded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json format should emit JSON, got %q: %v", buf.String(), err)
	}
	if entry["profile"] != "default" || entry["msg"] != "loaded" {
		t.Errorf("entry: got %v", entry)
	}

	buf.Reset()
	log = New(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	log.Info("plain")
	if !strings.Contains(buf.String(), `msg=plain`) {
		t.Errorf("text format: got %q", buf.String())
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "warn"}, &buf)
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Middleware(log))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fine"))
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	tests := []struct {
		path   string
		status float64
		level  string
	}{
		{"/ok", 200, "info"},
		{"/missing", 404, "warning"},
	}

	for _, tt := range tests {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("%s: decode log line %q: %v", tt.path, buf.String(), err)
		}
		if entry["path"] != tt.path {
			t.Errorf("%s: path field = %v", tt.path, entry["path"])
		}
		if entry["status"] != tt.status {
			t.Errorf("%s: status field = %v, want %v", tt.path, entry["status"], tt.status)
		}
		if entry["level"] != tt.level {
			t.Errorf("%s: level = %v, want %v", tt.path, entry["level"], tt.level)
		}
		if id, _ := entry["request_id"].(string); id == "" {
			t.Errorf("%s: missing request id", tt.path)
		}
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing to see")
}
