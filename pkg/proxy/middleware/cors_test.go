package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ragkit-hq/bridge/pkg/config"
)

func TestCORSMiddleware(t *testing.T) {
	var reached bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	listed := &CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"tauri://localhost"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         3600,
	}
	open := &CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}

	tests := []struct {
		name          string
		config        *CORSConfig
		method        string
		origin        string
		requestMethod string
		wantCode      int
		wantOrigin    string
		wantMethods   string
		wantMaxAge    string
		wantExposed   string
		wantReached   bool
	}{
		{
			name:        "listed origin is echoed",
			config:      listed,
			method:      http.MethodGet,
			origin:      "tauri://localhost",
			wantCode:    http.StatusOK,
			wantOrigin:  "tauri://localhost",
			wantExposed: "X-Request-ID",
			wantReached: true,
		},
		{
			name:        "unlisted origin gets no headers",
			config:      listed,
			method:      http.MethodGet,
			origin:      "https://evil.example",
			wantCode:    http.StatusOK,
			wantReached: true,
		},
		{
			name:        "no origin gets no headers",
			config:      listed,
			method:      http.MethodPost,
			wantCode:    http.StatusOK,
			wantReached: true,
		},
		{
			name:        "wildcard answers star",
			config:      open,
			method:      http.MethodGet,
			origin:      "http://localhost:5173",
			wantCode:    http.StatusOK,
			wantOrigin:  "*",
			wantReached: true,
		},
		{
			name:          "preflight is answered",
			config:        listed,
			method:        http.MethodOptions,
			origin:        "tauri://localhost",
			requestMethod: "POST",
			wantCode:      http.StatusNoContent,
			wantOrigin:    "tauri://localhost",
			wantMethods:   "GET, POST",
			wantMaxAge:    "3600",
			wantExposed:   "X-Request-ID",
		},
		{
			name:        "plain OPTIONS passes through",
			config:      open,
			method:      http.MethodOptions,
			origin:      "tauri://localhost",
			wantCode:    http.StatusOK,
			wantOrigin:  "*",
			wantReached: true,
		},
		{
			name:        "disabled",
			config:      &CORSConfig{Enabled: false, AllowedOrigins: []string{"*"}},
			method:      http.MethodGet,
			origin:      "tauri://localhost",
			wantCode:    http.StatusOK,
			wantReached: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(tt.method, "/bridge/call", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.requestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tt.requestMethod)
			}
			w := httptest.NewRecorder()

			CORSMiddleware(tt.config)(handler).ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if reached != tt.wantReached {
				t.Errorf("handler reached = %v, want %v", reached, tt.wantReached)
			}
			checks := map[string]string{
				"Access-Control-Allow-Origin":   tt.wantOrigin,
				"Access-Control-Allow-Methods":  tt.wantMethods,
				"Access-Control-Max-Age":        tt.wantMaxAge,
				"Access-Control-Expose-Headers": tt.wantExposed,
			}
			for header, want := range checks {
				if got := w.Header().Get(header); got != want {
					t.Errorf("%s = %q, want %q", header, got, want)
				}
			}
		})
	}
}

func TestCORSMiddlewareVary(t *testing.T) {
	cfg := &CORSConfig{Enabled: true, AllowedOrigins: []string{"tauri://localhost"}}
	handler := CORSMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin", got)
	}
}

func TestNewCORSConfig(t *testing.T) {
	cfg := config.DefaultConfig().Bridge.CORS
	cfg.AllowedOrigins = []string{"tauri://localhost"}

	got := NewCORSConfig(cfg)

	if !got.Enabled {
		t.Error("Enabled should follow the configuration")
	}
	if len(got.AllowedOrigins) != 1 || got.AllowedOrigins[0] != "tauri://localhost" {
		t.Errorf("AllowedOrigins = %v", got.AllowedOrigins)
	}
	if len(got.ExposedHeaders) != 1 || got.ExposedHeaders[0] != RequestIDHeader {
		t.Errorf("ExposedHeaders = %v, want [%s]", got.ExposedHeaders, RequestIDHeader)
	}
	if got.MaxAge != cfg.MaxAge {
		t.Errorf("MaxAge = %d, want %d", got.MaxAge, cfg.MaxAge)
	}
}
