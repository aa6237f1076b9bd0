package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// localOrigins is the server.allowed_origins default
var localOrigins = []string{"http://localhost:*"}

func TestOriginPolicy_LocalhostDefault(t *testing.T) {
	policy := newOriginPolicy(localOrigins)

	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:8080", true},
		{"http://localhost:5173", true},
		{"https://localhost:8080", false},
		{"http://127.0.0.1:8080", false},
		{"http://cars.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := policy.allows(tt.origin); got != tt.want {
			t.Errorf("allows(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestOriginPolicy_ExactEntriesAndBlanks(t *testing.T) {
	policy := newOriginPolicy([]string{" https://cars.example.com ", "", "http://localhost:*"})

	if !policy.allows("https://cars.example.com") {
		t.Errorf("exact entry with surrounding spaces should be allowed")
	}
	if policy.allows("https://cars.example.com.evil.test") {
		t.Errorf("exact entry must not match as a prefix")
	}
	if policy.allows("") {
		t.Errorf("blank entry must not admit requests without an Origin")
	}
}

func TestCORSMiddleware_SessionPreflight(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"keystroke on a slot", "PUT", "/api/v1/sessions/abc/slots/a/query"},
		{"page teardown", "DELETE", "/api/v1/sessions/abc"},
		{"compare", "POST", "/api/v1/sessions/abc/compare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestRouter(t)

			req := httptest.NewRequest("OPTIONS", tt.path, nil)
			req.Header.Set("Origin", "http://localhost:5173")
			req.Header.Set("Access-Control-Request-Method", tt.method)
			req.Header.Set("Access-Control-Request-Headers", "content-type")
			w := httptest.NewRecorder()
			ts.router.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Fatalf("Status = %d, want %d", w.Code, http.StatusNoContent)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
				t.Errorf("Access-Control-Allow-Origin = %q", got)
			}
			if methods := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, tt.method) {
				t.Errorf("Access-Control-Allow-Methods = %q, want it to include %s", methods, tt.method)
			}
			if headers := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(headers, "Content-Type") {
				t.Errorf("Access-Control-Allow-Headers = %q, want Content-Type", headers)
			}
			if w.Header().Get("Access-Control-Max-Age") == "" {
				t.Errorf("Access-Control-Max-Age not set")
			}
		})
	}
}

func TestCORSMiddleware_DisallowedOriginOnEventStream(t *testing.T) {
	ts := setupTestRouter(t)
	id := ts.createSession(t)
	path := "/api/v1/sessions/" + id + "/events"

	t.Run("preflight gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", path, nil)
		req.Header.Set("Origin", "http://cars.example.com")
		req.Header.Set("Access-Control-Request-Method", "GET")
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)

		if w.Code == http.StatusNoContent {
			t.Errorf("preflight from a disallowed origin should not be answered")
		}
		for _, h := range []string{"Access-Control-Allow-Origin", "Access-Control-Allow-Methods", "Access-Control-Allow-Headers"} {
			if got := w.Header().Get(h); got != "" {
				t.Errorf("%s = %q, want empty", h, got)
			}
		}
	})

	t.Run("stream opens without CORS headers", func(t *testing.T) {
		server := httptest.NewServer(ts.router)
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, "GET", server.URL+path, nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Origin", "http://cars.example.com")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
		if got := resp.Header.Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q, want Origin", got)
		}
	})
}

func TestCORSMiddleware_SimpleRequestPassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware(localOrigins))
	router.OPTIONS("/api/v1/sessions", func(c *gin.Context) {
		c.String(http.StatusOK, "route")
	})

	// OPTIONS without Access-Control-Request-Method is not a preflight
	req := httptest.NewRequest("OPTIONS", "/api/v1/sessions", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "route" {
		t.Errorf("got %d %q, want the route to answer", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8080" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Errorf("Access-Control-Allow-Methods = %q, want empty outside preflight", got)
	}
}

func TestLoggerMiddleware_SkipsEventStream(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(LoggerMiddleware())
	router.GET("/api/v1/sessions/:id/events", func(c *gin.Context) {
		c.String(http.StatusOK, "stream")
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	for _, path := range []string{"/api/v1/sessions/abc/events", "/health"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: Status = %d, want %d", path, w.Code, http.StatusOK)
		}
	}
}
