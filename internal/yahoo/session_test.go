package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSessionCookie(t *testing.T) {
	t.Run("missing Set-Cookie header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		err := c.ensureSession(context.Background())
		if !errors.Is(err, ErrNoCookies) {
			t.Fatalf("expected ErrNoCookies, got %v", err)
		}
	})

	t.Run("non-printable bytes in cookie", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/cookie" {
				w.Header().Set("Set-Cookie", "A3=séssion; Path=/")
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		err := c.ensureSession(context.Background())
		if !errors.Is(err, ErrInvisibleASCIIInCookies) {
			t.Fatalf("expected ErrInvisibleASCIIInCookies, got %v", err)
		}
	})

	t.Run("cookie endpoint unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := newTestClient(t, srv)
		err := c.ensureSession(context.Background())
		if !errors.Is(err, ErrConnection) {
			t.Fatalf("expected ErrConnection, got %v", err)
		}
	})
}

func TestSessionCrumb(t *testing.T) {
	t.Run("trims crumb body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				w.Write([]byte("  abc123\n"))
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		if err := c.ensureSession(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := c.currentCrumb(); got != "abc123" {
			t.Errorf("crumb = %q, want %q", got, "abc123")
		}
	})

	t.Run("429 fails immediately", func(t *testing.T) {
		var crumbCalls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				atomic.AddInt32(&crumbCalls, 1)
				w.WriteHeader(http.StatusTooManyRequests)
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		err := c.ensureSession(context.Background())
		var rle *RateLimitError
		if !errors.As(err, &rle) {
			t.Fatalf("expected *RateLimitError, got %T: %v", err, err)
		}
		if crumbCalls != 1 {
			t.Errorf("crumb calls = %d, want 1", crumbCalls)
		}
	})

	t.Run("rate limit marker in body fails immediately", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				w.Write([]byte("Too Many Requests"))
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		err := c.ensureSession(context.Background())
		var rle *RateLimitError
		if !errors.As(err, &rle) {
			t.Fatalf("expected *RateLimitError, got %T: %v", err, err)
		}
	})

	t.Run("invalid cookie triggers one cookie refresh", func(t *testing.T) {
		var cookieCalls, crumbCalls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				atomic.AddInt32(&cookieCalls, 1)
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				if atomic.AddInt32(&crumbCalls, 1) == 1 {
					w.Write([]byte("Invalid Cookie"))
				} else {
					w.Write([]byte("good-crumb"))
				}
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		if err := c.ensureSession(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cookieCalls != 2 {
			t.Errorf("cookie calls = %d, want 2", cookieCalls)
		}
		if crumbCalls != 2 {
			t.Errorf("crumb calls = %d, want 2", crumbCalls)
		}
		if got := c.currentCrumb(); got != "good-crumb" {
			t.Errorf("crumb = %q, want %q", got, "good-crumb")
		}
	})

	t.Run("persistent invalid cookie is terminal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				w.Write([]byte("Invalid Cookie"))
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		err := c.ensureSession(context.Background())
		if !errors.Is(err, ErrInvalidCookie) {
			t.Fatalf("expected ErrInvalidCookie, got %v", err)
		}
	})

	t.Run("empty crumb body retried", func(t *testing.T) {
		var crumbCalls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				if atomic.AddInt32(&crumbCalls, 1) == 1 {
					w.Write([]byte("   \n"))
					return
				}
				w.Write([]byte("crumb"))
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		if err := c.ensureSession(context.Background()); err != nil {
			t.Fatalf("ensureSession failed: %v", err)
		}
		if got := atomic.LoadInt32(&crumbCalls); got != 2 {
			t.Errorf("crumb calls = %d, want 2", got)
		}
		if c.currentCrumb() != "crumb" {
			t.Errorf("crumb = %q, want %q", c.currentCrumb(), "crumb")
		}
	})

	t.Run("empty crumb body exhausts retry budget", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				w.Write([]byte("   \n"))
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		err := c.ensureSession(context.Background())
		if !errors.Is(err, ErrInvalidCrumb) {
			t.Fatalf("expected ErrInvalidCrumb, got %v", err)
		}
	})

	t.Run("session is reused across calls", func(t *testing.T) {
		var cookieCalls, crumbCalls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				atomic.AddInt32(&cookieCalls, 1)
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				atomic.AddInt32(&crumbCalls, 1)
				w.Write([]byte("crumb"))
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		for i := 0; i < 3; i++ {
			if err := c.ensureSession(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if cookieCalls != 1 || crumbCalls != 1 {
			t.Errorf("cookie/crumb calls = %d/%d, want 1/1", cookieCalls, crumbCalls)
		}
	})
}
