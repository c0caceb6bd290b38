package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewGateParsesTokenList(t *testing.T) {
	gate := NewGate(" alpha , ,beta,")

	if err := gate.Authorize("alpha"); err != nil {
		t.Fatalf("expected alpha to be allowed: %v", err)
	}
	if err := gate.Authorize("beta"); err != nil {
		t.Fatalf("expected beta to be allowed: %v", err)
	}
	if err := gate.Authorize(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthorize(t *testing.T) {
	gate := NewGate("TREA_DEV_TOKEN_001,FWEA_DEV_TOKEN_001")

	t.Run("no token", func(t *testing.T) {
		if err := gate.Authorize(""); !errors.Is(err, ErrMissingToken) {
			t.Fatalf("expected ErrMissingToken, got %v", err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		if err := gate.Authorize("WRONG"); !errors.Is(err, ErrUnknownToken) {
			t.Fatalf("expected ErrUnknownToken, got %v", err)
		}
	})

	t.Run("listed token", func(t *testing.T) {
		if err := gate.Authorize("FWEA_DEV_TOKEN_001"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stream", nil)
		req.Header.Set("Authorization", "Bearer tok-123")
		if tok := TokenFromRequest(req); tok != "tok-123" {
			t.Fatalf("expected tok-123, got %q", tok)
		}
	})

	t.Run("query fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stream?token=tok-456", nil)
		if tok := TokenFromRequest(req); tok != "tok-456" {
			t.Fatalf("expected tok-456, got %q", tok)
		}
	})

	t.Run("header wins over query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stream?token=query-tok", nil)
		req.Header.Set("Authorization", "Bearer header-tok")
		if tok := TokenFromRequest(req); tok != "header-tok" {
			t.Fatalf("expected header-tok, got %q", tok)
		}
	})

	t.Run("non-bearer scheme ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stream", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		if tok := TokenFromRequest(req); tok != "" {
			t.Fatalf("expected empty token, got %q", tok)
		}
	})
}

func TestRequireTokenMiddleware(t *testing.T) {
	gate := NewGate("good-token")
	protected := RequireToken(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing gives 401", func(t *testing.T) {
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stream", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rr.Code)
		}
	})

	t.Run("unknown gives 403", func(t *testing.T) {
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stream?token=bad-token", nil))
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rr.Code)
		}
	})

	t.Run("listed passes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stream", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
	})
}
