package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret is the signing secret used by the unit tests.
const testSecret = "test-secret-key-for-unit-tests"

// TestGenerateSessionToken verifies token minting.
func TestGenerateSessionToken(t *testing.T) {
	t.Parallel()

	t.Run("mints a verifiable token carrying the identity claims", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateSessionToken(testSecret, time.Hour, "42", "user@example.com", "User", "member")
		if err != nil {
			t.Fatalf("GenerateSessionToken() error: %v", err)
		}
		if tokenStr == "" {
			t.Fatal("GenerateSessionToken() returned an empty string")
		}

		claims, err := VerifySessionToken(testSecret, tokenStr)
		if err != nil {
			t.Fatalf("VerifySessionToken() error: %v", err)
		}
		if claims.ID != "42" {
			t.Errorf("ID = %q, want %q", claims.ID, "42")
		}
		if claims.Email != "user@example.com" {
			t.Errorf("Email = %q, want %q", claims.Email, "user@example.com")
		}
		if claims.Name != "User" {
			t.Errorf("Name = %q, want %q", claims.Name, "User")
		}
		if claims.Role != "member" {
			t.Errorf("Role = %q, want %q", claims.Role, "member")
		}
		if claims.Issuer != tokenIssuer {
			t.Errorf("Issuer = %q, want %q", claims.Issuer, tokenIssuer)
		}
	})

	t.Run("sets the expiry at the configured offset from issuance", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		tokenStr, err := GenerateSessionToken(testSecret, 168*time.Hour, "42", "exp@example.com", "Exp", "member")
		if err != nil {
			t.Fatalf("GenerateSessionToken() error: %v", err)
		}

		claims, err := VerifySessionToken(testSecret, tokenStr)
		if err != nil {
			t.Fatalf("VerifySessionToken() error: %v", err)
		}

		wantExpiry := before.Add(168 * time.Hour)
		if claims.ExpiresAt.Time.Before(wantExpiry.Add(-time.Minute)) {
			t.Errorf("ExpiresAt = %v, want at least %v", claims.ExpiresAt.Time, wantExpiry.Add(-time.Minute))
		}
		if claims.ExpiresAt.Time.After(wantExpiry.Add(time.Minute)) {
			t.Errorf("ExpiresAt = %v, want at most %v", claims.ExpiresAt.Time, wantExpiry.Add(time.Minute))
		}
		if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(before.Add(-time.Second)) {
			t.Errorf("IssuedAt = %v, want no earlier than %v", claims.IssuedAt, before)
		}
	})

	t.Run("signs with HS256", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateSessionToken(testSecret, time.Hour, "42", "alg@example.com", "Alg", "member")
		if err != nil {
			t.Fatalf("GenerateSessionToken() error: %v", err)
		}

		token, _, err := new(jwt.Parser).ParseUnverified(tokenStr, &SessionClaims{})
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			t.Errorf("alg = %q, want %q", token.Method.Alg(), jwt.SigningMethodHS256.Alg())
		}
	})
}

// TestVerifySessionToken verifies token verification failure modes.
func TestVerifySessionToken(t *testing.T) {
	t.Parallel()

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateSessionToken("some-other-secret", time.Hour, "42", "a@example.com", "A", "member")
		if err != nil {
			t.Fatalf("GenerateSessionToken() error: %v", err)
		}
		if _, err := VerifySessionToken(testSecret, tokenStr); err == nil {
			t.Fatal("VerifySessionToken() accepted a token signed with another secret")
		}
	})

	t.Run("rejects an expired token even with a valid signature", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateSessionToken(testSecret, -time.Minute, "42", "a@example.com", "A", "member")
		if err != nil {
			t.Fatalf("GenerateSessionToken() error: %v", err)
		}
		if _, err := VerifySessionToken(testSecret, tokenStr); err == nil {
			t.Fatal("VerifySessionToken() accepted an expired token")
		}
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		t.Parallel()

		if _, err := VerifySessionToken(testSecret, "not-a-token"); err == nil {
			t.Fatal("VerifySessionToken() accepted garbage input")
		}
	})
}

// TestBearerToken verifies Authorization header parsing.
func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "well-formed header", header: "Bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "empty header", header: "", wantOK: false},
		{name: "missing token segment", header: "Bearer ", wantOK: false},
		{name: "wrong scheme", header: "Basic abc", wantOK: false},
		{name: "bare token without scheme", header: "abc.def.ghi", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := BearerToken(tt.header)
			if ok != tt.wantOK {
				t.Fatalf("BearerToken(%q) ok = %v, want %v", tt.header, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

// newGuardedRouter builds a router with one protected route that
// records whether the handler ran.
func newGuardedRouter(handlerCalled *bool) *gin.Engine {
	router := gin.New()
	router.GET("/protected", RequireSession(testSecret), func(c *gin.Context) {
		*handlerCalled = true
		claims := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	return router
}

// TestRequireSession verifies the guard.
func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("lets a valid token through and attaches the claims", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateSessionToken(testSecret, time.Hour, "42", "user@example.com", "User", "member")
		if err != nil {
			t.Fatalf("GenerateSessionToken() error: %v", err)
		}

		handlerCalled := false
		router := newGuardedRouter(&handlerCalled)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}
		if !handlerCalled {
			t.Fatal("handler did not run for a valid token")
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["email"] != "user@example.com" {
			t.Errorf("email = %q, want %q", body["email"], "user@example.com")
		}
	})

	t.Run("denies a request with no Authorization header", func(t *testing.T) {
		t.Parallel()

		handlerCalled := false
		router := newGuardedRouter(&handlerCalled)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assertUnauthorized(t, w, "No token provided", handlerCalled)
	})

	t.Run("denies a malformed Bearer prefix", func(t *testing.T) {
		t.Parallel()

		handlerCalled := false
		router := newGuardedRouter(&handlerCalled)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc.def.ghi")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assertUnauthorized(t, w, "No token provided", handlerCalled)
	})

	t.Run("denies a tampered token", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateSessionToken(testSecret, time.Hour, "42", "user@example.com", "User", "member")
		if err != nil {
			t.Fatalf("GenerateSessionToken() error: %v", err)
		}
		tampered := tokenStr[:len(tokenStr)-2] + "xx"

		handlerCalled := false
		router := newGuardedRouter(&handlerCalled)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tampered)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assertUnauthorized(t, w, "Invalid token", handlerCalled)
	})

	t.Run("denies an expired token with the same body as a tampered one", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateSessionToken(testSecret, -time.Minute, "42", "user@example.com", "User", "member")
		if err != nil {
			t.Fatalf("GenerateSessionToken() error: %v", err)
		}

		handlerCalled := false
		router := newGuardedRouter(&handlerCalled)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assertUnauthorized(t, w, "Invalid token", handlerCalled)
	})
}

// assertUnauthorized checks for a 401 with the given error message and
// that the protected handler never ran.
func assertUnauthorized(t *testing.T, w *httptest.ResponseRecorder, wantError string, handlerCalled bool) {
	t.Helper()

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if handlerCalled {
		t.Fatal("handler ran for an unauthorized request")
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != wantError {
		t.Errorf("error = %q, want %q", body["error"], wantError)
	}
}

// TestCurrentSession verifies context access outside the guard.
func TestCurrentSession(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when no session is attached", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if got := CurrentSession(c); got != nil {
			t.Errorf("CurrentSession() = %+v, want nil", got)
		}
	})
}
