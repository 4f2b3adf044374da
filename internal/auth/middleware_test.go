package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func echoSubjectHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ := SubjectFromContext(r.Context())
		w.Write([]byte(subject))
	})
}

func TestRequireAuth(t *testing.T) {
	verifier, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	handler := RequireAuth(verifier)(echoSubjectHandler(t))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, validClaims("user-123")), http.StatusOK, "user-123"},
		{"no header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer not.a.jwt", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	verifier, _ := NewVerifier(testSecret)
	handler := OptionalAuth(verifier)(echoSubjectHandler(t))

	// Anonymous request passes through with no subject.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("anonymous: status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "" {
		t.Errorf("anonymous: subject = %q, want empty", rec.Body.String())
	}

	// A garbage token is ignored, not rejected.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("garbage token: status = %d, want 200", rec.Code)
	}

	// A valid token attaches the subject.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("user-123")))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Body.String() != "user-123" {
		t.Errorf("valid token: subject = %q, want user-123", rec.Body.String())
	}
}

func TestSubjectFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	subject, ok := SubjectFromContext(req.Context())
	if ok || subject != "" {
		t.Errorf("SubjectFromContext() = %q, %v; want empty, false", subject, ok)
	}
}
