package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"notes-api/auth"

	"go.uber.org/zap"
)

// fakeVerifier resolves a fixed set of tokens.
type fakeVerifier struct {
	uids map[string]string
	errs map[string]error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (string, error) {
	if err, ok := f.errs[token]; ok {
		return "", err
	}
	if uid, ok := f.uids[token]; ok {
		return uid, nil
	}
	return "", auth.ErrInvalidToken
}

func testVerifier() *fakeVerifier {
	return &fakeVerifier{
		uids: map[string]string{"good-token": "U1"},
		errs: map[string]error{
			"expired-token": auth.ErrExpiredToken,
			"broken-token":  errors.New("verifier unreachable"),
		},
	}
}

func echoUserHandler(t *testing.T, wantUID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Errorf("uid not found in request context")
			http.Error(w, "uid missing", http.StatusInternalServerError)
			return
		}
		if uid != wantUID {
			t.Errorf("uid in context: got %v want %v", uid, wantUID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	mw := RequireAuth(testVerifier(), zap.NewNop())

	t.Run("Valid token", func(t *testing.T) {
		handler := mw(echoUserHandler(t, "U1"))

		req, _ := http.NewRequest("GET", "/notes", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
	})

	t.Run("Bearer prefix is optional", func(t *testing.T) {
		handler := mw(echoUserHandler(t, "U1"))

		req, _ := http.NewRequest("GET", "/notes", nil)
		req.Header.Set("Authorization", "good-token")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
	})

	t.Run("Missing Authorization header", func(t *testing.T) {
		handler := mw(echoUserHandler(t, ""))

		req, _ := http.NewRequest("GET", "/notes", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}

		var resp map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["error"] != "Authorization header missing" {
			t.Errorf("Unexpected error message: %v", resp["error"])
		}
		if int(resp["status_code"].(float64)) != http.StatusUnauthorized {
			t.Errorf("Unexpected status_code in envelope: %v", resp["status_code"])
		}
	})

	t.Run("Invalid token", func(t *testing.T) {
		handler := mw(echoUserHandler(t, ""))

		req, _ := http.NewRequest("GET", "/notes", nil)
		req.Header.Set("Authorization", "Bearer no-such-token")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}

		var resp map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["error"] != "Invalid authentication token" {
			t.Errorf("Unexpected error message: %v", resp["error"])
		}
	})

	t.Run("Expired token", func(t *testing.T) {
		handler := mw(echoUserHandler(t, ""))

		req, _ := http.NewRequest("GET", "/notes", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}

		var resp map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["error"] != "Authentication token has expired" {
			t.Errorf("Unexpected error message: %v", resp["error"])
		}
	})

	t.Run("Verifier failure is not echoed", func(t *testing.T) {
		handler := mw(echoUserHandler(t, ""))

		req, _ := http.NewRequest("GET", "/notes", nil)
		req.Header.Set("Authorization", "Bearer broken-token")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusUnauthorized {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
		}

		var resp map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["error"] != "Authentication failed" {
			t.Errorf("Internal cause leaked to caller: %v", resp["error"])
		}
	})
}
