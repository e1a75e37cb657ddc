package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jillianguerra/home-depot/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

func signToken(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Username: "pat",
		UserID:   userID,
		Role:     []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestValidateJWT(t *testing.T) {
	token := signToken(t, "u1", time.Minute)

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "pat" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ValidateJWT(""); err == nil {
		t.Errorf("empty token validated")
	}
	if _, err := ValidateJWT(signToken(t, "u1", -time.Minute)); err == nil {
		t.Errorf("expired token validated")
	}
}

func TestAuthenticate(t *testing.T) {
	var gotUserID string
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUserID, _ = r.Context().Value(globals.UserIDKey).(string)
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("GET", "/api/orders/cart", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "u1", time.Minute))
	w := httptest.NewRecorder()
	handler(w, r, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotUserID != "u1" {
		t.Errorf("user id in context = %q, want u1", gotUserID)
	}

	// Missing and malformed tokens are rejected before the handler runs.
	for _, header := range []string{"", "Basic abc", "Bearer not-a-token"} {
		r := httptest.NewRequest("GET", "/api/orders/cart", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler(w, r, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}
