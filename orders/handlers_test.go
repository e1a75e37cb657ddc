package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jillianguerra/home-depot/globals"

	"github.com/julienschmidt/httprouter"
)

func authedRequest(method, target, userID string, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r.WithContext(context.WithValue(r.Context(), globals.UserIDKey, userID))
}

func TestCartHandlersFlow(t *testing.T) {
	svc, _ := testService()
	h := NewHandler(svc, NewHub())

	// An authenticated user always gets a cart.
	w := httptest.NewRecorder()
	h.GetCart(w, authedRequest("GET", "/api/orders/cart", "u1", ""), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GetCart status = %d", w.Code)
	}

	var cart map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if cart["isPaid"] != false {
		t.Errorf("fresh cart isPaid = %v", cart["isPaid"])
	}

	// Add an item, then read the recomputed totals off the response.
	w = httptest.NewRecorder()
	h.AddToCart(w, authedRequest("POST", "/api/orders/cart/items/hammer", "u1", ""),
		httprouter.Params{{Key: "itemId", Value: "hammer"}})
	if w.Code != http.StatusOK {
		t.Fatalf("AddToCart status = %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if cart["orderTotal"] != 100.0 || cart["totalQty"] != 1.0 {
		t.Errorf("totals = %v / %v, want 100 / 1", cart["orderTotal"], cart["totalQty"])
	}

	w = httptest.NewRecorder()
	h.SetItemQty(w, authedRequest("PUT", "/api/orders/cart/qty", "u1",
		`{"itemId":"hammer","newQty":3}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("SetItemQty status = %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if cart["orderTotal"] != 300.0 {
		t.Errorf("orderTotal = %v, want 300", cart["orderTotal"])
	}

	w = httptest.NewRecorder()
	h.Checkout(w, authedRequest("POST", "/api/orders/cart/checkout", "u1", ""), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Checkout status = %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.History(w, authedRequest("GET", "/api/orders/history", "u1", ""), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("History status = %d", w.Code)
	}
	var hist struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Orders) != 1 {
		t.Errorf("history length = %d, want 1", len(hist.Orders))
	}
}

func TestHandlerErrorMapping(t *testing.T) {
	svc, _ := testService()
	h := NewHandler(svc, nil)

	// Unknown item -> 404.
	w := httptest.NewRecorder()
	h.AddToCart(w, authedRequest("POST", "/api/orders/cart/items/nope", "u1", ""),
		httprouter.Params{{Key: "itemId", Value: "nope"}})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown item status = %d, want 404", w.Code)
	}

	// Unknown variant -> 400.
	w = httptest.NewRecorder()
	h.AddToCart(w, authedRequest("POST", "/api/orders/cart/items/drill", "u1",
		`{"subItemId":"drill-blue"}`),
		httprouter.Params{{Key: "itemId", Value: "drill"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown variant status = %d, want 400", w.Code)
	}

	// Empty cart checkout -> 400.
	w = httptest.NewRecorder()
	h.Checkout(w, authedRequest("POST", "/api/orders/cart/checkout", "u1", ""), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty checkout status = %d, want 400", w.Code)
	}

	// No authenticated user -> 401.
	w = httptest.NewRecorder()
	h.GetCart(w, httptest.NewRequest("GET", "/api/orders/cart", nil), nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
}
