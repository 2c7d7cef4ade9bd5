package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func respondWith(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondBusinessError(c, err)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return w, body
}

func TestRespondBusinessErrorInsufficientStock(t *testing.T) {
	productID := primitive.NewObjectID()
	w, body := respondWith(t, insufficientStockError{
		ProductID:   productID,
		ProductName: "Denim Jacket",
		Available:   2,
		Requested:   5,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "insufficient stock" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
	if body["productId"] != productID.Hex() {
		t.Fatalf("expected productId %s, got %v", productID.Hex(), body["productId"])
	}
	if body["available"].(float64) != 2 || body["requested"].(float64) != 5 {
		t.Fatalf("expected available=2 requested=5, got %v", body)
	}
}

func TestRespondBusinessErrorProductNotFound(t *testing.T) {
	w, body := respondWith(t, productNotFoundError{ProductID: primitive.NewObjectID()})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "product not found" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestRespondBusinessErrorBarcodeUnavailable(t *testing.T) {
	w, body := respondWith(t, barcodeUnavailableError{Code: "iSANS1001"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["code"] != "iSANS1001" {
		t.Fatalf("expected code iSANS1001, got %v", body["code"])
	}
}

func TestRespondBusinessErrorInvalidTransitionIsConflict(t *testing.T) {
	w, body := respondWith(t, invalidStatusTransitionError{From: "delivered", To: "pending"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if body["from"] != "delivered" || body["to"] != "pending" {
		t.Fatalf("expected from/to in body, got %v", body)
	}
}

func TestRespondBusinessErrorEmptyCart(t *testing.T) {
	w, body := respondWith(t, emptyCartError{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "cart is empty" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestRespondBusinessErrorUnknownIsStorageFailure(t *testing.T) {
	w, body := respondWith(t, errors.New("socket closed"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body["error"] != "db error" {
		t.Fatalf("expected generic db error, got %v", body["error"])
	}
}
