package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func postJSON(c *gin.Context, path, body string) {
	c.Request = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
}

func TestPlaceOrderRequiresAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	postJSON(c, "/orders", `{"deliveryCompanyId":"abc"}`)

	PlaceOrder(nil, nil)(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestPlaceOrderRequiresDeliveryCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userId", primitive.NewObjectID())
	postJSON(c, "/orders", `{}`)

	PlaceOrder(nil, nil)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "deliveryCompanyId") {
		t.Fatalf("expected deliveryCompanyId in details, got %s", w.Body.String())
	}
}

func TestAddToCartRejectsZeroQuantity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userId", primitive.NewObjectID())
	postJSON(c, "/cart", `{"productId":"`+primitive.NewObjectID().Hex()+`","quantity":0}`)

	AddToCart(nil)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAddToCartRejectsMalformedProductID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userId", primitive.NewObjectID())
	postJSON(c, "/cart", `{"productId":"not-an-id","quantity":2}`)

	AddToCart(nil)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
