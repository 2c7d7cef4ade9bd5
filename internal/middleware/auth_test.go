package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func runGuard(guard gin.HandlerFunc, authorization string) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}
	guard(c)
	return w, c
}

func TestUserAuthMissingToken(t *testing.T) {
	w, _ := runGuard(UserAuth(testSecret), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestUserAuthMalformedHeader(t *testing.T) {
	w, _ := runGuard(UserAuth(testSecret), "Token abc")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestUserAuthWrongSecret(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub": primitive.NewObjectID().Hex(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}, "other-secret")

	w, _ := runGuard(UserAuth(testSecret), "Bearer "+signed)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestUserAuthExpiredToken(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub": primitive.NewObjectID().Hex(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	w, _ := runGuard(UserAuth(testSecret), "Bearer "+signed)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestUserAuthInjectsUserID(t *testing.T) {
	userID := primitive.NewObjectID()
	signed := signToken(t, jwt.MapClaims{
		"sub":  userID.Hex(),
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w, c := runGuard(UserAuth(testSecret), "Bearer "+signed)
	if w.Code == http.StatusUnauthorized {
		t.Fatalf("expected token to be accepted, got %d", w.Code)
	}

	value, ok := c.Get("userId")
	if !ok {
		t.Fatal("expected userId in context")
	}
	if got := value.(primitive.ObjectID); got != userID {
		t.Fatalf("expected userId %s, got %s", userID.Hex(), got.Hex())
	}
}

func TestUserAuthRejectsMissingSub(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w, _ := runGuard(UserAuth(testSecret), "Bearer "+signed)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuthRejectsUserRole(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub":  primitive.NewObjectID().Hex(),
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w, _ := runGuard(AdminAuth(testSecret), "Bearer "+signed)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAdminAuthAcceptsAdminRole(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"sub":  primitive.NewObjectID().Hex(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w, _ := runGuard(AdminAuth(testSecret), "Bearer "+signed)
	if w.Code == http.StatusForbidden || w.Code == http.StatusUnauthorized {
		t.Fatalf("expected admin token to be accepted, got %d", w.Code)
	}
}

func TestAdminAuthInjectsUserID(t *testing.T) {
	adminID := primitive.NewObjectID()
	signed := signToken(t, jwt.MapClaims{
		"sub":  adminID.Hex(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w, c := runGuard(AdminAuth(testSecret), "Bearer "+signed)
	if w.Code == http.StatusForbidden || w.Code == http.StatusUnauthorized {
		t.Fatalf("expected admin token to be accepted, got %d", w.Code)
	}

	value, ok := c.Get("userId")
	if !ok {
		t.Fatal("expected userId in context so handlers can attribute writes")
	}
	if got := value.(primitive.ObjectID); got != adminID {
		t.Fatalf("expected userId %s, got %s", adminID.Hex(), got.Hex())
	}
}

func TestAuthGuardToleratesMissingSub(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w, c := runGuard(AdminAuth(testSecret), "Bearer "+signed)
	if w.Code == http.StatusForbidden || w.Code == http.StatusUnauthorized {
		t.Fatalf("expected token to be accepted, got %d", w.Code)
	}
	if _, ok := c.Get("userId"); ok {
		t.Fatal("expected no userId without a sub claim")
	}
}
