package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestGetUserDeliveryCompaniesRequiresAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/user/delivery", nil)

	GetUserDeliveryCompanies(nil)(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetUserDeliveryCompaniesScopesTheListing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filter excludes other users' companies", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		adminID := primitive.NewObjectID()
		companyID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "fashionstore.users", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: adminID}}),
			mtest.CreateCursorResponse(0, "fashionstore.delivery_companies", mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: companyID},
					{Key: "name", Value: "Swift Couriers"},
					{Key: "address", Value: "12 Marina Rd"},
					{Key: "branch", Value: "Lagos Island"},
					{Key: "state", Value: "Lagos"},
					{Key: "createdBy", Value: adminID},
				}),
		)

		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("userId", userID)
		c.Request = httptest.NewRequest(http.MethodGet, "/user/delivery", nil)

		db := mt.Client.Database("fashionstore")
		GetUserDeliveryCompanies(db)(c)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "Swift Couriers") {
			t.Fatalf("expected admin-created company in listing, got %s", w.Body.String())
		}

		// The companies query must scope by createdBy, not list everything.
		var companiesFind string
		for {
			ev := mt.GetStartedEvent()
			if ev == nil {
				break
			}
			if ev.CommandName == "find" {
				companiesFind = ev.Command.String()
			}
		}
		if !strings.Contains(companiesFind, "createdBy") || !strings.Contains(companiesFind, "$or") {
			t.Fatalf("expected createdBy scoping in find filter, got %s", companiesFind)
		}
	})
}

func TestUpdateOwnDeliveryCompanyNotOwnerReadsAsNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ownership filter", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("userId", primitive.NewObjectID())
		c.Params = gin.Params{{Key: "id", Value: primitive.NewObjectID().Hex()}}
		postJSON(c, "/user/delivery", `{"name":"Renamed"}`)
		c.Request.Method = http.MethodPut

		db := mt.Client.Database("fashionstore")
		UpdateOwnDeliveryCompany(db)(c)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for a company the caller does not own, got %d", w.Code)
		}
	})
}

func TestUpdateOwnDeliveryCompanyRejectsEmptyUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("userId", primitive.NewObjectID())
	c.Params = gin.Params{{Key: "id", Value: primitive.NewObjectID().Hex()}}
	postJSON(c, "/user/delivery", `{}`)
	c.Request.Method = http.MethodPut

	UpdateOwnDeliveryCompany(nil)(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
