package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fashionstore/internal/models"
)

/* ===== REQUEST TYPES ===== */

type DeliveryCompanyCreateRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address" binding:"required"`
	Branch        string `json:"branch" binding:"required"`
	State         string `json:"state" binding:"required"`
	Website       string `json:"website"`
}

type DeliveryCompanyUpdateRequest struct {
	Name          *string `json:"name"`
	ContactNumber *string `json:"contactNumber"`
	Address       *string `json:"address"`
	Branch        *string `json:"branch"`
	State         *string `json:"state"`
	Website       *string `json:"website"`
}

func deliveryCompanyUpdateSet(req DeliveryCompanyUpdateRequest) bson.M {
	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.ContactNumber != nil {
		set["contactNumber"] = *req.ContactNumber
	}
	if req.Address != nil {
		set["address"] = *req.Address
	}
	if req.Branch != nil {
		set["branch"] = *req.Branch
	}
	if req.State != nil {
		set["state"] = *req.State
	}
	if req.Website != nil {
		set["website"] = *req.Website
	}
	return set
}

/* ===== ADMIN HANDLERS ===== */

// GetDeliveryCompanies lists every registered delivery company.
func GetDeliveryCompanies(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{}
		if state := c.Query("state"); state != "" {
			filter["state"] = state
		}

		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := db.Collection("delivery_companies").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		companies := make([]models.DeliveryCompany, 0)
		if err := cursor.All(ctx, &companies); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalCompanies":    len(companies),
			"deliveryCompanies": companies,
		})
	}
}

func CreateDeliveryCompany(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeliveryCompanyCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		company := models.DeliveryCompany{
			Name:          req.Name,
			ContactNumber: req.ContactNumber,
			Address:       req.Address,
			Branch:        req.Branch,
			State:         req.State,
			Website:       req.Website,
		}
		if userID, ok := currentUserID(c); ok {
			company.CreatedBy = &userID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("delivery_companies").InsertOne(ctx, company)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		company.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, gin.H{
			"message":         "delivery company created",
			"deliveryCompany": company,
		})
	}
}

func UpdateDeliveryCompany(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req DeliveryCompanyUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := deliveryCompanyUpdateSet(req)
		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var updated models.DeliveryCompany
		err = db.Collection("delivery_companies").
			FindOneAndUpdate(ctx, bson.M{"_id": companyID}, bson.M{"$set": set}, opts).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "delivery company not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":         "delivery company updated",
			"deliveryCompany": updated,
		})
	}
}

/* ===== USER HANDLERS ===== */

/*
GET /user/delivery
- A user sees admin-provided companies, unattributed ones, and their own;
  never another user's.
*/
func GetUserDeliveryCompanies(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		adminIDs, err := loadAdminUserIDs(ctx, db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		filter := bson.M{"$or": []bson.M{
			{"createdBy": bson.M{"$exists": false}},
			{"createdBy": nil},
			{"createdBy": userID},
			{"createdBy": bson.M{"$in": adminIDs}},
		}}

		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := db.Collection("delivery_companies").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		companies := make([]models.DeliveryCompany, 0)
		if err := cursor.All(ctx, &companies); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalCompanies":    len(companies),
			"deliveryCompanies": companies,
		})
	}
}

/*
PUT /user/delivery/:id
- Ownership enforced in the filter: a company the caller did not create
  reads as not found.
*/
func UpdateOwnDeliveryCompany(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		companyID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req DeliveryCompanyUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := deliveryCompanyUpdateSet(req)
		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var updated models.DeliveryCompany
		err = db.Collection("delivery_companies").
			FindOneAndUpdate(ctx, bson.M{"_id": companyID, "createdBy": userID}, bson.M{"$set": set}, opts).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "delivery company not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":         "delivery company updated",
			"deliveryCompany": updated,
		})
	}
}

func loadAdminUserIDs(ctx context.Context, db *mongo.Database) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := db.Collection("users").Find(ctx, bson.M{"role": "admin"}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// DeleteDeliveryCompany refuses removal while undelivered orders still
// reference the company.
func DeleteDeliveryCompany(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		active, err := db.Collection("orders").CountDocuments(ctx, bson.M{
			"deliveryCompanyId": companyID,
			"status":            bson.M{"$in": []string{models.OrderStatusPending, models.OrderStatusPackaged, models.OrderStatusSentOut}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if active > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "delivery company has active orders"})
			return
		}

		res, err := db.Collection("delivery_companies").DeleteOne(ctx, bson.M{"_id": companyID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "delivery company not found"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
