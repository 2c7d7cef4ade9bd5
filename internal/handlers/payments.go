package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fashionstore/internal/models"
	"fashionstore/internal/payment"
)

type PaymentVerifyRequest struct {
	Reference string `json:"reference" binding:"required"`
}

/*
POST /payments/initialize
- The charge amount is always computed from the cart server-side; the
  client never sends one.
*/
func InitializePayment(db *mongo.Database, gateway payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		total, err := cartTotal(ctx, db, userID)
		if err != nil {
			respondBusinessError(c, err)
			return
		}

		result, err := gateway.Initialize(ctx, total, user.Email)
		if err != nil {
			log.Printf("[PAYMENT] [ERROR] initializing transaction for %s: %v", user.Email, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment initialization failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"amount":  total,
			"payment": result,
		})
	}
}

/*
POST /payments/verify
*/
func VerifyPayment(gateway payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		paid, err := gateway.Verify(ctx, req.Reference)
		if err != nil {
			log.Printf("[PAYMENT] [ERROR] verifying transaction %s: %v", req.Reference, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment verification failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"reference": req.Reference,
			"paid":      paid,
		})
	}
}

func cartTotal(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (float64, error) {
	items, err := loadCartItems(ctx, db, userID)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, emptyCartError{}
	}

	products, err := loadProductsByID(ctx, db, cartProductIDs(items))
	if err != nil {
		return 0, err
	}

	var total float64
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return 0, productNotFoundError{ProductID: item.ProductID}
		}
		total += product.Price * float64(item.Quantity)
	}
	return total, nil
}
