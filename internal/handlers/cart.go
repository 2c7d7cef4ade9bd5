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

/* =========================
   REQUEST / RESPONSE DTOs
========================= */

type CartAddRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CartUpdateRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type cartItemResponse struct {
	ID         string          `json:"id"`
	Product    *models.Product `json:"product,omitempty"`
	ProductID  string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	TotalPrice float64         `json:"totalPrice"`
}

/*
GET /cart
- Entries in insertion order, product details and line totals attached
*/
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		items, err := loadCartItems(ctx, db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		products, err := loadProductsByID(ctx, db, cartProductIDs(items))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		out := make([]cartItemResponse, 0, len(items))
		for _, item := range items {
			resp := cartItemResponse{
				ID:        item.ID.Hex(),
				ProductID: item.ProductID.Hex(),
				Quantity:  item.Quantity,
			}
			if product, ok := products[item.ProductID]; ok {
				p := product
				resp.Product = &p
				resp.TotalPrice = product.Price * float64(item.Quantity)
			}
			out = append(out, resp)
		}

		c.JSON(http.StatusOK, out)
	}
}

/*
POST /cart
- No stock check here; availability is settled at checkout.
- Adding a product already in the cart bumps the existing entry.
*/
func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CartAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		item, err := upsertCartItem(ctx, db, userID, productID, req.Quantity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

/*
PUT /cart/:id
*/
func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req CartUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.CartItem
		err = db.Collection("carts").FindOneAndUpdate(
			ctx,
			bson.M{"_id": itemID, "userId": userID},
			bson.M{"$set": bson.M{"quantity": req.Quantity}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /cart/:id
*/
func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("carts").DeleteOne(ctx, bson.M{"_id": itemID, "userId": userID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart item removed"})
	}
}

// upsertCartItem bumps the quantity of an existing cart row or inserts a
// new one. The unique (userId, productId) index closes the upsert race:
// when two concurrent adds both try to insert, the loser hits a duplicate
// key error and retries once, landing on the row the winner created.
func upsertCartItem(ctx context.Context, db *mongo.Database, userID, productID primitive.ObjectID, quantity int) (models.CartItem, error) {
	var item models.CartItem
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = db.Collection("carts").FindOneAndUpdate(
			ctx,
			bson.M{"userId": userID, "productId": productID},
			bson.M{
				"$inc": bson.M{"quantity": quantity},
				"$setOnInsert": bson.M{
					"userId":    userID,
					"productId": productID,
					"createdAt": time.Now(),
				},
			},
			options.FindOneAndUpdate().
				SetUpsert(true).
				SetReturnDocument(options.After),
		).Decode(&item)
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	return item, err
}

/* =========================
   SHARED LOADERS
========================= */

func loadCartItems(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) ([]models.CartItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := db.Collection("carts").Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.CartItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func cartProductIDs(items []models.CartItem) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func loadProductsByID(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}
