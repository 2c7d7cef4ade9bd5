package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fashionstore/internal/cache"
	"fashionstore/internal/models"
	"fashionstore/internal/notify"
)

/* =========================
   REQUEST / RESPONSE DTOs
========================= */

type PlaceOrderRequest struct {
	DeliveryCompanyID string `json:"deliveryCompanyId" binding:"required"`
}

type orderResponse struct {
	models.Order
	ProductName string  `json:"productName,omitempty"`
	TotalPrice  float64 `json:"totalPrice"`
}

/* =========================
   PLACE ORDER (checkout)
========================= */

/*
POST /orders
- The whole cart checks out in ONE transaction: every line either passes
  its conditional stock decrement or the entire checkout rolls back.
*/
func PlaceOrder(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		deliveryCompanyID, err := primitive.ObjectIDFromHex(req.DeliveryCompanyID)
		if err != nil {
			respondBusinessError(c, invalidDeliveryCompanyError{ID: req.DeliveryCompanyID})
			return
		}

		count, err := db.Collection("delivery_companies").CountDocuments(ctx, bson.M{"_id": deliveryCompanyID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count == 0 {
			respondBusinessError(c, invalidDeliveryCompanyError{ID: req.DeliveryCompanyID})
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var orders []models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var txErr error
			orders, txErr = checkoutCart(sessCtx, db, userID, deliveryCompanyID)
			return nil, txErr
		})
		if err != nil {
			respondBusinessError(c, err)
			return
		}

		invalidateCatalogCache(ctx, store)

		products, err := loadProductsByID(ctx, db, orderProductIDs(orders))
		if err != nil {
			// Orders are committed; respond with what we have.
			log.Println("[ORDER] [ERROR] product lookup after checkout failed:", err)
		}

		log.Printf("[ORDER] [INFO] %d orders created for user %s", len(orders), userID.Hex())
		c.JSON(http.StatusCreated, buildOrderResponses(orders, products))
	}
}

// checkoutCart runs inside a session transaction. Stock is taken with a
// conditional decrement: the quantity filter guarantees that of two
// concurrent checkouts racing for the last units, at most one matches.
func checkoutCart(ctx context.Context, db *mongo.Database, userID, deliveryCompanyID primitive.ObjectID) ([]models.Order, error) {
	items, err := loadCartItems(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, emptyCartError{}
	}

	now := time.Now()
	orders := make([]models.Order, 0, len(items))

	for _, item := range items {
		var product models.Product
		err := db.Collection("products").FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			return nil, productNotFoundError{ProductID: item.ProductID}
		}
		if err != nil {
			return nil, err
		}

		if product.Quantity < item.Quantity {
			return nil, insufficientStockError{
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   item.Quantity,
			}
		}

		filter := bson.M{
			"_id":      item.ProductID,
			"quantity": bson.M{"$gte": item.Quantity},
		}
		update := []bson.M{
			{"$set": bson.M{
				"quantity":  bson.M{"$subtract": []interface{}{"$quantity", item.Quantity}},
				"updatedAt": now,
			}},
			{"$set": bson.M{
				"inStock": bson.M{"$gt": []interface{}{"$quantity", 0}},
			}},
		}

		res, err := db.Collection("products").UpdateOne(ctx, filter, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, insufficientStockError{
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   item.Quantity,
			}
		}

		order := models.Order{
			UserID:            userID,
			ProductID:         item.ProductID,
			Quantity:          item.Quantity,
			DeliveryCompanyID: &deliveryCompanyID,
			Status:            models.OrderStatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		insertRes, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			return nil, err
		}
		if id, ok := insertRes.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		if _, err := db.Collection("carts").DeleteOne(ctx, bson.M{"_id": item.ID}); err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	return orders, nil
}

/* =========================
   HISTORY
========================= */

/*
GET /orders
- The caller's orders, newest first
*/
func GetOrderHistory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		products, err := loadProductsByID(ctx, db, orderProductIDs(orders))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, buildOrderResponses(orders, products))
	}
}

/*
GET /admin/api/orders
- Every order with user, product and delivery company joined in
*/
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		pipeline := mongo.Pipeline{
			{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
			{{Key: "$lookup", Value: bson.M{
				"from":         "users",
				"localField":   "userId",
				"foreignField": "_id",
				"as":           "user",
			}}},
			{{Key: "$lookup", Value: bson.M{
				"from":         "products",
				"localField":   "productId",
				"foreignField": "_id",
				"as":           "product",
			}}},
			{{Key: "$lookup", Value: bson.M{
				"from":         "delivery_companies",
				"localField":   "deliveryCompanyId",
				"foreignField": "_id",
				"as":           "deliveryCompany",
			}}},
			{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
			{{Key: "$unwind", Value: bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}}},
			{{Key: "$unwind", Value: bson.M{"path": "$deliveryCompany", "preserveNullAndEmptyArrays": true}}},
			{{Key: "$project", Value: bson.M{
				"quantity":  1,
				"status":    1,
				"createdAt": 1,
				"updatedAt": 1,
				"user": bson.M{
					"id":              "$user._id",
					"email":           "$user.email",
					"firstName":       "$user.firstName",
					"phoneNumber":     "$user.phoneNumber",
					"shippingAddress": "$user.shippingAddress",
					"city":            "$user.city",
					"state":           "$user.state",
					"zipCode":         "$user.zipCode",
					"country":         "$user.country",
				},
				"product": bson.M{
					"id":    "$product._id",
					"name":  "$product.name",
					"price": "$product.price",
				},
				"deliveryCompany": bson.M{
					"id":   "$deliveryCompany._id",
					"name": "$deliveryCompany.name",
				},
				"totalPrice": bson.M{
					"$multiply": []interface{}{"$quantity", "$product.price"},
				},
			}}},
		}

		cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		results := make([]bson.M, 0)
		if err := cursor.All(ctx, &results); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, results)
	}
}

/* =========================
   STATUS TRANSITIONS
========================= */

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

/*
PUT /admin/api/orders/:id/status
- Conditional update keyed on the current status, so a racing admin
  cannot replay a transition on an order that has already moved.
- The user is told about the change, fire-and-forget.
*/
func UpdateOrderStatus(db *mongo.Database, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req OrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !isValidOrderStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status", "status": req.Status})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if !canTransitionOrder(order.Status, req.Status) {
			respondBusinessError(c, invalidStatusTransitionError{From: order.Status, To: req.Status})
			return
		}

		var updated models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": orderID, "status": order.Status},
			bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			// Someone moved the order between our read and write.
			respondBusinessError(c, invalidStatusTransitionError{From: order.Status, To: req.Status})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		go notifyOrderStatusChange(db, notifier, updated)

		c.JSON(http.StatusOK, updated)
	}
}

func notifyOrderStatusChange(db *mongo.Database, notifier notify.Notifier, order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": order.UserID}).Decode(&user); err != nil {
		log.Println("[ORDER] [ERROR] status notification user lookup failed:", err)
		return
	}

	subject := "Order Status Updated"
	body := fmt.Sprintf("Your order status is now: %s.", order.Status)
	if err := notifier.Notify(ctx, user.Email, subject, body); err != nil {
		log.Println("[ORDER] [ERROR] status notification failed:", err)
	}
}

/* =========================
   DELETE
========================= */

func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

/* =========================
   RESPONSE HELPERS
========================= */

func orderProductIDs(orders []models.Order) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ProductID)
	}
	return ids
}

func buildOrderResponses(orders []models.Order, products map[primitive.ObjectID]models.Product) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp := orderResponse{Order: order}
		if product, ok := products[order.ProductID]; ok {
			resp.ProductName = product.Name
			resp.TotalPrice = product.Price * float64(order.Quantity)
		}
		out = append(out, resp)
	}
	return out
}
