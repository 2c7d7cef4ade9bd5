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

	"fashionstore/internal/cache"
	"fashionstore/internal/models"
)

type topProduct struct {
	ProductID primitive.ObjectID `bson:"_id" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	Revenue   float64            `bson:"revenue" json:"revenue"`
}

type categoryCount struct {
	CategoryID primitive.ObjectID `bson:"_id" json:"categoryId"`
	Name       string             `bson:"name" json:"name"`
	Products   int64              `bson:"products" json:"products"`
}

type storeMetrics struct {
	TotalProducts       int64           `json:"totalProducts"`
	ProductsInStock     int64           `json:"productsInStock"`
	ProductsOutOfStock  int64           `json:"productsOutOfStock"`
	TotalUsers          int64           `json:"totalUsers"`
	TotalOrders         int64           `json:"totalOrders"`
	UnusedBarcodes      int64           `json:"unusedBarcodes"`
	UsedBarcodes        int64           `json:"usedBarcodes"`
	InventoryValue      float64         `json:"inventoryValue"`
	TopProducts         []topProduct    `json:"topProducts"`
	ProductsPerCategory []categoryCount `json:"productsPerCategory"`
}

type orderStatistics struct {
	TotalOrders     int64            `json:"totalOrders"`
	ByStatus        map[string]int64 `json:"byStatus"`
	TotalRevenue    float64          `json:"totalRevenue"`
	DeliveredCount  int64            `json:"deliveredCount"`
	OrdersToday     int64            `json:"ordersToday"`
	OrdersLastWeek  int64            `json:"ordersLastWeek"`
	OrdersLastMonth int64            `json:"ordersLastMonth"`
	TopProducts     []topProduct     `json:"topProducts"`
}

/*
GET /admin/api/metrics
*/
func GetMetrics(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var cached storeMetrics
		if err := store.GetJSON(ctx, metricsCacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}

		metrics, err := collectStoreMetrics(ctx, db)
		if err != nil {
			log.Printf("[METRICS] [ERROR] collecting store metrics: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if err := store.SetJSON(ctx, metricsCacheKey, metrics, metricsCacheTTL); err != nil {
			log.Printf("[METRICS] [WARNING] caching store metrics: %v", err)
		}

		c.JSON(http.StatusOK, metrics)
	}
}

func collectStoreMetrics(ctx context.Context, db *mongo.Database) (*storeMetrics, error) {
	metrics := &storeMetrics{}

	var err error
	if metrics.TotalProducts, err = db.Collection("products").CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if metrics.ProductsInStock, err = db.Collection("products").CountDocuments(ctx, bson.M{"inStock": true}); err != nil {
		return nil, err
	}
	metrics.ProductsOutOfStock = metrics.TotalProducts - metrics.ProductsInStock
	if metrics.TotalUsers, err = db.Collection("users").CountDocuments(ctx, bson.M{"role": "user"}); err != nil {
		return nil, err
	}
	if metrics.TotalOrders, err = db.Collection("orders").CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if metrics.UnusedBarcodes, err = db.Collection("barcodes").CountDocuments(ctx, bson.M{"status": models.BarcodeStatusUnused}); err != nil {
		return nil, err
	}
	if metrics.UsedBarcodes, err = db.Collection("barcodes").CountDocuments(ctx, bson.M{"status": models.BarcodeStatusUsed}); err != nil {
		return nil, err
	}

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   nil,
			"value": bson.M{"$sum": bson.M{"$multiply": []interface{}{"$price", "$quantity"}}},
		}},
	}
	cursor, err := db.Collection("products").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var totals []struct {
		Value float64 `bson:"value"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, err
	}
	if len(totals) > 0 {
		metrics.InventoryValue = totals[0].Value
	}

	if metrics.TopProducts, err = topOrderedProducts(ctx, db, 3); err != nil {
		return nil, err
	}

	categoryPipeline := []bson.M{
		{"$group": bson.M{"_id": "$categoryId", "products": bson.M{"$sum": 1}}},
		{"$lookup": bson.M{
			"from":         "categories",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "category",
		}},
		{"$unwind": bson.M{"path": "$category", "preserveNullAndEmptyArrays": true}},
		{"$project": bson.M{"products": 1, "name": "$category.name"}},
		{"$sort": bson.M{"products": -1}},
	}
	catCursor, err := db.Collection("products").Aggregate(ctx, categoryPipeline)
	if err != nil {
		return nil, err
	}
	defer catCursor.Close(ctx)

	metrics.ProductsPerCategory = make([]categoryCount, 0)
	if err := catCursor.All(ctx, &metrics.ProductsPerCategory); err != nil {
		return nil, err
	}

	return metrics, nil
}

// topOrderedProducts ranks products by units ordered across all orders.
func topOrderedProducts(ctx context.Context, db *mongo.Database, limit int) ([]topProduct, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$productId", "quantity": bson.M{"$sum": "$quantity"}}},
		{"$sort": bson.M{"quantity": -1}},
		{"$limit": limit},
		{"$lookup": bson.M{
			"from":         "products",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "product",
		}},
		{"$unwind": bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}},
		{"$project": bson.M{
			"quantity": 1,
			"name":     "$product.name",
			"revenue":  bson.M{"$multiply": []interface{}{"$quantity", "$product.price"}},
		}},
	}

	cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]topProduct, 0, limit)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

/*
GET /admin/api/orders/statistics
*/
func GetOrderStatistics(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var cached orderStatistics
		if err := store.GetJSON(ctx, orderStatsCacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}

		stats, err := collectOrderStatistics(ctx, db)
		if err != nil {
			log.Printf("[METRICS] [ERROR] collecting order statistics: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if err := store.SetJSON(ctx, orderStatsCacheKey, stats, metricsCacheTTL); err != nil {
			log.Printf("[METRICS] [WARNING] caching order statistics: %v", err)
		}

		c.JSON(http.StatusOK, stats)
	}
}

func collectOrderStatistics(ctx context.Context, db *mongo.Database) (*orderStatistics, error) {
	stats := &orderStatistics{ByStatus: make(map[string]int64)}

	statusPipeline := []bson.M{
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}
	cursor, err := db.Collection("orders").Aggregate(ctx, statusPipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	for _, b := range buckets {
		stats.ByStatus[b.Status] = b.Count
		stats.TotalOrders += b.Count
	}
	stats.DeliveredCount = stats.ByStatus[models.OrderStatusDelivered]

	// Revenue counts only orders that reached the customer.
	revenuePipeline := []bson.M{
		{"$match": bson.M{"status": models.OrderStatusDelivered}},
		{"$lookup": bson.M{
			"from":         "products",
			"localField":   "productId",
			"foreignField": "_id",
			"as":           "product",
		}},
		{"$unwind": "$product"},
		{"$group": bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": bson.M{"$multiply": []interface{}{"$product.price", "$quantity"}}},
		}},
	}
	revCursor, err := db.Collection("orders").Aggregate(ctx, revenuePipeline)
	if err != nil {
		return nil, err
	}
	defer revCursor.Close(ctx)

	var revenue []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := revCursor.All(ctx, &revenue); err != nil {
		return nil, err
	}
	if len(revenue) > 0 {
		stats.TotalRevenue = revenue[0].Revenue
	}

	now := time.Now()
	windows := []struct {
		since time.Time
		dest  *int64
	}{
		{now.Truncate(24 * time.Hour), &stats.OrdersToday},
		{now.AddDate(0, 0, -7), &stats.OrdersLastWeek},
		{now.AddDate(0, -1, 0), &stats.OrdersLastMonth},
	}
	for _, w := range windows {
		count, err := db.Collection("orders").CountDocuments(ctx, bson.M{
			"createdAt": bson.M{"$gte": w.since},
		})
		if err != nil {
			return nil, err
		}
		*w.dest = count
	}

	if stats.TopProducts, err = topOrderedProducts(ctx, db, 10); err != nil {
		return nil, err
	}

	return stats, nil
}
