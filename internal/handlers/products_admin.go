package handlers

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fashionstore/internal/cache"
	"fashionstore/internal/models"
)

/* =======================
   REQUEST MODELS
======================= */

type ProductCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId" binding:"required"`
	Sizes       []string `json:"sizes"`
	Barcode     string   `json:"barcode"`
	Quantity    *int     `json:"quantity" binding:"required"`
	ImagePath   string   `json:"imagePath"`
}

type ProductUpdateRequest struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	Description *string   `json:"description"`
	CategoryID  *string   `json:"categoryId"`
	Sizes       *[]string `json:"sizes"`
	Barcode     *string   `json:"barcode"`
	Quantity    *int      `json:"quantity"`
	ImagePath   *string   `json:"imagePath"`
}

func resolveCategoryID(ctx context.Context, db *mongo.Database, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, err
	}
	count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if count == 0 {
		return primitive.NilObjectID, mongo.ErrNoDocuments
	}
	return id, nil
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{}

		if category := strings.TrimSpace(c.Query("categoryId")); category != "" {
			categoryID, err := primitive.ObjectIDFromHex(category)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
				return
			}
			filter["categoryId"] = categoryID
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		if inStock := strings.TrimSpace(c.Query("inStock")); inStock != "" {
			filter["inStock"] = strings.EqualFold(inStock, "true")
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		if *req.Quantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be zero or greater"})
			return
		}

		sizes, err := normalizeSizes(req.Sizes)
		if err != nil {
			respondBusinessError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		categoryID, err := resolveCategoryID(ctx, db, req.CategoryID)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
			return
		}

		now := time.Now()
		product := models.Product{
			Name:        name,
			Price:       req.Price,
			Description: strings.TrimSpace(req.Description),
			CategoryID:  categoryID,
			Sizes:       sizes,
			Quantity:    *req.Quantity,
			InStock:     *req.Quantity > 0,
			ImagePath:   strings.TrimSpace(req.ImagePath),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		code := strings.TrimSpace(req.Barcode)

		var productID primitive.ObjectID
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			if code != "" {
				barcode, err := claimBarcode(sessCtx, db, code)
				if err != nil {
					return nil, err
				}
				product.BarcodeID = &barcode.ID
			}

			res, err := db.Collection("products").InsertOne(sessCtx, product)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				productID = id
			}
			return nil, nil
		})
		if err != nil {
			respondBusinessError(c, err)
			return
		}

		product.ID = productID
		invalidateCatalogCache(ctx, store)

		log.Println("[PRODUCT] [INFO] created:", product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduct(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		updateSet := bson.M{}
		updateUnset := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
				return
			}
			updateSet["name"] = name
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
			updateSet["price"] = *req.Price
		}
		if req.Description != nil {
			updateSet["description"] = strings.TrimSpace(*req.Description)
		}
		if req.CategoryID != nil {
			categoryID, err := resolveCategoryID(ctx, db, *req.CategoryID)
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusBadRequest, gin.H{"error": "category not found"})
				return
			}
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
				return
			}
			updateSet["categoryId"] = categoryID
		}
		if req.Sizes != nil {
			sizes, err := normalizeSizes(*req.Sizes)
			if err != nil {
				respondBusinessError(c, err)
				return
			}
			updateSet["sizes"] = sizes
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be zero or greater"})
				return
			}
			updateSet["quantity"] = *req.Quantity
			updateSet["inStock"] = *req.Quantity > 0
		}
		if req.ImagePath != nil {
			path := strings.TrimSpace(*req.ImagePath)
			if path == "" {
				updateUnset["imagePath"] = ""
			} else {
				updateSet["imagePath"] = path
			}
		}

		var newBarcodeCode string
		releaseOnly := false
		if req.Barcode != nil {
			newBarcodeCode = strings.TrimSpace(*req.Barcode)
			releaseOnly = newBarcodeCode == ""
		}

		if len(updateSet) == 0 && len(updateUnset) == 0 && req.Barcode == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		updateSet["updatedAt"] = time.Now()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			// Barcode reassignment: claim the new code first, then release
			// the old one, all inside the same transaction.
			if newBarcodeCode != "" {
				barcode, err := claimBarcode(sessCtx, db, newBarcodeCode)
				if err != nil {
					return nil, err
				}
				if existing.BarcodeID != nil && *existing.BarcodeID != barcode.ID {
					if err := releaseBarcode(sessCtx, db, *existing.BarcodeID); err != nil {
						return nil, err
					}
				}
				updateSet["barcodeId"] = barcode.ID
			} else if releaseOnly && existing.BarcodeID != nil {
				if err := releaseBarcode(sessCtx, db, *existing.BarcodeID); err != nil {
					return nil, err
				}
				updateUnset["barcodeId"] = ""
			}

			update := bson.M{"$set": updateSet}
			if len(updateUnset) > 0 {
				update["$unset"] = updateUnset
			}

			res, err := db.Collection("products").UpdateOne(sessCtx, bson.M{"_id": id}, update)
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, productNotFoundError{ProductID: id}
			}
			return nil, nil
		})
		if err != nil {
			respondBusinessError(c, err)
			return
		}

		var updated models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		invalidateCatalogCache(ctx, store)
		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   STOCK RESET
======================= */

type ProductQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func UpdateProductQuantity(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req ProductQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if *req.Quantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be zero or greater"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{
				"quantity":  *req.Quantity,
				"inStock":   *req.Quantity > 0,
				"updatedAt": time.Now(),
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		invalidateCatalogCache(ctx, store)
		c.JSON(http.StatusOK, gin.H{"message": "product quantity updated"})
	}
}

/* =======================
   DELETE
======================= */

func DeleteProduct(db *mongo.Database, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var existing models.Product
			err := db.Collection("products").FindOne(sessCtx, bson.M{"_id": id}).Decode(&existing)
			if err == mongo.ErrNoDocuments {
				return nil, productNotFoundError{ProductID: id}
			}
			if err != nil {
				return nil, err
			}

			if existing.BarcodeID != nil {
				if err := releaseBarcode(sessCtx, db, *existing.BarcodeID); err != nil {
					return nil, err
				}
			}

			if _, err := db.Collection("products").DeleteOne(sessCtx, bson.M{"_id": id}); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		invalidateCatalogCache(ctx, store)
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
