package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fashionstore/internal/models"
)

// Codes are the brand prefix plus a plain sequential suffix,
// e.g. iSANS1000, iSANS1001, ...
const barcodePrefix = "iSANS"

func barcodeCode(n int) string {
	return fmt.Sprintf("%s%d", barcodePrefix, n)
}

func generateBarcodeCodes(start, count int) []string {
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		codes = append(codes, barcodeCode(start+i))
	}
	return codes
}

/* =========================
   REGISTRY PRIMITIVES
========================= */

// claimBarcode flips an unused barcode to used. The status filter makes the
// claim conditional: of two concurrent claims on the same code exactly one
// matches, the other sees ErrNoDocuments.
func claimBarcode(ctx context.Context, db *mongo.Database, code string) (models.Barcode, error) {
	var barcode models.Barcode
	err := db.Collection("barcodes").FindOneAndUpdate(
		ctx,
		bson.M{"code": code, "status": models.BarcodeStatusUnused},
		bson.M{"$set": bson.M{"status": models.BarcodeStatusUsed}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&barcode)
	if err == mongo.ErrNoDocuments {
		return models.Barcode{}, barcodeUnavailableError{Code: code}
	}
	if err != nil {
		return models.Barcode{}, err
	}
	return barcode, nil
}

// releaseBarcode puts a held barcode back into circulation.
func releaseBarcode(ctx context.Context, db *mongo.Database, id primitive.ObjectID) error {
	_, err := db.Collection("barcodes").UpdateByID(
		ctx,
		id,
		bson.M{"$set": bson.M{"status": models.BarcodeStatusUnused}},
	)
	return err
}

/* =========================
   ADMIN ENDPOINTS
========================= */

func GetBarcodes(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := strings.TrimSpace(c.Query("status"))
		filter := bson.M{}
		if status != "" {
			filter["status"] = status
		}

		cursor, err := db.Collection("barcodes").Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		barcodes := make([]models.Barcode, 0)
		if err := cursor.All(ctx, &barcodes); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, barcodes)
	}
}

type RegisterBarcodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func RegisterBarcode(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterBarcodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		code := strings.TrimSpace(req.Code)
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		barcode := models.Barcode{
			Code:   code,
			Status: models.BarcodeStatusUnused,
		}

		res, err := db.Collection("barcodes").InsertOne(ctx, barcode)
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "barcode already exists", "code": code})
			return
		}
		if err != nil {
			log.Println("[BARCODE] [ERROR] register insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		barcode.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, barcode)
	}
}

type GenerateBarcodesRequest struct {
	Start *int `json:"start"`
	Count *int `json:"count"`
}

/*
POST /admin/api/barcodes/generate
- Sequential batch, all-or-nothing: a single collision with an existing
  code aborts the whole batch.
*/
func GenerateBarcodes(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/barcodes/generate"
		defer handlePanic(c, route)

		var req GenerateBarcodesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		start := 1000
		if req.Start != nil {
			start = *req.Start
		}
		count := 50
		if req.Count != nil {
			count = *req.Count
		}

		if start < 0 || count <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start and count must be positive integers"})
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

		codes := generateBarcodeCodes(start, count)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			docs := make([]interface{}, 0, len(codes))
			for _, code := range codes {
				docs = append(docs, models.Barcode{
					Code:   code,
					Status: models.BarcodeStatusUnused,
				})
			}
			_, err := db.Collection("barcodes").InsertMany(sessCtx, docs)
			return nil, err
		})
		if mongo.IsDuplicateKeyError(err) {
			log.Printf("[BARCODE] [ERROR] generate collision, batch aborted: start=%d count=%d", start, count)
			c.JSON(http.StatusConflict, gin.H{"error": "barcode range collides with existing codes"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[BARCODE] [INFO] generated %d barcodes starting from %s", count, codes[0])
		c.JSON(http.StatusCreated, gin.H{
			"message": fmt.Sprintf("generated %d barcodes starting from %d", count, start),
			"first":   codes[0],
			"last":    codes[len(codes)-1],
		})
	}
}
