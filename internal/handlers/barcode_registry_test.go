package handlers

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"fashionstore/internal/models"
)

func TestClaimBarcode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("flips an unused code to used", func(mt *mtest.T) {
		barcodeID := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: barcodeID},
				{Key: "code", Value: "iSANS1000"},
				{Key: "status", Value: models.BarcodeStatusUsed},
			}},
		})

		db := mt.Client.Database("fashionstore")
		barcode, err := claimBarcode(context.Background(), db, "iSANS1000")
		if err != nil {
			t.Fatalf("claimBarcode returned error: %v", err)
		}
		if barcode.ID != barcodeID {
			t.Fatalf("expected barcode %s, got %s", barcodeID.Hex(), barcode.ID.Hex())
		}
		if barcode.Status != models.BarcodeStatusUsed {
			t.Fatalf("expected claimed barcode to be used, got %s", barcode.Status)
		}
	})

	mt.Run("code already held by another product", func(mt *mtest.T) {
		// The conditional status filter matched nothing: the code is
		// either unknown or already used.
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		db := mt.Client.Database("fashionstore")
		_, err := claimBarcode(context.Background(), db, "iSANS1001")

		var unavailableErr barcodeUnavailableError
		if !errors.As(err, &unavailableErr) {
			t.Fatalf("expected barcodeUnavailableError, got %v", err)
		}
		if unavailableErr.Code != "iSANS1001" {
			t.Fatalf("expected offending code in error, got %q", unavailableErr.Code)
		}
	})
}

func TestReleaseBarcode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("puts the code back into circulation", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		db := mt.Client.Database("fashionstore")
		if err := releaseBarcode(context.Background(), db, primitive.NewObjectID()); err != nil {
			t.Fatalf("releaseBarcode returned error: %v", err)
		}
	})
}
