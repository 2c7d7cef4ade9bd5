package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"fashionstore/internal/models"
)

func cartItemDoc(id, userID, productID primitive.ObjectID, quantity int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "userId", Value: userID},
		{Key: "productId", Value: productID},
		{Key: "quantity", Value: quantity},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(time.Now())},
	}
}

func productDoc(id primitive.ObjectID, name string, price float64, quantity int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "price", Value: price},
		{Key: "categoryId", Value: primitive.NewObjectID()},
		{Key: "quantity", Value: quantity},
		{Key: "inStock", Value: quantity > 0},
	}
}

func TestCheckoutCart(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	userID := primitive.NewObjectID()
	deliveryCompanyID := primitive.NewObjectID()

	mt.Run("empty cart aborts", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "fashionstore.carts", mtest.FirstBatch),
		)

		db := mt.Client.Database("fashionstore")
		_, err := checkoutCart(context.Background(), db, userID, deliveryCompanyID)

		var cartErr emptyCartError
		if !errors.As(err, &cartErr) {
			t.Fatalf("expected emptyCartError, got %v", err)
		}
	})

	mt.Run("shortfall seen at read aborts before any write", func(mt *mtest.T) {
		productID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "fashionstore.carts", mtest.FirstBatch,
				cartItemDoc(primitive.NewObjectID(), userID, productID, 5)),
			mtest.CreateCursorResponse(0, "fashionstore.products", mtest.FirstBatch,
				productDoc(productID, "Denim Jacket", 120, 2)),
		)

		db := mt.Client.Database("fashionstore")
		orders, err := checkoutCart(context.Background(), db, userID, deliveryCompanyID)

		var stockErr insufficientStockError
		if !errors.As(err, &stockErr) {
			t.Fatalf("expected insufficientStockError, got %v", err)
		}
		if stockErr.Available != 2 || stockErr.Requested != 5 {
			t.Fatalf("expected available=2 requested=5, got %+v", stockErr)
		}
		if stockErr.ProductName != "Denim Jacket" {
			t.Fatalf("expected product name in error, got %+v", stockErr)
		}
		if orders != nil {
			t.Fatalf("expected no orders on abort, got %v", orders)
		}
	})

	mt.Run("conditional decrement losing the race aborts", func(mt *mtest.T) {
		// The read shows enough stock, but the guarded update matches
		// nothing: a concurrent checkout took the units in between.
		productID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "fashionstore.carts", mtest.FirstBatch,
				cartItemDoc(primitive.NewObjectID(), userID, productID, 3)),
			mtest.CreateCursorResponse(0, "fashionstore.products", mtest.FirstBatch,
				productDoc(productID, "Silk Scarf", 45, 3)),
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 0},
				bson.E{Key: "nModified", Value: 0},
			),
		)

		db := mt.Client.Database("fashionstore")
		_, err := checkoutCart(context.Background(), db, userID, deliveryCompanyID)

		var stockErr insufficientStockError
		if !errors.As(err, &stockErr) {
			t.Fatalf("expected insufficientStockError when the guarded update matches nothing, got %v", err)
		}
	})

	mt.Run("each line decrements stock, inserts an order and clears the cart entry", func(mt *mtest.T) {
		productID := primitive.NewObjectID()
		cartID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "fashionstore.carts", mtest.FirstBatch,
				cartItemDoc(cartID, userID, productID, 2)),
			mtest.CreateCursorResponse(0, "fashionstore.products", mtest.FirstBatch,
				productDoc(productID, "Wool Coat", 300, 4)),
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 1},
			),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		db := mt.Client.Database("fashionstore")
		orders, err := checkoutCart(context.Background(), db, userID, deliveryCompanyID)
		if err != nil {
			t.Fatalf("checkoutCart returned error: %v", err)
		}

		if len(orders) != 1 {
			t.Fatalf("expected 1 order, got %d", len(orders))
		}
		order := orders[0]
		if order.Status != models.OrderStatusPending {
			t.Fatalf("expected new order to be pending, got %s", order.Status)
		}
		if order.UserID != userID || order.ProductID != productID {
			t.Fatalf("order attributed to wrong user/product: %+v", order)
		}
		if order.Quantity != 2 {
			t.Fatalf("expected quantity 2, got %d", order.Quantity)
		}
		if order.DeliveryCompanyID == nil || *order.DeliveryCompanyID != deliveryCompanyID {
			t.Fatalf("expected delivery company %s on order", deliveryCompanyID.Hex())
		}

		// The decrement must be guarded and recompute inStock in the same
		// command, never read-modify-write.
		var updateCmd string
		for {
			ev := mt.GetStartedEvent()
			if ev == nil {
				break
			}
			if ev.CommandName == "update" {
				updateCmd = ev.Command.String()
			}
		}
		if updateCmd == "" {
			t.Fatal("expected an update command for the stock decrement")
		}
		if !strings.Contains(updateCmd, "$gte") {
			t.Fatalf("expected quantity guard in update filter, got %s", updateCmd)
		}
		if !strings.Contains(updateCmd, "$subtract") {
			t.Fatalf("expected in-place decrement, got %s", updateCmd)
		}
		if !strings.Contains(updateCmd, "inStock") {
			t.Fatalf("expected inStock recomputed with the decrement, got %s", updateCmd)
		}
	})
}
