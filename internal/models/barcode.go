package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	BarcodeStatusUnused = "unused"
	BarcodeStatusUsed   = "used"
)

// Barcode tracks a printable code and whether a product currently holds it.
type Barcode struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code   string             `bson:"code" json:"code"`
	Status string             `bson:"status" json:"status"`
}
