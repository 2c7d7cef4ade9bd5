package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a sellable item. InStock is derived from Quantity on every
// write path and must never be set independently.
type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Price       float64             `bson:"price" json:"price"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	CategoryID  primitive.ObjectID  `bson:"categoryId" json:"categoryId"`
	Sizes       []string            `bson:"sizes" json:"sizes"`
	BarcodeID   *primitive.ObjectID `bson:"barcodeId,omitempty" json:"barcodeId,omitempty"`
	Quantity    int                 `bson:"quantity" json:"quantity"`
	InStock     bool                `bson:"inStock" json:"inStock"`
	ImagePath   string              `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
