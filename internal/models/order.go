package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPackaged  = "packaged"
	OrderStatusSentOut   = "sent_out"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

// Order is immutable after creation except for Status and
// DeliveryCompanyID. Total price is derived, never stored.
type Order struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID  `bson:"userId" json:"userId"`
	ProductID         primitive.ObjectID  `bson:"productId" json:"productId"`
	Quantity          int                 `bson:"quantity" json:"quantity"`
	DeliveryCompanyID *primitive.ObjectID `bson:"deliveryCompanyId,omitempty" json:"deliveryCompanyId,omitempty"`
	Status            string              `bson:"status" json:"status"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}
