package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type DeliveryCompany struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name          string              `bson:"name" json:"name"`
	ContactNumber string              `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	Address       string              `bson:"address" json:"address"`
	Branch        string              `bson:"branch" json:"branch"`
	State         string              `bson:"state" json:"state"`
	Website       string              `bson:"website,omitempty" json:"website,omitempty"`
	CreatedBy     *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
}
