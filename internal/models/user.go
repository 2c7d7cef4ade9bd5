package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a store account. Role is either "user" or "admin".
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email           string             `bson:"email" json:"email"`
	PasswordHash    string             `bson:"passwordHash" json:"-"`
	FirstName       string             `bson:"firstName" json:"firstName"`
	LastName        string             `bson:"lastName" json:"lastName"`
	Gender          string             `bson:"gender,omitempty" json:"gender,omitempty"`
	PhoneNumber     string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Location        string             `bson:"location,omitempty" json:"location,omitempty"`
	ShippingAddress string             `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	Country         string             `bson:"country,omitempty" json:"country,omitempty"`
	StreetAddress   string             `bson:"streetAddress,omitempty" json:"streetAddress,omitempty"`
	City            string             `bson:"city,omitempty" json:"city,omitempty"`
	State           string             `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode         string             `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Role            string             `bson:"role" json:"role"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
