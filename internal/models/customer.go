package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Customer represents a renter record served over GET /customers and
// referenced by rentals as customer_id.
type Customer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID int                `bson:"customer_id" json:"customer_id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
}
