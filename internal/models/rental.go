package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RentalCoord is a single breadcrumb point in a rental's logged route.
type RentalCoord struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
	Spd float64 `bson:"spd" json:"spd"`
}

// Rental is the backend's persisted record of a scooter rental, created by
// POST /rentals and closed out by PUT /rentals/{id}.
type Rental struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RentalID   string             `bson:"rental_id" json:"rental_id"`
	CustomerID int                `bson:"customer_id" json:"customer_id"`
	BikeID     int                `bson:"bike_id" json:"bike_id"`
	StartPoint Location           `bson:"start_point" json:"start_point"`
	StartZone  string             `bson:"start_zone" json:"start_zone"`
	EndPoint   *Location          `bson:"end_point,omitempty" json:"end_point,omitempty"`
	EndZone    string             `bson:"end_zone,omitempty" json:"end_zone,omitempty"`
	Route      []RentalCoord      `bson:"route,omitempty" json:"route,omitempty"`
	StartedAt  time.Time          `bson:"started_at" json:"started_at"`
	EndedAt    *time.Time         `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}

// Scooter is the backend's persisted record of a scooter's last known
// status and position, updated by PUT /bikes/{id}.
type Scooter struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BikeID   int                `bson:"bike_id" json:"bike_id"`
	Status   string             `bson:"status" json:"status"`
	Location Location           `bson:"location" json:"location"`
}
