package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Zone represents a typed geofence polygon stored for a city, served to
// simulators via GET /cities/{name}/zones.
type Zone struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	City            string             `bson:"city" json:"city"`
	ZoneType        string             `bson:"zone_type" json:"zone_type"` // charging|parking|city|slow
	CoordinatesWKT  string             `bson:"coordinates_wkt" json:"coordinates_wkt"`
	SpeedLimitKmh   *float64           `bson:"speed_limit,omitempty" json:"speed_limit,omitempty"`
}
