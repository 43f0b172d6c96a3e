package db

import (
	"context"

	"github.com/ukydev/scooter-fleet-sim/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ZoneCollection defines the interface for zone data operations.
type ZoneCollection interface {
	InsertZone(ctx context.Context, zone models.Zone) error
	FindZones(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (ZoneCursor, error)
	DeleteAll(ctx context.Context) error
}

// ZoneCursor defines the interface for zone cursor operations.
type ZoneCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// CustomerCollection defines the interface for customer data operations.
type CustomerCollection interface {
	InsertCustomer(ctx context.Context, customer models.Customer) error
	FindCustomers(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CustomerCursor, error)
	DeleteAll(ctx context.Context) error
}

// CustomerCursor defines the interface for customer cursor operations.
type CustomerCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// RentalCollection defines the interface for rental data operations. Rentals
// are addressed by their rental_id string (minted by the POST /rentals
// handler before InsertRental and echoed back on PUT /rentals/{id}),
// never by the underlying Mongo ObjectID.
type RentalCollection interface {
	InsertRental(ctx context.Context, rental models.Rental) error
	FindRentalByRentalID(ctx context.Context, rentalID string) (*models.Rental, error)
	UpdateRentalByRentalID(ctx context.Context, rentalID string, rental models.Rental) error
	DeleteAll(ctx context.Context) error
}

// ScooterCollection defines the interface for persisted bike status+position
// records, addressed by bike_id rather than Mongo ObjectID.
type ScooterCollection interface {
	UpsertScooter(ctx context.Context, scooter models.Scooter) error
	FindScooterByBikeID(ctx context.Context, bikeID int) (*models.Scooter, error)
	FindScooters(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (ScooterCursor, error)
	DeleteAll(ctx context.Context) error
}

// ScooterCursor defines the interface for scooter cursor operations.
type ScooterCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
