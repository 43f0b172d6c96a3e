// Package telemetry implements the simulator's publish-side contract over
// the pub/sub bus: per-tick state broadcast, per-rental breadcrumb
// logging, and completed-rental notifications.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-fleet-sim/internal/bus"
)

// StateChannel is the channel telemetry state is published on, and
// StateKeyPrefix is the per-scooter latest-known key prefix.
//
// The original publishes "scooter:delta" in one revision and
// "scooter:state:tick" in another. This picks scooter:state:tick, matching
// the Redis broadcaster actually committed into original_source, and is the
// spec's documented Open-Question resolution.
const (
	StateChannel        = "scooter:state:tick"
	CompletedChannel    = "rental:completed"
	CompletedListKey    = "completed_rentals"
	stateKeyPrefixFmt   = "scooter:%d"
	coordsKeyPrefixFmt  = "rental:%s:coords"
)

// StatePayload is the per-tick scooter state broadcast, field names
// matching the original's compact wire shape exactly.
type StatePayload struct {
	ID             int     `json:"id"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Battery        float64 `json:"bat"`
	Status         string  `json:"st"`
	SpeedKmh       float64 `json:"spd"`
	InChargingZone bool    `json:"inChargingZone"`
}

// Coord is one breadcrumb point in a rental's logged route.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Spd float64 `json:"spd"`
}

// CompletedRental is the summary published when a rental ends.
type CompletedRental struct {
	Type      string  `json:"type"`
	RentalID  string  `json:"rental_id"`
	ScooterID int     `json:"scooter_id"`
	Coords    []Coord `json:"coords"`
	UserID    *int    `json:"user_id"`
	UserName  *string `json:"user_name"`
	StartZone string  `json:"start_zone"`
	EndZone   string  `json:"end_zone"`
}

// Emitter wraps a bus.Bus with the simulator's telemetry contract.
// Transport errors are logged and swallowed: telemetry is best-effort
// observability, never a source of truth for the tick loop.
type Emitter struct {
	b      bus.Bus
	mirror Mirror
}

// Mirror is an optional secondary transport (e.g. MQTT) that receives a
// best-effort copy of every state broadcast. A nil Mirror disables it.
type Mirror interface {
	Publish(topic string, payload []byte)
}

// New builds an Emitter over the given bus, with an optional mirror.
func New(b bus.Bus, mirror Mirror) *Emitter {
	return &Emitter{b: b, mirror: mirror}
}

// BroadcastState sets the scooter's latest-known key and publishes it on
// the state channel, rounding lat/lng to 7 decimals and battery to 1, per
// spec.md §6.
func (e *Emitter) BroadcastState(ctx context.Context, p StatePayload) error {
	p.Lat = round(p.Lat, 7)
	p.Lng = round(p.Lng, 7)
	p.Battery = round(p.Battery, 1)

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("telemetry: marshal state payload: %w", err)
	}

	key := fmt.Sprintf(stateKeyPrefixFmt, p.ID)
	if err := e.b.Set(ctx, key, data); err != nil {
		log.WithError(err).WithField("scooter_id", p.ID).Warn("telemetry: failed to set latest state")
	}
	if err := e.b.Publish(ctx, StateChannel, data); err != nil {
		log.WithError(err).WithField("scooter_id", p.ID).Warn("telemetry: failed to publish state")
	}

	if e.mirror != nil {
		e.mirror.Publish(StateChannel, data)
	}

	return nil
}

// ClearCoords deletes the breadcrumb list for a rental, run when a rental
// starts (fresh route) or when external rental mode begins.
func (e *Emitter) ClearCoords(ctx context.Context, rentalID string) {
	key := fmt.Sprintf(coordsKeyPrefixFmt, rentalID)
	if err := e.b.Del(ctx, key); err != nil {
		log.WithError(err).WithField("rental_id", rentalID).Warn("telemetry: failed to clear coords")
	}
}

// LogCoord right-pushes one breadcrumb point onto the rental's list.
func (e *Emitter) LogCoord(ctx context.Context, rentalID string, lat, lng, speedKmh float64) {
	c := Coord{Lat: round(lat, 7), Lng: round(lng, 7), Spd: speedKmh}
	data, err := json.Marshal(c)
	if err != nil {
		log.WithError(err).Warn("telemetry: failed to marshal coord")
		return
	}
	key := fmt.Sprintf(coordsKeyPrefixFmt, rentalID)
	if err := e.b.RPush(ctx, key, data); err != nil {
		log.WithError(err).WithField("rental_id", rentalID).Warn("telemetry: failed to log coord")
	}
}

// LoadCoords reads back the full breadcrumb list for a rental, parsed.
func (e *Emitter) LoadCoords(ctx context.Context, rentalID string) []Coord {
	key := fmt.Sprintf(coordsKeyPrefixFmt, rentalID)
	raw, err := e.b.LRange(ctx, key)
	if err != nil {
		log.WithError(err).WithField("rental_id", rentalID).Warn("telemetry: failed to load coords")
		return nil
	}

	coords := make([]Coord, 0, len(raw))
	for _, item := range raw {
		var c Coord
		if err := json.Unmarshal(item, &c); err != nil {
			log.WithError(err).Warn("telemetry: dropping malformed coord entry")
			continue
		}
		coords = append(coords, c)
	}
	return coords
}

// PublishCompleted left-pushes a completed-rental summary and publishes it
// on the completion channel.
func (e *Emitter) PublishCompleted(ctx context.Context, c CompletedRental) {
	c.Type = "completed_rental"
	data, err := json.Marshal(c)
	if err != nil {
		log.WithError(err).Warn("telemetry: failed to marshal completed rental")
		return
	}
	if err := e.b.LPush(ctx, CompletedListKey, data); err != nil {
		log.WithError(err).WithField("rental_id", c.RentalID).Warn("telemetry: failed to push completed rental")
	}
	if err := e.b.Publish(ctx, CompletedChannel, data); err != nil {
		log.WithError(err).WithField("rental_id", c.RentalID).Warn("telemetry: failed to publish completed rental")
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
