// Package rentallistener subscribes to the external rental lifecycle
// channel and forwards each event into the simulator's rental intake
// queue. The simulator does not create or complete rentals on this path —
// the backend API still owns that — it only enters/exits "external
// rental" mode for the named scooter at the next tick boundary.
package rentallistener

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-fleet-sim/internal/bus"
	"github.com/ukydev/scooter-fleet-sim/internal/events"
)

// Channel is the pub/sub channel external rental lifecycle events arrive
// on, matching the original's rental_listener.py subscription.
const Channel = "rental:lifecycle"

// Simulator is the subset of *sim.Simulator the listener depends on.
type Simulator interface {
	EnqueueRentalEvent(e events.RentalEvent)
}

type payload struct {
	Type      string  `json:"type"`
	ScooterID *int    `json:"scooter_id"`
	RentalID  *string `json:"rental_id"`
	UserID    *int    `json:"user_id"`
	UserName  *string `json:"user_name"`
}

// Run subscribes to Channel and enqueues each well-formed event onto sim
// until ctx is canceled. Intended to run in its own goroutine for the
// lifetime of the process, mirroring rental_listener.py's daemon thread.
func Run(ctx context.Context, b bus.Bus, sim Simulator) error {
	messages, err := b.Subscribe(ctx, Channel)
	if err != nil {
		return err
	}

	log.WithField("channel", Channel).Info("rentallistener: started")

	for msg := range messages {
		var p payload
		if err := json.Unmarshal(msg, &p); err != nil {
			log.WithError(err).Warn("rentallistener: failed to decode rental event")
			continue
		}

		var eventType events.RentalEventType
		switch p.Type {
		case string(events.RentalStarted):
			eventType = events.RentalStarted
		case string(events.RentalEnded):
			eventType = events.RentalEnded
		default:
			log.WithField("type", p.Type).Warn("rentallistener: ignoring unknown event type")
			continue
		}

		if p.ScooterID == nil || p.RentalID == nil {
			log.WithField("payload", string(msg)).Warn("rentallistener: invalid payload (missing scooter_id/rental_id)")
			continue
		}

		log.WithFields(log.Fields{"type": p.Type, "scooter_id": *p.ScooterID, "rental_id": *p.RentalID}).
			Info("rentallistener: received rental lifecycle event (queued)")

		sim.EnqueueRentalEvent(events.RentalEvent{
			Type:      eventType,
			ScooterID: *p.ScooterID,
			RentalID:  *p.RentalID,
			UserID:    p.UserID,
			UserName:  p.UserName,
		})
	}

	log.WithField("channel", Channel).Info("rentallistener: stopped")
	return nil
}
