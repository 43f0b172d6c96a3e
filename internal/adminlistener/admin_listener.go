// Package adminlistener subscribes to the admin status override channel
// and forwards each update into the simulator's admin intake queue, so the
// sole writer goroutine applies it at the next tick boundary.
package adminlistener

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-fleet-sim/internal/bus"
)

// Channel is the pub/sub channel admin-initiated status overrides arrive
// on, matching the original's admin_listener.py subscription.
const Channel = "admin:scooter_status_update"

// Simulator is the subset of *sim.Simulator the listener depends on.
type Simulator interface {
	EnqueueAdminUpdate(scooterID int, newStatus string)
}

type payload struct {
	ScooterID int    `json:"id"`
	Status    string `json:"status"`
}

// Run subscribes to Channel and enqueues each well-formed update onto sim
// until ctx is canceled. Intended to run in its own goroutine for the
// lifetime of the process, mirroring admin_listener.py's daemon thread.
func Run(ctx context.Context, b bus.Bus, sim Simulator) error {
	messages, err := b.Subscribe(ctx, Channel)
	if err != nil {
		return err
	}

	log.WithField("channel", Channel).Info("adminlistener: started")

	for msg := range messages {
		var p payload
		if err := json.Unmarshal(msg, &p); err != nil {
			log.WithError(err).Warn("adminlistener: failed to decode admin status update")
			continue
		}
		if p.ScooterID == 0 || p.Status == "" {
			log.WithField("payload", string(msg)).Warn("adminlistener: invalid payload (missing id/status)")
			continue
		}

		log.WithFields(log.Fields{"scooter_id": p.ScooterID, "status": p.Status}).Info("adminlistener: received admin status update (queued)")
		sim.EnqueueAdminUpdate(p.ScooterID, p.Status)
	}

	log.WithField("channel", Channel).Info("adminlistener: stopped")
	return nil
}
