// Command simulator runs the scooter fleet simulation core: it loads
// config, connects to the telemetry bus and the external rental backend,
// loads a city's zones, seeds a fleet of scooters onto hardcoded routes,
// and drives the tick loop.
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/scooter-fleet-sim/internal/adminlistener"
	"github.com/ukydev/scooter-fleet-sim/internal/bus"
	"github.com/ukydev/scooter-fleet-sim/internal/config"
	"github.com/ukydev/scooter-fleet-sim/internal/events"
	"github.com/ukydev/scooter-fleet-sim/internal/geo"
	"github.com/ukydev/scooter-fleet-sim/internal/rentalapi"
	"github.com/ukydev/scooter-fleet-sim/internal/rentallistener"
	"github.com/ukydev/scooter-fleet-sim/internal/scooterent"
	"github.com/ukydev/scooter-fleet-sim/internal/sim"
	"github.com/ukydev/scooter-fleet-sim/internal/telemetry"
	"github.com/ukydev/scooter-fleet-sim/internal/users"
	"github.com/ukydev/scooter-fleet-sim/internal/zonemodel"
)

// cityName selects which city's zones the fleet runs against. Route
// polyline sourcing is explicitly out of this core's scope, so the fleet
// below is a small hardcoded seed rather than a fetched or generated one.
const cityName = "copenhagen"

// defaultFleetSize is the number of scooters seeded when FLEET_SIZE is unset.
const defaultFleetSize = 20

func main() {
	cfg := config.Load()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("invalid LOG_LEVEL, defaulting to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.JSONFormatter{})

	redisBus, err := bus.NewRedisBus(bus.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.WithError(err).Fatal("simulator: failed to connect to redis bus")
	}
	defer redisBus.Close()

	var mirror telemetry.Mirror
	if cfg.MQTTMirrorEnabled && cfg.MQTTBrokerURL != "" {
		mirror = telemetry.NewMQTTMirror(cfg.MQTTBrokerURL, cfg.MQTTUsername, cfg.MQTTPassword, "fleet-sim-scooter")
	}
	emitter := telemetry.New(redisBus, mirror)

	api := rentalapi.New(cfg.BackendBaseURL, cfg.BackendToken)

	ctx := context.Background()
	city := loadCity(ctx, api, cityName)

	pool := users.New(seedUsers(api.FetchUsers(ctx)))

	thresholds := scooterent.Thresholds{
		MinBattery:          cfg.MinBattery,
		LowBatteryThreshold: cfg.LowBatteryThreshold,
		BatteryFull:         cfg.BatteryFull,
		BatteryDrainIdle:    cfg.BatteryDrainIdle,
		BatteryDrainActive:  cfg.BatteryDrainActive,
		ChargeRatePerMin:    cfg.ChargeRatePerMin,
	}

	simulator := sim.New(sim.Params{
		City:                city,
		Bus:                 emitter,
		API:                 api,
		Pool:                pool,
		Thresholds:          thresholds,
		UpdateInterval:      cfg.UpdateInterval,
		NominalMaxSpeedMPS:  cfg.NominalMaxSpeedMPS,
		LowBatteryThreshold: cfg.LowBatteryThreshold,
		AdminQueue:          &events.AdminQueue{},
		RentalQueue:         &events.RentalEventQueue{},
	})

	fleetSize := defaultFleetSize
	if v := os.Getenv("FLEET_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			fleetSize = n
		}
	}
	seedFleet(simulator, fleetSize)

	startListeners(ctx, redisBus, simulator)

	log.WithFields(log.Fields{
		"fleet_size":      fleetSize,
		"city":            cityName,
		"update_interval": cfg.UpdateInterval,
		"backend":         cfg.BackendBaseURL,
	}).Info("simulator: starting tick loop")

	ticker := time.NewTicker(cfg.UpdateInterval)
	defer ticker.Stop()
	for range ticker.C {
		simulator.Tick(ctx)
	}
}

// startListeners spawns the two pub/sub subscriber goroutines that host
// the consumed side of the external interface: admin status overrides and
// external rental lifecycle events. Both just enqueue onto sim; sim.Tick
// is the only goroutine that ever applies them, per the single-writer
// model. A subscribe failure is logged, not fatal, since the simulator can
// otherwise run fine without admin/external-rental support.
func startListeners(ctx context.Context, redisBus *bus.RedisBus, simulator *sim.Simulator) {
	go func() {
		if err := adminlistener.Run(ctx, redisBus, simulator); err != nil {
			log.WithError(err).Error("simulator: admin listener stopped")
		}
	}()
	go func() {
		if err := rentallistener.Run(ctx, redisBus, simulator); err != nil {
			log.WithError(err).Error("simulator: rental listener stopped")
		}
	}()
}

// loadCity fetches the named city's zones from the backend, falling back
// to an empty-but-valid City (every scooter classifies as out-of-bounds)
// on any failure so the simulator can still start and log the condition
// rather than crash-looping on a slow backend.
func loadCity(ctx context.Context, api *rentalapi.Client, name string) *zonemodel.City {
	records := api.FetchZones(ctx, name)
	inputs := make([]zonemodel.ZoneInput, len(records))
	for i, r := range records {
		inputs[i] = zonemodel.ZoneInput{
			ZoneType:       r.ZoneType,
			CoordinatesWKT: r.CoordinatesWKT,
			SpeedLimitKmh:  r.SpeedLimitKmh,
		}
	}
	if len(inputs) == 0 {
		log.WithField("city", name).Warn("simulator: no zones loaded, scooters will classify out-of-bounds")
	}
	return zonemodel.FromZones(name, inputs)
}

func seedUsers(fetched []rentalapi.User) []users.User {
	seeded := make([]users.User, len(fetched))
	for i, u := range fetched {
		seeded[i] = users.User{UserID: u.UserID, UserName: u.UserName}
	}
	return seeded
}

// seedFleet builds a small ring of scooters around a nominal starting
// point, each bound to a short round-trip polyline, matching the teacher's
// jitter-around-a-base-point seeding idiom generalized to the fixed-route
// model this domain requires.
func seedFleet(simulator *sim.Simulator, fleetSize int) {
	base := geo.Point{Lat: 55.6761, Lng: 12.5683} // Copenhagen city center

	for i := 0; i < fleetSize; i++ {
		start := jitter(base, 800)
		waypoint := jitter(start, 300)
		routeID := fmt.Sprintf("route-%d", i+1)
		route := sim.Route{start, waypoint}

		scooter := scooterent.New(i+1, start.Lat, start.Lng)
		simulator.AddScooter(scooter, routeID, route)
	}
}

// jitter nudges a point by up to meters in a random direction, reusing the
// teacher's latMetersPerDeg/lonMetersPerDeg approximation.
func jitter(base geo.Point, meters float64) geo.Point {
	const metersPerDegLat = 111320.0
	metersPerDegLng := metersPerDegLat * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / metersPerDegLat)
	dLng := (rand.Float64()*2 - 1) * (meters / metersPerDegLng)
	return geo.Point{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}
