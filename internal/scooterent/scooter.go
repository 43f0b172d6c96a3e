// Package scooterent holds the physical scooter entity: position, battery,
// speed, and status, integrated once per tick. It is deliberately unaware
// of routes or rentals, mirroring the original Scooter class.
package scooterent

// Status is the scooter's single string-valued state.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusActive       Status = "active"
	StatusReduced      Status = "reduced"
	StatusCharging     Status = "charging"
	StatusChargingLow  Status = "chargingLow"
	StatusNeedCharging Status = "needCharging"
	StatusNeedService  Status = "needService"
	StatusDeactivated  Status = "deactivated"
	StatusOnService    Status = "onService"
	StatusAvailable    Status = "available"
)

// NonRentable is the set of statuses that forbid starting a new rental.
var NonRentable = map[Status]bool{
	StatusNeedService:  true,
	StatusDeactivated:  true,
	StatusOnService:    true,
	StatusNeedCharging: true,
	StatusChargingLow:  true,
	StatusReduced:      true,
}

// Thresholds bundles the battery constants a Scooter integrates against.
// Passed in rather than read from global config so the entity stays a pure
// function of its inputs, matching the original's decoupling from config
// beyond the handful of constants it actually needs.
type Thresholds struct {
	MinBattery          float64
	LowBatteryThreshold float64
	BatteryFull         float64
	BatteryDrainIdle    float64
	BatteryDrainActive  float64
	ChargeRatePerMin    float64
}

// Scooter is the physical scooter: position, battery, speed, status. It
// knows nothing of routes or rentals.
type Scooter struct {
	ID       int
	Lat      float64
	Lng      float64
	SpeedKmh float64
	Battery  float64
	Status   Status
}

// New creates a scooter at the given position with full battery and idle
// status, matching the original constructor's defaults.
func New(id int, lat, lng float64) *Scooter {
	return &Scooter{ID: id, Lat: lat, Lng: lng, Battery: 100, Status: StatusIdle}
}

// Tick advances the scooter's speed, derived status, and battery by one
// tick of elapsedTime seconds, given this tick's resolved activity and
// charging-zone membership.
//
// Status precedence: charging zone (and not actively rented) beats low
// battery, which beats the raw activity label.
func (s *Scooter) Tick(activity string, speedKmh float64, inChargingZone bool, elapsedTime float64, th Thresholds) {
	s.SpeedKmh = speedKmh

	switch {
	case inChargingZone && activity != string(StatusActive):
		s.Status = StatusCharging
	case s.Battery < th.LowBatteryThreshold:
		s.Status = StatusNeedCharging
	default:
		s.Status = Status(activity)
	}

	s.updateBattery(elapsedTime, th)
}

// updateBattery integrates battery level for one tick, per spec.md's
// explicit instruction: drains are flat per-tick, not scaled by
// elapsedTime (charge rate is the one quantity that IS scaled, since it is
// expressed as a per-minute rate).
func (s *Scooter) updateBattery(elapsedTime float64, th Thresholds) {
	switch s.Status {
	case StatusCharging:
		chargePerSec := th.ChargeRatePerMin / 60
		s.Battery = min(th.BatteryFull, s.Battery+chargePerSec*elapsedTime)
	case StatusIdle, StatusNeedCharging:
		s.Battery = max(th.MinBattery, s.Battery-th.BatteryDrainIdle)
	case StatusActive:
		s.Battery = max(th.MinBattery, s.Battery-th.BatteryDrainActive)
	}
}

// EndTrip resets the scooter at a rental's end: speed drops to zero and
// status resolves to charging (if in a charging zone), needCharging (if
// battery is low), or idle.
func (s *Scooter) EndTrip(inChargingZone bool, lowBatteryThreshold float64) {
	s.SpeedKmh = 0

	switch {
	case inChargingZone:
		s.Status = StatusCharging
	case s.Battery < lowBatteryThreshold:
		s.Status = StatusNeedCharging
	default:
		s.Status = StatusIdle
	}
}
