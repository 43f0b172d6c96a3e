package scooterent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testThresholds() Thresholds {
	return Thresholds{
		MinBattery:          5,
		LowBatteryThreshold: 20,
		BatteryFull:         100,
		BatteryDrainIdle:    0.01,
		BatteryDrainActive:  0.025,
		ChargeRatePerMin:    3.0,
	}
}

func TestTick_ActiveDrainsBattery(t *testing.T) {
	s := New(1, 55.6, 12.99)
	s.Battery = 50
	s.Tick("active", 18.0, false, 5, testThresholds())

	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, 18.0, s.SpeedKmh)
	assert.InDelta(t, 49.975, s.Battery, 1e-9)
}

func TestTick_ChargingZoneTakesPriorityOverActivity(t *testing.T) {
	s := New(1, 55.6, 12.99)
	s.Battery = 50
	s.Tick("idle", 0, true, 5, testThresholds())

	assert.Equal(t, StatusCharging, s.Status)
}

func TestTick_ChargingSuppressedWhileActive(t *testing.T) {
	s := New(1, 55.6, 12.99)
	s.Battery = 50
	s.Tick("active", 10, true, 5, testThresholds())

	assert.Equal(t, StatusActive, s.Status, "activity=active beats in_charging_zone")
}

func TestTick_LowBatteryForcesNeedCharging(t *testing.T) {
	s := New(1, 55.6, 12.99)
	s.Battery = 15
	s.Tick("idle", 0, false, 5, testThresholds())

	assert.Equal(t, StatusNeedCharging, s.Status)
}

func TestTick_BatteryClampedToMin(t *testing.T) {
	s := New(1, 55.6, 12.99)
	s.Battery = 5.005
	s.Tick("active", 10, false, 5, testThresholds())
	assert.GreaterOrEqual(t, s.Battery, 5.0)
}

func TestTick_BatteryClampedToFullWhileCharging(t *testing.T) {
	s := New(1, 55.6, 12.99)
	s.Battery = 99.99
	s.Tick("idle", 0, true, 5, testThresholds())
	assert.LessOrEqual(t, s.Battery, 100.0)
}

func TestTick_DrainIsFlatPerTick_NotScaledByElapsed(t *testing.T) {
	s1 := New(1, 0, 0)
	s1.Battery = 50
	s1.Tick("idle", 0, false, 5, testThresholds())

	s2 := New(2, 0, 0)
	s2.Battery = 50
	s2.Tick("idle", 0, false, 500, testThresholds())

	assert.Equal(t, s1.Battery, s2.Battery, "idle/active drains must not scale with elapsed_time")
}

func TestEndTrip_PicksChargingOverIdle(t *testing.T) {
	s := New(1, 0, 0)
	s.Battery = 50
	s.SpeedKmh = 10
	s.EndTrip(true, 20)

	assert.Equal(t, 0.0, s.SpeedKmh)
	assert.Equal(t, StatusCharging, s.Status)
}

func TestEndTrip_LowBatteryWithoutCharging(t *testing.T) {
	s := New(1, 0, 0)
	s.Battery = 15
	s.EndTrip(false, 20)

	assert.Equal(t, StatusNeedCharging, s.Status)
}

func TestEndTrip_DefaultsToIdle(t *testing.T) {
	s := New(1, 0, 0)
	s.Battery = 80
	s.EndTrip(false, 20)

	assert.Equal(t, StatusIdle, s.Status)
}
