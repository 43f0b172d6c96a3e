package zonemodel

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrCityNotFound is returned when the backend has no zones for a city
// (HTTP 404), distinct from a general transport/server error.
type ErrCityNotFound struct {
	City string
}

func (e *ErrCityNotFound) Error() string {
	return fmt.Sprintf("zonemodel: no zones found for city %q", e.City)
}

type zoneRecord struct {
	ZoneType       string   `json:"zone_type"`
	CoordinatesWKT string   `json:"coordinates_wkt"`
	SpeedLimit     *float64 `json:"speed_limit"`
}

// LoadFromAPI fetches a city's zones from the backend and builds a City,
// matching the original's City.from_api classmethod: 404 maps to
// ErrCityNotFound, any other non-200 response is a generic error.
func LoadFromAPI(client *http.Client, baseURL, cityName string) (*City, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	url := fmt.Sprintf("%s/cities/%s/zones", baseURL, cityName)
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("zonemodel: failed to reach backend for city %q zones: %w", cityName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ErrCityNotFound{City: cityName}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zonemodel: backend returned status %d for city %q zones", resp.StatusCode, cityName)
	}

	var records []zoneRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("zonemodel: failed to decode zones response: %w", err)
	}

	inputs := make([]ZoneInput, 0, len(records))
	for _, r := range records {
		inputs = append(inputs, ZoneInput{
			ZoneType:       r.ZoneType,
			CoordinatesWKT: r.CoordinatesWKT,
			SpeedLimitKmh:  r.SpeedLimit,
		})
	}

	log.WithFields(log.Fields{"city": cityName, "zone_count": len(inputs)}).Info("loaded zones for city")

	return FromZones(cityName, inputs), nil
}
