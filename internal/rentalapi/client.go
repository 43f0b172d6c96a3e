// Package rentalapi is the simulator's HTTP client for the external rental
// backend: rental create/complete, bike status+position updates, and the
// customer list used to seed the user pool.
package rentalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Point is a lat/lng pair as exchanged with the backend.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RentalCoord is one breadcrumb point sent when completing a rental.
type RentalCoord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Spd float64 `json:"spd"`
}

// CreatedRental is the backend's response to a successful rental creation.
type CreatedRental struct {
	RentalID string `json:"rental_id"`
}

// User is a rentable customer, drawn into the simulator's user pool.
type User struct {
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name"`
}

// Client is the external rental API client. All calls are synchronous and
// SHOULD complete within a tick's budget; failures are logged, never
// retried, and never abort the calling tick.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New builds a Client against baseURL (e.g. "http://localhost:8081/api"),
// matching the teacher's authorizedPost bearer-token pattern.
func New(baseURL, authToken string) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("rentalapi: marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("rentalapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	return c.httpClient.Do(req)
}

// CreateRental starts a rental. Success requires HTTP 201 with a non-empty
// rental_id in the response; any other outcome is logged and nil is
// returned so the caller keeps its locally-generated token.
func (c *Client) CreateRental(ctx context.Context, customerID, bikeID int, start Point, startZone string) *CreatedRental {
	payload := map[string]any{
		"customer_id": customerID,
		"bike_id":     bikeID,
		"start_point": start,
		"start_zone":  startZone,
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/rentals", payload)
	if err != nil {
		log.WithError(err).WithField("bike_id", bikeID).Warn("rentalapi: create_rental request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		log.WithField("status", resp.StatusCode).WithField("bike_id", bikeID).
			Warn("rentalapi: create_rental returned non-201")
		return nil
	}

	var created CreatedRental
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.WithError(err).Warn("rentalapi: failed to decode create_rental response")
		return nil
	}
	if created.RentalID == "" {
		log.WithField("bike_id", bikeID).Warn("rentalapi: create_rental response missing rental_id")
		return nil
	}

	return &created
}

// CompleteRental ends a rental. An empty route is treated as failure
// without making a request, matching spec.md §4.3.
func (c *Client) CompleteRental(ctx context.Context, rentalID string, end Point, endZone string, route []RentalCoord) bool {
	if len(route) == 0 {
		log.WithField("rental_id", rentalID).Warn("rentalapi: no route coordinates to send, treating complete as failure")
		return false
	}

	payload := map[string]any{
		"end_point": end,
		"end_zone":  endZone,
		"route":     route,
	}

	resp, err := c.doJSON(ctx, http.MethodPut, "/rentals/"+rentalID, payload)
	if err != nil {
		log.WithError(err).WithField("rental_id", rentalID).Warn("rentalapi: complete_rental request failed")
		return false
	}
	defer resp.Body.Close()

	ok := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent
	if !ok {
		log.WithField("status", resp.StatusCode).WithField("rental_id", rentalID).
			Warn("rentalapi: complete_rental returned unexpected status")
	}
	return ok
}

// UpdateBikeStatusAndPosition writes the canonical status+position update,
// called DB-first before the simulator applies the same change locally.
func (c *Client) UpdateBikeStatusAndPosition(ctx context.Context, bikeID int, status string, lat, lng float64) bool {
	payload := map[string]any{
		"status": status,
		"lat":    lat,
		"lng":    lng,
	}

	resp, err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/bikes/%d", bikeID), payload)
	if err != nil {
		log.WithError(err).WithField("bike_id", bikeID).Warn("rentalapi: update_bike_status_and_position request failed")
		return false
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		log.WithField("status", resp.StatusCode).WithField("bike_id", bikeID).
			Warn("rentalapi: update_bike_status_and_position returned unexpected status")
	}
	return ok
}

// fallbackUsers matches the original's exact deterministic fallback:
// 20 synthetic customers named JohnDoe1..JohnDoe20.
func fallbackUsers() []User {
	users := make([]User, 0, 20)
	for uid := 1; uid <= 20; uid++ {
		users = append(users, User{UserID: uid, UserName: fmt.Sprintf("JohnDoe%d", uid)})
	}
	return users
}

type customerRecord struct {
	CustomerID int    `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// ZoneRecord is one raw zone record as served by GET /cities/{name}/zones.
type ZoneRecord struct {
	ZoneType       string   `json:"zone_type"`
	CoordinatesWKT string   `json:"coordinates_wkt"`
	SpeedLimitKmh  *float64 `json:"speed_limit,omitempty"`
}

// FetchZones fetches a city's zone records. A 404 or any transport/decode
// failure is logged and returns nil, leaving the caller to build an
// empty-but-valid City (in a City with no zones every position classifies
// as "outofbounds").
func (c *Client) FetchZones(ctx context.Context, cityName string) []ZoneRecord {
	resp, err := c.doJSON(ctx, http.MethodGet, "/cities/"+cityName+"/zones", nil)
	if err != nil {
		log.WithError(err).WithField("city", cityName).Warn("rentalapi: fetch_zones request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.WithField("city", cityName).Warn("rentalapi: fetch_zones city not found")
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).WithField("city", cityName).
			Warn("rentalapi: fetch_zones returned unexpected status")
		return nil
	}

	var records []ZoneRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		log.WithError(err).WithField("city", cityName).Warn("rentalapi: failed to decode zones response")
		return nil
	}
	return records
}

// FetchUsers fetches the customer list from the backend, falling back to
// 20 deterministic synthetic users on any failure.
func (c *Client) FetchUsers(ctx context.Context) []User {
	resp, err := c.doJSON(ctx, http.MethodGet, "/customers", nil)
	if err != nil {
		log.WithError(err).Warn("rentalapi: fetch_users failed, using fallback list")
		return fallbackUsers()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Warn("rentalapi: fetch_users returned non-200, using fallback list")
		return fallbackUsers()
	}

	var records []customerRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		log.WithError(err).Warn("rentalapi: failed to decode customers response, using fallback list")
		return fallbackUsers()
	}

	users := make([]User, 0, len(records))
	for _, r := range records {
		name := r.Name
		if name == "" {
			name = r.Email
		}
		users = append(users, User{UserID: r.CustomerID, UserName: name})
	}
	return users
}
