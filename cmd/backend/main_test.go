package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ukydev/scooter-fleet-sim/internal/db"
	"github.com/ukydev/scooter-fleet-sim/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeZoneCursor/fakeZoneCollection implement db.ZoneCursor/db.ZoneCollection
// directly, mirroring the teacher's hand-rolled mock-collection idiom.

type fakeZoneCursor struct {
	zones []models.Zone
}

func (c *fakeZoneCursor) All(ctx context.Context, out interface{}) error {
	ptr, ok := out.(*[]models.Zone)
	if !ok {
		return errors.New("unexpected out type")
	}
	*ptr = c.zones
	return nil
}

func (c *fakeZoneCursor) Close(ctx context.Context) error { return nil }

type fakeZoneCollection struct {
	byCity    map[string][]models.Zone
	inserted  []models.Zone
	insertErr error
}

func (f *fakeZoneCollection) InsertZone(ctx context.Context, zone models.Zone) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, zone)
	return nil
}

func (f *fakeZoneCollection) FindZones(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.ZoneCursor, error) {
	m, _ := filter.(bson.M)
	city, _ := m["city"].(string)
	return &fakeZoneCursor{zones: f.byCity[city]}, nil
}

func (f *fakeZoneCollection) DeleteAll(ctx context.Context) error {
	f.byCity = map[string][]models.Zone{}
	return nil
}

func TestZoneHandler_UnknownCityReturns404(t *testing.T) {
	coll := &fakeZoneCollection{byCity: map[string][]models.Zone{}}
	h := &ZoneHandler{Collection: coll}

	req := httptest.NewRequest(http.MethodGet, "/api/cities/atlantis/zones", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req, "atlantis")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestZoneHandler_KnownCityReturnsZones(t *testing.T) {
	coll := &fakeZoneCollection{byCity: map[string][]models.Zone{
		"copenhagen": {{City: "copenhagen", ZoneType: "charging", CoordinatesWKT: "POLYGON((0 0,1 0,1 1,0 1,0 0))"}},
	}}
	h := &ZoneHandler{Collection: coll}

	req := httptest.NewRequest(http.MethodGet, "/api/cities/copenhagen/zones", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req, "copenhagen")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []models.Zone
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].ZoneType != "charging" {
		t.Fatalf("unexpected zones payload: %+v", got)
	}
}

func TestZoneHandler_PostSeedsZoneTaggedWithPathCity(t *testing.T) {
	coll := &fakeZoneCollection{byCity: map[string][]models.Zone{}}
	h := &ZoneHandler{Collection: coll}

	body, _ := json.Marshal(map[string]any{
		"zone_type":       "slow",
		"coordinates_wkt": "POLYGON((0 0,1 0,1 1,0 1,0 0))",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/cities/aarhus/zones", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req, "aarhus")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if len(coll.inserted) != 1 || coll.inserted[0].City != "aarhus" {
		t.Fatalf("expected a zone tagged with the path city, got %+v", coll.inserted)
	}
}

func TestZoneHandler_PostRejectsMissingFields(t *testing.T) {
	coll := &fakeZoneCollection{byCity: map[string][]models.Zone{}}
	h := &ZoneHandler{Collection: coll}

	req := httptest.NewRequest(http.MethodPost, "/api/cities/aarhus/zones", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req, "aarhus")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// fakeCustomerCursor/fakeCustomerCollection back CustomerHandler tests.

type fakeCustomerCursor struct {
	customers []models.Customer
}

func (c *fakeCustomerCursor) All(ctx context.Context, out interface{}) error {
	ptr, ok := out.(*[]models.Customer)
	if !ok {
		return errors.New("unexpected out type")
	}
	*ptr = c.customers
	return nil
}

func (c *fakeCustomerCursor) Close(ctx context.Context) error { return nil }

type fakeCustomerCollection struct {
	customers []models.Customer
	findErr   error
	inserted  []models.Customer
}

func (f *fakeCustomerCollection) InsertCustomer(ctx context.Context, customer models.Customer) error {
	f.inserted = append(f.inserted, customer)
	return nil
}

func (f *fakeCustomerCollection) FindCustomers(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.CustomerCursor, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return &fakeCustomerCursor{customers: f.customers}, nil
}

func (f *fakeCustomerCollection) DeleteAll(ctx context.Context) error {
	f.customers = nil
	return nil
}

func TestCustomerHandler_ReturnsStoredCustomers(t *testing.T) {
	coll := &fakeCustomerCollection{customers: []models.Customer{{CustomerID: 5, Name: "Ada Lovelace"}}}
	h := &CustomerHandler{Collection: coll}

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var got []models.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ada Lovelace" {
		t.Fatalf("unexpected customers payload: %+v", got)
	}
}

func TestCustomerHandler_FallsBackOnReadFailure(t *testing.T) {
	coll := &fakeCustomerCollection{findErr: errors.New("connection refused")}
	h := &CustomerHandler{Collection: coll}

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var got []models.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 20 || got[0].Name != "JohnDoe1" {
		t.Fatalf("expected 20-customer JohnDoe fallback, got %+v", got)
	}
}

func TestCustomerHandler_PostInsertsCustomer(t *testing.T) {
	coll := &fakeCustomerCollection{}
	h := &CustomerHandler{Collection: coll}

	body, _ := json.Marshal(models.Customer{CustomerID: 9, Name: "Bob"})
	req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if len(coll.inserted) != 1 || coll.inserted[0].CustomerID != 9 {
		t.Fatalf("expected customer to be inserted, got %+v", coll.inserted)
	}
}

// fakeRentalCollection backs RentalHandler and rentalCompletionHandler tests.

type fakeRentalCollection struct {
	byRentalID map[string]models.Rental
	inserted   []models.Rental
}

func (f *fakeRentalCollection) InsertRental(ctx context.Context, rental models.Rental) error {
	f.inserted = append(f.inserted, rental)
	if f.byRentalID == nil {
		f.byRentalID = map[string]models.Rental{}
	}
	f.byRentalID[rental.RentalID] = rental
	return nil
}

func (f *fakeRentalCollection) FindRentalByRentalID(ctx context.Context, rentalID string) (*models.Rental, error) {
	r, ok := f.byRentalID[rentalID]
	if !ok {
		return nil, errors.New("rental not found")
	}
	return &r, nil
}

func (f *fakeRentalCollection) UpdateRentalByRentalID(ctx context.Context, rentalID string, rental models.Rental) error {
	if _, ok := f.byRentalID[rentalID]; !ok {
		return errors.New("rental not found")
	}
	f.byRentalID[rentalID] = rental
	return nil
}

func (f *fakeRentalCollection) DeleteAll(ctx context.Context) error {
	f.byRentalID = map[string]models.Rental{}
	return nil
}

func TestRentalHandler_CreatesRentalWithServerAssignedID(t *testing.T) {
	coll := &fakeRentalCollection{}
	h := &RentalHandler{Collection: coll}

	body, _ := json.Marshal(map[string]any{
		"customer_id": 1,
		"bike_id":     42,
		"start_point": map[string]float64{"lat": 55.6, "lng": 12.5},
		"start_zone":  "free",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/rentals", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		RentalID string `json:"rental_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.RentalID) != 10 {
		t.Fatalf("expected a 10-char rental id, got %q", resp.RentalID)
	}
	if len(coll.inserted) != 1 || coll.inserted[0].BikeID != 42 {
		t.Fatalf("expected rental to be persisted, got %+v", coll.inserted)
	}
}

func TestRentalHandler_RejectsMissingBikeID(t *testing.T) {
	coll := &fakeRentalCollection{}
	h := &RentalHandler{Collection: coll}

	req := httptest.NewRequest(http.MethodPost, "/api/rentals", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRentalCompletionHandler_CompletesExistingRental(t *testing.T) {
	coll := &fakeRentalCollection{byRentalID: map[string]models.Rental{
		"abc1234567": {RentalID: "abc1234567", BikeID: 7},
	}}
	handler := rentalCompletionHandler(coll)

	body, _ := json.Marshal(map[string]any{
		"end_point": map[string]float64{"lat": 55.7, "lng": 12.6},
		"end_zone":  "free",
		"route":     []map[string]float64{{"lat": 55.6, "lng": 12.5, "spd": 12}},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/rentals/abc1234567", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	completed := coll.byRentalID["abc1234567"]
	if completed.EndedAt == nil {
		t.Fatal("expected EndedAt to be set")
	}
	if len(completed.Route) != 1 {
		t.Fatalf("expected route to be persisted, got %+v", completed.Route)
	}
}

func TestRentalCompletionHandler_EmptyRouteRejected(t *testing.T) {
	coll := &fakeRentalCollection{byRentalID: map[string]models.Rental{
		"abc1234567": {RentalID: "abc1234567", BikeID: 7},
	}}
	handler := rentalCompletionHandler(coll)

	body, _ := json.Marshal(map[string]any{"end_zone": "free"})
	req := httptest.NewRequest(http.MethodPut, "/api/rentals/abc1234567", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRentalCompletionHandler_UnknownRentalReturns404(t *testing.T) {
	coll := &fakeRentalCollection{}
	handler := rentalCompletionHandler(coll)

	body, _ := json.Marshal(map[string]any{
		"route": []map[string]float64{{"lat": 1, "lng": 2, "spd": 3}},
	})
	req := httptest.NewRequest(http.MethodPut, "/api/rentals/doesnotexist", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

// fakeScooterCollection backs bikeHandler tests.

type fakeScooterCollection struct {
	byBikeID map[int]models.Scooter
}

func (f *fakeScooterCollection) UpsertScooter(ctx context.Context, scooter models.Scooter) error {
	if f.byBikeID == nil {
		f.byBikeID = map[int]models.Scooter{}
	}
	f.byBikeID[scooter.BikeID] = scooter
	return nil
}

func (f *fakeScooterCollection) FindScooterByBikeID(ctx context.Context, bikeID int) (*models.Scooter, error) {
	s, ok := f.byBikeID[bikeID]
	if !ok {
		return nil, errors.New("not found")
	}
	return &s, nil
}

func (f *fakeScooterCollection) FindScooters(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.ScooterCursor, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeScooterCollection) DeleteAll(ctx context.Context) error {
	f.byBikeID = map[int]models.Scooter{}
	return nil
}

func TestBikeHandler_UpsertsStatusAndPosition(t *testing.T) {
	coll := &fakeScooterCollection{}
	handler := bikeHandler(coll)

	body, _ := json.Marshal(map[string]any{"status": "active", "lat": 55.6, "lng": 12.5})
	req := httptest.NewRequest(http.MethodPut, "/api/bikes/42", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	stored := coll.byBikeID[42]
	if stored.Status != "active" || stored.Location.Lat != 55.6 {
		t.Fatalf("unexpected stored scooter: %+v", stored)
	}
}

func TestBikeHandler_InvalidBikeIDRejected(t *testing.T) {
	coll := &fakeScooterCollection{}
	handler := bikeHandler(coll)

	req := httptest.NewRequest(http.MethodPut, "/api/bikes/not-a-number", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestZoneRouter_RejectsMalformedPath(t *testing.T) {
	h := &ZoneHandler{Collection: &fakeZoneCollection{byCity: map[string][]models.Zone{}}}
	router := zoneRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/cities/copenhagen", nil)
	w := httptest.NewRecorder()
	router(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
