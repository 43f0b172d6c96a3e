package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-fleet-sim/internal/auth"
	"github.com/ukydev/scooter-fleet-sim/internal/db"
	"github.com/ukydev/scooter-fleet-sim/internal/handlers"
	"github.com/ukydev/scooter-fleet-sim/internal/middleware"
	"github.com/ukydev/scooter-fleet-sim/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// corsMiddleware adds CORS headers to allow frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const rentalIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// newRentalID mints a server-assigned rental id, the same token shape the
// simulator falls back to locally when create_rental doesn't return one.
func newRentalID() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "srv" + strconv.FormatInt(time.Now().UnixNano()%1e7, 10)
	}
	id := make([]byte, 10)
	for i, v := range buf {
		id[i] = rentalIDAlphabet[int(v)%len(rentalIDAlphabet)]
	}
	return string(id)
}

// fallbackCustomers matches the simulator client's own JohnDoe1..JohnDoe20
// fallback, so a client hitting a cold/empty backend still gets usable data.
func fallbackCustomers() []models.Customer {
	out := make([]models.Customer, 0, 20)
	for uid := 1; uid <= 20; uid++ {
		out = append(out, models.Customer{CustomerID: uid, Name: "JohnDoe" + strconv.Itoa(uid)})
	}
	return out
}

// CustomerHandler serves GET /api/customers and seeds new customer records.
type CustomerHandler struct {
	Collection db.CustomerCollection
}

func (h *CustomerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		cursor, err := h.Collection.FindCustomers(ctx, bson.M{})
		var results []models.Customer
		if err == nil {
			err = cursor.All(ctx, &results)
		}
		if err != nil || len(results) == 0 {
			if err != nil {
				log.WithError(err).Warn("backend: failed to read customers, returning fallback list")
			}
			results = fallbackCustomers()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		var customer models.Customer
		if err := json.Unmarshal(body, &customer); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if customer.CustomerID == 0 {
			http.Error(w, "customer_id is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if err := h.Collection.InsertCustomer(ctx, customer); err != nil {
			log.WithError(err).Error("backend: failed to insert customer")
			http.Error(w, "failed to create customer", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"message": "customer created"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ZoneHandler serves GET /api/cities/{name}/zones and seeds new zone
// polygons for a city. {name} is extracted by zoneRouter before dispatch.
type ZoneHandler struct {
	Collection db.ZoneCollection
}

func (h *ZoneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request, city string) {
	switch r.Method {
	case http.MethodGet:
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		cursor, err := h.Collection.FindZones(ctx, bson.M{"city": city})
		if err != nil {
			log.WithError(err).WithField("city", city).Error("backend: failed to query zones")
			http.Error(w, "failed to query zones", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(ctx)

		var results []models.Zone
		if err := cursor.All(ctx, &results); err != nil {
			http.Error(w, "failed to decode zones", http.StatusInternalServerError)
			return
		}
		if len(results) == 0 {
			http.Error(w, "city not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		var zone models.Zone
		if err := json.Unmarshal(body, &zone); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if zone.ZoneType == "" || zone.CoordinatesWKT == "" {
			http.Error(w, "zone_type and coordinates_wkt are required", http.StatusBadRequest)
			return
		}
		zone.City = city

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if err := h.Collection.InsertZone(ctx, zone); err != nil {
			log.WithError(err).Error("backend: failed to insert zone")
			http.Error(w, "failed to create zone", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"message": "zone created"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// zoneRouter extracts {name} from /api/cities/{name}/zones and dispatches.
func zoneRouter(handler *ZoneHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/cities/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "zones" {
			http.Error(w, "invalid path, expected /api/cities/{name}/zones", http.StatusBadRequest)
			return
		}
		handler.ServeHTTP(w, r, parts[0])
	}
}

// rentalInput is the wire shape of POST /api/rentals and the end-of-trip
// fields of PUT /api/rentals/{id}, matching original_source/api.py's
// create_rental/complete_rental payloads.
type rentalInput struct {
	CustomerID int                  `json:"customer_id"`
	BikeID     int                  `json:"bike_id"`
	StartPoint models.Location      `json:"start_point"`
	StartZone  string               `json:"start_zone"`
	EndPoint   *models.Location     `json:"end_point"`
	EndZone    string               `json:"end_zone"`
	Route      []models.RentalCoord `json:"route"`
}

// RentalHandler serves POST /api/rentals (collection); the individual
// PUT /api/rentals/{id} completion is rentalCompletionHandler, mirroring the
// teacher's VehicleCollectionHandler/vehicleHandler split generalized to rentals.
type RentalHandler struct {
	Collection db.RentalCollection
}

func (h *RentalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	var in rentalInput
	if err := json.Unmarshal(body, &in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if in.BikeID == 0 {
		http.Error(w, "bike_id is required", http.StatusBadRequest)
		return
	}

	rental := models.Rental{
		RentalID:   newRentalID(),
		CustomerID: in.CustomerID,
		BikeID:     in.BikeID,
		StartPoint: in.StartPoint,
		StartZone:  in.StartZone,
		StartedAt:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := h.Collection.InsertRental(ctx, rental); err != nil {
		log.WithError(err).Error("backend: failed to insert rental")
		http.Error(w, "failed to create rental", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{"rental_id": rental.RentalID, "bike_id": rental.BikeID}).Info("backend: rental created")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"rental_id": rental.RentalID})
}

// rentalCompletionHandler handles PUT /api/rentals/{id}.
func rentalCompletionHandler(collection db.RentalCollection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		rentalID := strings.TrimPrefix(r.URL.Path, "/api/rentals/")
		if rentalID == "" {
			http.Error(w, "rental id is required", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		var in rentalInput
		if err := json.Unmarshal(body, &in); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if len(in.Route) == 0 {
			http.Error(w, "route is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		existing, err := collection.FindRentalByRentalID(ctx, rentalID)
		if err != nil {
			http.Error(w, "rental not found", http.StatusNotFound)
			return
		}

		now := time.Now()
		existing.EndPoint = in.EndPoint
		existing.EndZone = in.EndZone
		existing.Route = in.Route
		existing.EndedAt = &now

		if err := collection.UpdateRentalByRentalID(ctx, rentalID, *existing); err != nil {
			log.WithError(err).WithField("rental_id", rentalID).Error("backend: failed to complete rental")
			http.Error(w, "failed to complete rental", http.StatusInternalServerError)
			return
		}

		log.WithField("rental_id", rentalID).Info("backend: rental completed")
		w.WriteHeader(http.StatusNoContent)
	}
}

// bikeInput is the wire shape of PUT /api/bikes/{id}.
type bikeInput struct {
	Status string  `json:"status"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// bikeHandler handles PUT /api/bikes/{id}, the canonical status+position
// write the simulator performs before applying the same change locally.
func bikeHandler(collection db.ScooterCollection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		idStr := strings.TrimPrefix(r.URL.Path, "/api/bikes/")
		bikeID, err := strconv.Atoi(idStr)
		if err != nil {
			http.Error(w, "invalid bike id", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		var in bikeInput
		if err := json.Unmarshal(body, &in); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		scooter := models.Scooter{
			BikeID:   bikeID,
			Status:   in.Status,
			Location: models.Location{Lat: in.Lat, Lon: in.Lng},
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if err := collection.UpsertScooter(ctx, scooter); err != nil {
			log.WithError(err).WithField("bike_id", bikeID).Error("backend: failed to upsert bike")
			http.Error(w, "failed to update bike", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// main is the entry point for the reference rental backend.
func main() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("no .env file found (this is fine in production)")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	log.Info("connected to MongoDB successfully")

	mongoDBName := os.Getenv("MONGO_DB")
	if mongoDBName == "" {
		mongoDBName = "fleet"
	}
	database := client.Database(mongoDBName)

	customerCollection := &db.MongoCollection{Collection: database.Collection("customers")}
	zoneCollection := &db.MongoCollection{Collection: database.Collection("zones")}
	rentalCollection := &db.MongoCollection{Collection: database.Collection("rentals")}
	bikeCollection := &db.MongoCollection{Collection: database.Collection("bikes")}
	userCollection := &db.MongoUserCollection{Collection: database.Collection("users")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize auth service")
	}
	authHandler := handlers.NewAuthHandler(authService, userCollection)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	customerHandler := &CustomerHandler{Collection: customerCollection}
	zoneHandler := &ZoneHandler{Collection: zoneCollection}
	rentalHandler := &RentalHandler{Collection: rentalCollection}

	// Operator auth, unauthenticated by definition.
	http.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		corsMiddleware(http.HandlerFunc(authHandler.Login)).ServeHTTP(w, r)
	})
	http.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		corsMiddleware(http.HandlerFunc(authHandler.Register)).ServeHTTP(w, r)
	})
	http.HandleFunc("/api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		corsMiddleware(authMiddleware.Authenticate(http.HandlerFunc(authHandler.GetProfile))).ServeHTTP(w, r)
	})
	http.HandleFunc("/api/auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		corsMiddleware(authMiddleware.Authenticate(http.HandlerFunc(authHandler.ChangePassword))).ServeHTTP(w, r)
	})

	// Fleet-facing reads are left unauthenticated (matching spec.md §6: the
	// simulator's own bearer token is optional and this reference backend
	// doesn't enforce it). Seeding writes (POST customers/zones) are
	// operator actions, not something internal/rentalapi.Client ever does,
	// so they're gated behind login + permission like any other operator
	// route.
	http.HandleFunc("/api/customers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			corsMiddleware(authMiddleware.Authenticate(authMiddleware.RequirePermission("manage_customers")(customerHandler))).ServeHTTP(w, r)
			return
		}
		corsMiddleware(customerHandler).ServeHTTP(w, r)
	})
	http.HandleFunc("/api/cities/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			corsMiddleware(authMiddleware.Authenticate(authMiddleware.RequirePermission("manage_zones")(zoneRouter(zoneHandler)))).ServeHTTP(w, r)
			return
		}
		corsMiddleware(zoneRouter(zoneHandler)).ServeHTTP(w, r)
	})
	http.Handle("/api/rentals", corsMiddleware(rentalHandler))
	http.HandleFunc("/api/rentals/", func(w http.ResponseWriter, r *http.Request) {
		corsMiddleware(rentalCompletionHandler(rentalCollection)).ServeHTTP(w, r)
	})
	http.HandleFunc("/api/bikes/", func(w http.ResponseWriter, r *http.Request) {
		corsMiddleware(bikeHandler(bikeCollection)).ServeHTTP(w, r)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{Addr: ":" + port}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithField("port", port).Info("backend: HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("backend: server failed to start")
		}
	}()

	<-stop
	log.Info("backend: shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("backend: server forced to shutdown")
	} else {
		log.Info("backend: server exited gracefully")
	}
}
