package main

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"tianboard/config"
	"tianboard/database"
	"tianboard/handlers"
	"tianboard/middleware"
	"tianboard/models"
	"tianboard/services"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	// Initialize services
	registry := models.BuildRegistry(cfg.EnabledCategories)
	fetchService := services.NewFetchService(cfg.APIKey)
	cacheService := services.NewCacheService(fetchService, db)
	sensorService := services.NewSensorService(cacheService, registry)

	// A persisted interval (set through the settings endpoint) wins over the
	// env default.
	interval := cfg.RotationInterval
	if v, err := db.GetSetting(handlers.RotationIntervalKey); err == nil {
		if n, err := strconv.Atoi(v); err == nil {
			interval = n
		}
	}
	rotationService := services.NewRotationService(cacheService, registry, interval)
	timeSlotService := services.NewTimeSlotService(cacheService, registry)

	authService := services.NewAuthService(db)
	if err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to ensure admin user: ", err)
	}

	// Reload re-reads the category toggles and rebuilds everything derived
	// from them; registry membership never changes outside this path.
	reload := func() error {
		fresh, err := config.Load()
		if err != nil {
			return err
		}
		registry := models.BuildRegistry(fresh.EnabledCategories)
		sensorService.SetRegistry(registry)
		rotationService.SetCategories(registry)
		timeSlotService.Rebuild(registry)
		log.Printf("Configuration reloaded: %d categories registered", len(registry))
		go sensorService.UpdateAll()
		return nil
	}

	// Initialize handlers
	sensorHandlers := handlers.NewSensorHandlers(sensorService, cacheService, rotationService, timeSlotService, db, reload)
	authMiddleware := middleware.NewAuthMiddleware(authService, cfg.SessionSecret)

	// Setup routes
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "ok", "message": "TianBoard is running", "timestamp": "%s"}`, time.Now().Format(time.RFC3339))
	}).Methods("GET")

	// Auth routes
	api.HandleFunc("/auth/login", authMiddleware.Login).Methods("POST")
	api.HandleFunc("/auth/logout", authMiddleware.Logout).Methods("POST")
	api.HandleFunc("/auth/me", authMiddleware.GetCurrentUser).Methods("GET")
	api.Handle("/auth/password", authMiddleware.RequireAuth(http.HandlerFunc(authMiddleware.ChangePassword))).Methods("POST")

	// Sensor routes (read-only, open)
	api.HandleFunc("/stats", sensorHandlers.GetStats).Methods("GET")
	api.HandleFunc("/sensors", sensorHandlers.GetSensors).Methods("GET")
	api.HandleFunc("/sensors/rotation", sensorHandlers.GetRotation).Methods("GET")
	api.HandleFunc("/sensors/timeslot", sensorHandlers.GetTimeSlot).Methods("GET")
	api.HandleFunc("/sensors/{category}", sensorHandlers.GetSensor).Methods("GET")

	// Command routes (authenticated)
	api.Handle("/refresh", authMiddleware.RequireAuth(http.HandlerFunc(sensorHandlers.RefreshAll))).Methods("POST")
	api.Handle("/reload", authMiddleware.RequireAuth(http.HandlerFunc(sensorHandlers.Reload))).Methods("POST")
	api.Handle("/settings/rotation", authMiddleware.RequireAuth(http.HandlerFunc(sensorHandlers.UpdateRotationInterval))).Methods("POST")
	api.Handle("/sensors/{category}/refresh", authMiddleware.RequireAuth(http.HandlerFunc(sensorHandlers.RefreshSensor))).Methods("POST")

	// Setup background jobs
	setupCronJobs(sensorService, rotationService, timeSlotService, authService)

	// First update runs in the background so startup is not blocked on the
	// upstream API.
	go func() {
		sensorService.UpdateAll()
		rotationService.Tick()
		timeSlotService.Tick()
	}()

	fmt.Printf("TianBoard server starting on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

func setupCronJobs(sensors *services.SensorService, rotation *services.RotationService,
	timeslot *services.TimeSlotService, auth *services.AuthService) {
	c := cron.New()

	// Daily content refresh shortly after midnight; the cache keeps
	// intra-day calls within the free-tier quota.
	c.AddFunc("1 0 * * *", func() {
		log.Println("Starting daily content refresh...")
		sensors.UpdateAll()
		log.Println("Daily content refresh completed")
	})

	// Selector ticks every minute; each tick decides on its own whether a
	// rotation advance or slot change is due.
	c.AddFunc("* * * * *", func() {
		rotation.Tick()
		timeslot.Tick()
	})

	// Cleanup expired sessions daily at 3 AM
	c.AddFunc("0 3 * * *", func() {
		if err := auth.CleanupExpiredSessions(); err != nil {
			log.Printf("Failed to cleanup sessions: %v", err)
		}
	})

	c.Start()
	log.Println("Background jobs scheduled")
}
