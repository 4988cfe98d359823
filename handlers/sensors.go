package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"tianboard/models"
	"tianboard/services"
)

// RotationIntervalKey is the settings row backing the rotation interval, so
// an operator change survives restarts.
const RotationIntervalKey = "rotation_interval"

// SettingsStore persists operator-tunable settings across restarts.
type SettingsStore interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

type SensorHandlers struct {
	sensors  *services.SensorService
	cache    *services.CacheService
	rotation *services.RotationService
	timeslot *services.TimeSlotService
	settings SettingsStore
	reload   func() error
}

func NewSensorHandlers(sensors *services.SensorService, cache *services.CacheService,
	rotation *services.RotationService, timeslot *services.TimeSlotService,
	settings SettingsStore, reload func() error) *SensorHandlers {
	return &SensorHandlers{
		sensors:  sensors,
		cache:    cache,
		rotation: rotation,
		timeslot: timeslot,
		settings: settings,
		reload:   reload,
	}
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func (sh *SensorHandlers) GetSensors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    sh.sensors.States(),
	})
}

func (sh *SensorHandlers) GetSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	state, ok := sh.sensors.State(vars["category"])
	if !ok {
		writeJSON(w, http.StatusNotFound, APIResponse{
			Success: false,
			Error:   "Sensor not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    state,
	})
}

func (sh *SensorHandlers) GetRotation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    sh.rotation.State(),
	})
}

func (sh *SensorHandlers) GetTimeSlot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    sh.timeslot.State(),
	})
}

// RefreshSensor triggers the same single update path the scheduler uses.
func (sh *SensorHandlers) RefreshSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	category := vars["category"]

	if err := sh.sensors.UpdateCategory(category); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrUnknownCategory) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	state, _ := sh.sensors.State(category)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    state,
	})
}

func (sh *SensorHandlers) RefreshAll(w http.ResponseWriter, r *http.Request) {
	go sh.sensors.UpdateAll()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"message": "Refresh started"},
	})
}

// Reload re-derives the category registry, rotation list and bucket table
// from the current configuration.
func (sh *SensorHandlers) Reload(w http.ResponseWriter, r *http.Request) {
	if err := sh.reload(); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"message": "Configuration reloaded"},
	})
}

// UpdateRotationInterval applies a new rotation interval immediately and
// persists it so it survives restarts. The value is clamped like the
// startup configuration.
func (sh *SensorHandlers) UpdateRotationInterval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "Invalid JSON",
		})
		return
	}

	sh.rotation.SetInterval(req.Minutes)
	applied := int(sh.rotation.Interval() / time.Minute)

	if sh.settings != nil {
		if err := sh.settings.SetSetting(RotationIntervalKey, strconv.Itoa(applied)); err != nil {
			writeJSON(w, http.StatusInternalServerError, APIResponse{
				Success: false,
				Error:   "Failed to persist rotation interval",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]int{"minutes": applied},
	})
}

func (sh *SensorHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	registry := sh.sensors.Registry()

	stats := models.Stats{
		TotalCategories:  len(registry),
		RotationCategory: sh.rotation.CurrentCategory(),
		CurrentTimeSlot:  sh.timeslot.CurrentSlot(),
	}

	for _, cat := range registry {
		if sh.cache.Cached(cat.ID) {
			stats.CachedCategories++
		}
		if sh.cache.Fresh(cat.ID) {
			stats.FreshCategories++
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    stats,
	})
}
