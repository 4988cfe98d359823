package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"tianboard/models"
)

// User-visible sentinel states. A sensor always resolves to either real
// content or one of these; errors never escape the update path.
const (
	StateWaiting = "waiting for data loading"
	StateFailed  = "API request failed"
)

// SensorService owns one sensor per registered category. Each update tick
// runs the single cache-then-fetch path and republishes the entity state;
// manual refreshes reuse the same path.
type SensorService struct {
	cache *CacheService

	mu       sync.RWMutex
	registry []models.Category
	states   map[string]*models.EntityState

	now func() time.Time
}

func NewSensorService(cache *CacheService, registry []models.Category) *SensorService {
	ss := &SensorService{
		cache: cache,
		now:   time.Now,
	}
	ss.SetRegistry(registry)
	return ss
}

// SetRegistry replaces the enabled-category set. This happens only on
// initial setup and on an explicit reload.
func (ss *SensorService) SetRegistry(registry []models.Category) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.registry = registry
	ss.states = make(map[string]*models.EntityState, len(registry))
	for _, cat := range registry {
		ss.states[cat.ID] = &models.EntityState{
			EntityID:  cat.ID,
			Name:      cat.Name,
			Icon:      cat.Icon,
			State:     StateWaiting,
			Available: true,
			Attributes: map[string]interface{}{
				"title": cat.Name,
			},
			UpdatedAt: ss.now(),
		}
	}
}

func (ss *SensorService) Registry() []models.Category {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.registry
}

// UpdateCategory runs one update cycle for a single sensor. The returned
// error is informational for manual-refresh callers; the sensor itself has
// already resolved to a published state either way.
func (ss *SensorService) UpdateCategory(categoryID string) error {
	ss.mu.RLock()
	var cat models.Category
	found := false
	for _, c := range ss.registry {
		if c.ID == categoryID {
			cat = c
			found = true
			break
		}
	}
	ss.mu.RUnlock()

	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, categoryID)
	}

	payload, err := ss.cache.GetOrFetch(cat)
	if err != nil {
		ss.publishFailed(cat, err)
		return err
	}

	ss.publishPayload(cat, payload)
	return nil
}

// UpdateAll runs the update cycle for every registered sensor sequentially,
// matching the one-invocation-per-tick scheduling model.
func (ss *SensorService) UpdateAll() {
	for _, cat := range ss.Registry() {
		if err := ss.UpdateCategory(cat.ID); err != nil {
			log.Printf("Sensor update for %s failed: %v", cat.ID, err)
		}
	}
}

func (ss *SensorService) publishPayload(cat models.Category, payload *models.ContentPayload) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.states[cat.ID] = &models.EntityState{
		EntityID:   cat.ID,
		Name:       cat.Name,
		Icon:       cat.Icon,
		State:      payload.UpdateDate,
		Attributes: payload.Attributes(),
		Available:  true,
		UpdatedAt:  ss.now(),
	}
}

func (ss *SensorService) publishFailed(cat models.Category, err error) {
	now := ss.now()

	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.states[cat.ID] = &models.EntityState{
		EntityID: cat.ID,
		Name:     cat.Name,
		Icon:     cat.Icon,
		State:    StateFailed,
		Attributes: map[string]interface{}{
			"title":       cat.Name,
			"error":       err.Error(),
			"update_time": now.Format("2006-01-02 15:04:05"),
			"update_date": now.Format("2006-01-02"),
		},
		Available: false,
		UpdatedAt: now,
	}
}

// States returns all category sensor states in canonical registry order.
func (ss *SensorService) States() []models.EntityState {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	states := make([]models.EntityState, 0, len(ss.registry))
	for _, cat := range ss.registry {
		if state, ok := ss.states[cat.ID]; ok {
			states = append(states, *state)
		}
	}
	return states
}

func (ss *SensorService) State(categoryID string) (models.EntityState, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	state, ok := ss.states[categoryID]
	if !ok {
		return models.EntityState{}, false
	}
	return *state, true
}
