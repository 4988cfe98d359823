package services

import (
	"sync"
	"time"

	"tianboard/models"
)

const (
	minRotationInterval = 1 * time.Minute
	maxRotationInterval = 60 * time.Minute
)

// RotationService cycles the rotation sensor through the registered
// categories in canonical order, advancing one position whenever the
// configured interval has elapsed. It only mirrors cached content and never
// fetches on its own.
type RotationService struct {
	cache *CacheService

	mu         sync.Mutex
	categories []models.Category
	interval   time.Duration
	index      int
	lastSwitch time.Time
	state      models.EntityState

	now func() time.Time
}

func NewRotationService(cache *CacheService, categories []models.Category, intervalMinutes int) *RotationService {
	rs := &RotationService{
		cache:    cache,
		interval: clampRotationInterval(intervalMinutes),
		now:      time.Now,
	}
	rs.SetCategories(categories)
	return rs
}

func clampRotationInterval(minutes int) time.Duration {
	d := time.Duration(minutes) * time.Minute
	if d < minRotationInterval {
		return minRotationInterval
	}
	if d > maxRotationInterval {
		return maxRotationInterval
	}
	return d
}

// SetInterval replaces the advance interval, clamped like the constructor.
// The current position and switch time are kept; the new interval applies
// from the next tick.
func (rs *RotationService) SetInterval(minutes int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.interval = clampRotationInterval(minutes)
}

func (rs *RotationService) Interval() time.Duration {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.interval
}

// SetCategories replaces the rotation list and restarts the cycle. Called
// on setup and reload only.
func (rs *RotationService) SetCategories(categories []models.Category) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.categories = categories
	rs.index = 0
	rs.lastSwitch = time.Time{}
	rs.state = waitingEntity("rotation", "滚动内容", "mdi:message-text", "content_type", "unknown", rs.now())
}

// Tick advances the rotation when due and republishes the current
// category's cached content. With an empty category list the sensor stays
// on the waiting sentinel indefinitely.
func (rs *RotationService) Tick() {
	now := rs.now()

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if len(rs.categories) == 0 {
		rs.state = waitingEntity("rotation", "滚动内容", "mdi:message-text", "content_type", "unknown", now)
		return
	}

	if rs.lastSwitch.IsZero() {
		rs.lastSwitch = now
	} else if now.Sub(rs.lastSwitch) >= rs.interval {
		rs.index = (rs.index + 1) % len(rs.categories)
		rs.lastSwitch = now
	}

	cat := rs.categories[rs.index]
	entry := rs.cache.Peek(cat.ID)
	if entry == nil {
		rs.state = waitingEntity("rotation", "滚动内容", "mdi:message-text", "content_type", "unknown", now)
		return
	}

	rs.state = mirrorEntity("rotation", "滚动内容", "mdi:message-text",
		cat, entry.Payload, "content_type", cat.ID, rs.lastSwitch, now)
}

func (rs *RotationService) State() models.EntityState {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.state
}

// Index reports the current rotation position.
func (rs *RotationService) Index() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.index
}

// CurrentCategory returns the ID of the category currently mirrored, or ""
// when the rotation list is empty.
func (rs *RotationService) CurrentCategory() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.categories) == 0 {
		return ""
	}
	return rs.categories[rs.index].ID
}
