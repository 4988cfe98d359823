package services

import (
	"sync"
	"time"

	"tianboard/models"
)

// Fixed anchors of the daily cycle, in minutes since midnight. The morning
// greeting holds the dawn slot, the evening greeting the overnight slot, and
// the enabled optional categories share the daytime span between them.
const (
	morningStart  = 5 * 60  // 05:00
	daytimeStart  = 8 * 60  // 08:00
	daytimeEnd    = 22 * 60 // 22:00
	minutesPerDay = 24 * 60
)

// BuildBucketTable derives the full 24-hour bucket table for a registry.
// Daytime minutes are split evenly across the optional categories in
// canonical order; when the split is uneven the earliest buckets each take
// one extra minute. With no optional categories enabled the morning slot
// stretches across the whole day. The table covers 24 hours with no gaps
// and no overlaps, the last bucket wrapping past midnight.
func BuildBucketTable(registry []models.Category) []models.TimeBucket {
	var optional []models.Category
	for _, cat := range registry {
		if cat.Optional {
			optional = append(optional, cat)
		}
	}

	if len(optional) == 0 {
		return []models.TimeBucket{
			{StartMinute: morningStart, EndMinute: daytimeEnd, CategoryID: "morning"},
			{StartMinute: daytimeEnd, EndMinute: morningStart, CategoryID: "evening"},
		}
	}

	table := []models.TimeBucket{
		{StartMinute: morningStart, EndMinute: daytimeStart, CategoryID: "morning"},
	}

	span := daytimeEnd - daytimeStart
	base := span / len(optional)
	extra := span % len(optional)

	start := daytimeStart
	for i, cat := range optional {
		length := base
		if i < extra {
			length++
		}
		table = append(table, models.TimeBucket{
			StartMinute: start,
			EndMinute:   start + length,
			CategoryID:  cat.ID,
		})
		start += length
	}

	table = append(table, models.TimeBucket{
		StartMinute: daytimeEnd,
		EndMinute:   morningStart,
		CategoryID:  "evening",
	})

	return table
}

// BucketAt returns the bucket containing the given minute-of-day.
func BucketAt(table []models.TimeBucket, minute int) (models.TimeBucket, bool) {
	minute = ((minute % minutesPerDay) + minutesPerDay) % minutesPerDay
	for _, bucket := range table {
		if bucket.Contains(minute) {
			return bucket, true
		}
	}
	return models.TimeBucket{}, false
}

// TimeSlotService maps the current wall-clock time into its bucket and
// mirrors the bound category's cached content. Like the rotation sensor it
// is a read-only mirror and never fetches.
type TimeSlotService struct {
	cache *CacheService

	mu       sync.Mutex
	table    []models.TimeBucket
	state    models.EntityState
	lastSlot string
	switched time.Time

	now func() time.Time
}

func NewTimeSlotService(cache *CacheService, registry []models.Category) *TimeSlotService {
	ts := &TimeSlotService{
		cache: cache,
		now:   time.Now,
	}
	ts.Rebuild(registry)
	return ts
}

// Rebuild re-derives the bucket table. Called on setup and reload only.
func (ts *TimeSlotService) Rebuild(registry []models.Category) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.table = BuildBucketTable(registry)
	ts.lastSlot = ""
	ts.switched = time.Time{}
	ts.state = waitingEntity("timeslot", "时段内容", "mdi:calendar-clock", "time_slot", "默认时段", ts.now())
}

func (ts *TimeSlotService) Table() []models.TimeBucket {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.table
}

// Tick republishes the sensor for the bucket containing the current time.
// The update_time attribute moves only when the slot changes.
func (ts *TimeSlotService) Tick() {
	now := ts.now()
	minute := now.Hour()*60 + now.Minute()

	ts.mu.Lock()
	defer ts.mu.Unlock()

	bucket, ok := BucketAt(ts.table, minute)
	if !ok {
		ts.state = waitingEntity("timeslot", "时段内容", "mdi:calendar-clock", "time_slot", "默认时段", now)
		return
	}

	cat, ok := models.CategoryByID(bucket.CategoryID)
	if !ok {
		ts.state = waitingEntity("timeslot", "时段内容", "mdi:calendar-clock", "time_slot", "默认时段", now)
		return
	}

	entry := ts.cache.Peek(cat.ID)
	if entry == nil {
		ts.state = waitingEntity("timeslot", "时段内容", "mdi:calendar-clock", "time_slot", "默认时段", now)
		return
	}

	if cat.SlotLabel != ts.lastSlot {
		ts.lastSlot = cat.SlotLabel
		ts.switched = now
	}

	ts.state = mirrorEntity("timeslot", "时段内容", "mdi:calendar-clock",
		cat, entry.Payload, "time_slot", cat.SlotLabel, ts.switched, now)
}

func (ts *TimeSlotService) State() models.EntityState {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.state
}

// CurrentSlot returns the slot label last published, or "" before any
// content was available.
func (ts *TimeSlotService) CurrentSlot() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.lastSlot
}
