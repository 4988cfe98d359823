package services

import (
	"testing"
	"time"

	"tianboard/models"
)

// seedCache puts an entry directly into the cache so selector tests can run
// without a fetcher.
func seedCache(cs *CacheService, categoryID, content string, fetchedAt time.Time) {
	payload := testPayload(content)
	if cat, ok := models.CategoryByID(categoryID); ok {
		payload.Title = cat.Name
	}
	cs.mu.Lock()
	cs.entries[categoryID] = &models.CacheEntry{
		Category:  categoryID,
		Payload:   payload,
		FetchedAt: fetchedAt,
	}
	cs.mu.Unlock()
}

func rotationFixture(t *testing.T, ids []string, intervalMinutes int) (*RotationService, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	cs := NewCacheService(&stubFetcher{}, nil)
	cs.now = clock.now

	var categories []models.Category
	for _, id := range ids {
		cat := testCategory(t, id)
		categories = append(categories, cat)
		seedCache(cs, id, "内容 "+id, clock.now())
	}

	rs := NewRotationService(cs, categories, intervalMinutes)
	rs.now = clock.now
	return rs, clock
}

func TestRotationAdvancesOnInterval(t *testing.T) {
	rs, clock := rotationFixture(t, []string{"morning", "joke", "evening"}, 5)

	advances := 0
	last := rs.Index()

	// Per-minute ticks over 16 simulated minutes.
	for minute := 0; minute <= 16; minute++ {
		rs.Tick()
		if rs.Index() != last {
			advances++
			last = rs.Index()
		}
		clock.advance(time.Minute)
	}

	if advances != 3 {
		t.Errorf("expected exactly 3 advances after 16 minutes at interval 5, got %d", advances)
	}
	if rs.Index() != 0 {
		t.Errorf("expected index back at 0 after a full wrap, got %d", rs.Index())
	}
}

func TestRotationMirrorsCachedContent(t *testing.T) {
	rs, clock := rotationFixture(t, []string{"morning", "joke", "evening"}, 5)

	rs.Tick()
	state := rs.State()

	if state.Attributes["content_type"] != "morning" {
		t.Errorf("expected content_type morning, got %v", state.Attributes["content_type"])
	}
	if state.Attributes["title"] != "🌅早安问候" {
		t.Errorf("unexpected title: %v", state.Attributes["title"])
	}

	clock.advance(5 * time.Minute)
	rs.Tick()
	state = rs.State()

	if state.Attributes["content_type"] != "joke" {
		t.Errorf("expected content_type joke after advance, got %v", state.Attributes["content_type"])
	}
	if rs.CurrentCategory() != "joke" {
		t.Errorf("expected current category joke, got %s", rs.CurrentCategory())
	}
}

func TestRotationWaitsForData(t *testing.T) {
	clock := newFakeClock()
	cs := NewCacheService(&stubFetcher{}, nil)
	cs.now = clock.now

	categories := []models.Category{
		testCategory(t, "morning"),
		testCategory(t, "evening"),
	}

	rs := NewRotationService(cs, categories, 5)
	rs.now = clock.now

	rs.Tick()
	state := rs.State()

	if state.State != StateWaiting {
		t.Errorf("expected waiting sentinel without cached data, got %q", state.State)
	}
	if state.Attributes["content1"] != StateWaiting {
		t.Errorf("expected waiting message in content1, got %v", state.Attributes["content1"])
	}
}

func TestRotationEmptyListNeverPanics(t *testing.T) {
	clock := newFakeClock()
	cs := NewCacheService(&stubFetcher{}, nil)
	cs.now = clock.now

	rs := NewRotationService(cs, nil, 5)
	rs.now = clock.now

	for minute := 0; minute < 10; minute++ {
		rs.Tick()
		clock.advance(time.Minute)
	}

	state := rs.State()
	if state.State != StateWaiting {
		t.Errorf("expected waiting sentinel for empty category list, got %q", state.State)
	}
	if rs.CurrentCategory() != "" {
		t.Errorf("expected no current category, got %s", rs.CurrentCategory())
	}
}

func TestSetIntervalAppliesOnNextTick(t *testing.T) {
	rs, clock := rotationFixture(t, []string{"morning", "joke", "evening"}, 5)

	rs.Tick()
	rs.SetInterval(1)
	if rs.Interval() != time.Minute {
		t.Fatalf("expected 1-minute interval, got %v", rs.Interval())
	}

	clock.advance(time.Minute)
	rs.Tick()
	if rs.Index() != 1 {
		t.Errorf("expected advance after shortened interval, got index %d", rs.Index())
	}

	rs.SetInterval(120)
	if rs.Interval() != 60*time.Minute {
		t.Errorf("expected interval clamped to 60 minutes, got %v", rs.Interval())
	}
}

func TestRotationIntervalClamping(t *testing.T) {
	tests := []struct {
		minutes int
		want    time.Duration
	}{
		{0, time.Minute},
		{-5, time.Minute},
		{1, time.Minute},
		{5, 5 * time.Minute},
		{60, 60 * time.Minute},
		{120, 60 * time.Minute},
	}

	for _, tt := range tests {
		if got := clampRotationInterval(tt.minutes); got != tt.want {
			t.Errorf("clampRotationInterval(%d) = %v, want %v", tt.minutes, got, tt.want)
		}
	}
}
