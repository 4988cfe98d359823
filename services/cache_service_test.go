package services

import (
	"errors"
	"testing"
	"time"

	"tianboard/models"
)

// stubFetcher counts calls and returns a canned payload or error.
type stubFetcher struct {
	calls   int
	payload *models.ContentPayload
	err     error
}

func (sf *stubFetcher) Fetch(cat models.Category) (*models.ContentPayload, error) {
	sf.calls++
	if sf.err != nil {
		return nil, sf.err
	}
	return sf.payload, nil
}

func testPayload(content string) *models.ContentPayload {
	return &models.ContentPayload{
		Title:      "每日笑话",
		Code:       200,
		Fields:     map[string]string{"name": "测试", "content": content},
		UpdateTime: "2024-06-01 00:01:00",
		UpdateDate: "2024-06-01",
	}
}

// fakeClock advances manually for simulated-time tests.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 6, 1, 0, 1, 0, 0, time.Local)}
}

func (fc *fakeClock) now() time.Time {
	return fc.current
}

func (fc *fakeClock) advance(d time.Duration) {
	fc.current = fc.current.Add(d)
}

func TestGetOrFetchUsesFreshCache(t *testing.T) {
	fetcher := &stubFetcher{payload: testPayload("第一条")}
	clock := newFakeClock()

	cs := NewCacheService(fetcher, nil)
	cs.now = clock.now

	joke := testCategory(t, "joke")

	if _, err := cs.GetOrFetch(joke); err != nil {
		t.Fatalf("first GetOrFetch failed: %v", err)
	}

	clock.advance(59 * time.Minute)
	payload, err := cs.GetOrFetch(joke)
	if err != nil {
		t.Fatalf("second GetOrFetch failed: %v", err)
	}

	if fetcher.calls != 1 {
		t.Errorf("expected 1 upstream call within the freshness window, got %d", fetcher.calls)
	}
	if payload.Fields["content"] != "第一条" {
		t.Errorf("expected cached payload, got %v", payload.Fields)
	}
}

func TestGetOrFetchRefetchesAfterTTL(t *testing.T) {
	fetcher := &stubFetcher{payload: testPayload("第一条")}
	clock := newFakeClock()

	cs := NewCacheService(fetcher, nil)
	cs.now = clock.now

	joke := testCategory(t, "joke")

	if _, err := cs.GetOrFetch(joke); err != nil {
		t.Fatalf("first GetOrFetch failed: %v", err)
	}

	clock.advance(time.Hour)
	fetcher.payload = testPayload("第二条")

	payload, err := cs.GetOrFetch(joke)
	if err != nil {
		t.Fatalf("second GetOrFetch failed: %v", err)
	}

	if fetcher.calls != 2 {
		t.Errorf("expected exactly 2 upstream calls, got %d", fetcher.calls)
	}
	if payload.Fields["content"] != "第二条" {
		t.Errorf("expected refreshed payload, got %v", payload.Fields)
	}
}

func TestGetOrFetchServesStaleOnError(t *testing.T) {
	fetcher := &stubFetcher{payload: testPayload("第一条")}
	clock := newFakeClock()

	cs := NewCacheService(fetcher, nil)
	cs.now = clock.now

	joke := testCategory(t, "joke")

	if _, err := cs.GetOrFetch(joke); err != nil {
		t.Fatalf("first GetOrFetch failed: %v", err)
	}

	clock.advance(2 * time.Hour)
	fetcher.err = &NetworkError{Err: errors.New("connection refused")}

	payload, err := cs.GetOrFetch(joke)
	if err != nil {
		t.Fatalf("expected stale payload instead of error, got %v", err)
	}
	if payload.Fields["content"] != "第一条" {
		t.Errorf("expected stale payload, got %v", payload.Fields)
	}
	if fetcher.calls != 2 {
		t.Errorf("expected a fetch attempt before stale-serve, got %d calls", fetcher.calls)
	}
}

func TestGetOrFetchFailsWithoutCache(t *testing.T) {
	fetcher := &stubFetcher{err: &APIError{Code: 100, Msg: "key error"}}

	cs := NewCacheService(fetcher, nil)

	_, err := cs.GetOrFetch(testCategory(t, "joke"))
	if err == nil {
		t.Fatal("expected error when fetch fails with no prior cache")
	}
	if !errors.Is(err, ErrNoCache) {
		t.Errorf("expected ErrNoCache, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("expected the underlying APIError to be preserved, got %v", err)
	}
}

func TestPeekNeverFetches(t *testing.T) {
	fetcher := &stubFetcher{payload: testPayload("第一条")}
	cs := NewCacheService(fetcher, nil)

	if entry := cs.Peek("joke"); entry != nil {
		t.Errorf("expected nil entry before any fetch, got %v", entry)
	}
	if fetcher.calls != 0 {
		t.Errorf("Peek must not trigger a fetch, got %d calls", fetcher.calls)
	}

	if _, err := cs.GetOrFetch(testCategory(t, "joke")); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	entry := cs.Peek("joke")
	if entry == nil || entry.Payload.Fields["content"] != "第一条" {
		t.Errorf("expected cached entry from Peek, got %v", entry)
	}
	if fetcher.calls != 1 {
		t.Errorf("Peek must not trigger a second fetch, got %d calls", fetcher.calls)
	}
}

func TestFreshAndCached(t *testing.T) {
	fetcher := &stubFetcher{payload: testPayload("第一条")}
	clock := newFakeClock()

	cs := NewCacheService(fetcher, nil)
	cs.now = clock.now

	if cs.Cached("joke") || cs.Fresh("joke") {
		t.Error("expected empty cache at start")
	}

	if _, err := cs.GetOrFetch(testCategory(t, "joke")); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	if !cs.Cached("joke") || !cs.Fresh("joke") {
		t.Error("expected fresh cached entry after fetch")
	}

	clock.advance(time.Hour)
	if !cs.Cached("joke") {
		t.Error("stale entries stay cached")
	}
	if cs.Fresh("joke") {
		t.Error("entry must go stale after the TTL")
	}
}
