package models

import (
	"time"
)

// ContentPayload is the normalized result of one category fetch. It is
// replaced wholesale on each successful fetch, never mutated in place.
type ContentPayload struct {
	Title      string            `json:"title"`
	Code       int               `json:"code"`
	Fields     map[string]string `json:"fields"`
	UpdateTime string            `json:"update_time"`
	UpdateDate string            `json:"update_date"`
}

// Attributes flattens the payload into the attribute map published on a
// sensor. The attribute names are a dashboard compatibility contract.
func (p *ContentPayload) Attributes() map[string]interface{} {
	attrs := map[string]interface{}{
		"title":       p.Title,
		"code":        p.Code,
		"update_time": p.UpdateTime,
		"update_date": p.UpdateDate,
	}
	for k, v := range p.Fields {
		attrs[k] = v
	}
	return attrs
}

type CacheEntry struct {
	Category  string          `json:"category"`
	Payload   *ContentPayload `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// EntityState is the published sensor surface: a primary text state plus the
// full attribute set, in the shape dashboard templates consume.
type EntityState struct {
	EntityID   string                 `json:"entity_id"`
	Name       string                 `json:"name"`
	Icon       string                 `json:"icon"`
	State      string                 `json:"state"`
	Attributes map[string]interface{} `json:"attributes"`
	Available  bool                   `json:"available"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// SlotContent is the card attribute block both selector sensors publish.
type SlotContent struct {
	Title    string `json:"title"`
	Title2   string `json:"title2"`
	Subtitle string `json:"subtitle"`
	Content1 string `json:"content1"`
	Content2 string `json:"content2"`
	Align    string `json:"align"`
	Subalign string `json:"subalign"`
}

// TimeBucket is one [Start, End) slice of the 24-hour cycle, in minutes since
// midnight. End <= Start means the bucket wraps past midnight.
type TimeBucket struct {
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	CategoryID  string `json:"category_id"`
}

// Contains reports whether the given minute-of-day falls inside the bucket.
// The start minute is inclusive, the end minute exclusive.
func (b TimeBucket) Contains(minute int) bool {
	if b.StartMinute < b.EndMinute {
		return minute >= b.StartMinute && minute < b.EndMinute
	}
	// Wrapping bucket, e.g. 22:00-05:00.
	return minute >= b.StartMinute || minute < b.EndMinute
}

type Stats struct {
	TotalCategories  int    `json:"total_categories"`
	CachedCategories int    `json:"cached_categories"`
	FreshCategories  int    `json:"fresh_categories"`
	RotationCategory string `json:"rotation_category"`
	CurrentTimeSlot  string `json:"current_time_slot"`
}

type User struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Password  string     `json:"-" db:"password"` // Never return password in JSON
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	LastLogin *time.Time `json:"last_login" db:"last_login"`
}

type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
