package models

import "testing"

func TestBuildRegistryAlwaysIncludesGreetings(t *testing.T) {
	registry := BuildRegistry(nil)

	if len(registry) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(registry))
	}
	if registry[0].ID != "morning" || registry[1].ID != "evening" {
		t.Errorf("expected morning and evening, got %s and %s", registry[0].ID, registry[1].ID)
	}
}

func TestBuildRegistryKeepsCanonicalOrder(t *testing.T) {
	// Requested out of order; the registry must follow the display order.
	registry := BuildRegistry([]string{"yuanqu", "joke", "poetry"})

	want := []string{"morning", "joke", "poetry", "yuanqu", "evening"}
	if len(registry) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(registry))
	}
	for i, id := range want {
		if registry[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, registry[i].ID)
		}
	}
}

func TestBuildRegistryIgnoresUnknownIDs(t *testing.T) {
	registry := BuildRegistry([]string{"joke", "weather", "morning"})

	if len(registry) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(registry))
	}
	if registry[1].ID != "joke" {
		t.Errorf("expected joke, got %s", registry[1].ID)
	}
}

func TestOptionalCategoryIDs(t *testing.T) {
	ids := OptionalCategoryIDs()

	if len(ids) != 8 {
		t.Fatalf("expected 8 optional categories, got %d", len(ids))
	}
	for _, id := range ids {
		if id == "morning" || id == "evening" {
			t.Errorf("greeting category %s must not be optional", id)
		}
	}
}

func TestBucketContains(t *testing.T) {
	day := TimeBucket{StartMinute: 480, EndMinute: 600}
	wrap := TimeBucket{StartMinute: 1320, EndMinute: 300}

	tests := []struct {
		name   string
		bucket TimeBucket
		minute int
		want   bool
	}{
		{"start is inclusive", day, 480, true},
		{"end is exclusive", day, 600, false},
		{"inside", day, 540, true},
		{"before", day, 479, false},
		{"wrap before midnight", wrap, 1439, true},
		{"wrap after midnight", wrap, 0, true},
		{"wrap end exclusive", wrap, 300, false},
		{"wrap outside", wrap, 720, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bucket.Contains(tt.minute); got != tt.want {
				t.Errorf("Contains(%d) = %v, expected %v", tt.minute, got, tt.want)
			}
		})
	}
}
