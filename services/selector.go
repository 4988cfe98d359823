package services

import (
	"time"

	"tianboard/models"
)

// Both selector sensors publish the same entity shape: the slot content
// block plus a discriminator attribute (content_type for rotation,
// time_slot for the time-bucket selector).

func waitingEntity(entityID, name, icon, discriminator, discriminatorValue string, now time.Time) models.EntityState {
	sc := waitingSlotContent(name, StateWaiting)
	state := selectorEntity(entityID, name, icon, sc, discriminator, discriminatorValue, now, now, true)
	state.State = StateWaiting
	return state
}

func mirrorEntity(entityID, name, icon string, cat models.Category, payload *models.ContentPayload,
	discriminator, discriminatorValue string, switchedAt, now time.Time) models.EntityState {
	sc := SlotContentFor(cat, payload)
	return selectorEntity(entityID, name, icon, sc, discriminator, discriminatorValue, switchedAt, now, true)
}

func selectorEntity(entityID, name, icon string, sc models.SlotContent,
	discriminator, discriminatorValue string, switchedAt, now time.Time, available bool) models.EntityState {
	return models.EntityState{
		EntityID: entityID,
		Name:     name,
		Icon:     icon,
		State:    now.Format("2006-01-02"),
		Attributes: map[string]interface{}{
			"title":       sc.Title,
			"title2":      sc.Title2,
			"subtitle":    sc.Subtitle,
			"content1":    sc.Content1,
			"content2":    sc.Content2,
			"align":       sc.Align,
			"subalign":    sc.Subalign,
			discriminator: discriminatorValue,
			"update_time": switchedAt.Format("2006-01-02 15:04:05"),
			"update_date": now.Format("2006-01-02"),
		},
		Available: available,
		UpdatedAt: now,
	}
}
