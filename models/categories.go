package models

// Category describes one TianAPI content endpoint and its display metadata.
// Membership of the enabled set is fixed for the lifetime of a configuration;
// changing it requires a reload, not a runtime mutation.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`       // sensor display name
	CardTitle string `json:"card_title"` // selector card title, with emoji
	SlotLabel string `json:"slot_label"` // time_slot attribute value
	Icon      string `json:"icon"`
	Path      string `json:"path"` // endpoint path under the API base URL
	Optional  bool   `json:"optional"`
}

// The two greeting categories are always registered; the eight optional
// categories are user-configured. Order here is the canonical display order:
// the morning greeting first, optional categories through the day, the
// evening greeting last. Rotation and time-bucket allocation both follow it.
var Categories = []Category{
	{ID: "morning", Name: "早安心语", CardTitle: "🌅早安问候", SlotLabel: "早安时段", Icon: "mdi:weather-sunny", Path: "zaoan"},
	{ID: "maxim", Name: "英文格言", CardTitle: "☘️英文格言", SlotLabel: "格言时段", Icon: "mdi:translate", Path: "enmaxim", Optional: true},
	{ID: "joke", Name: "每日笑话", CardTitle: "🌻每日笑话", SlotLabel: "笑话时段", Icon: "mdi:emoticon-lol", Path: "joke", Optional: true},
	{ID: "sentence", Name: "古籍名句", CardTitle: "🌻古籍名句", SlotLabel: "名句时段", Icon: "mdi:format-quote-close", Path: "gjmj", Optional: true},
	{ID: "couplet", Name: "经典对联", CardTitle: "🔖经典对联", SlotLabel: "对联时段", Icon: "mdi:brush", Path: "duilian", Optional: true},
	{ID: "history", Name: "简说历史", CardTitle: "🏷️简说历史", SlotLabel: "历史时段", Icon: "mdi:calendar-clock", Path: "pitlishi", Optional: true},
	{ID: "poetry", Name: "唐诗鉴赏", CardTitle: "🔖唐诗鉴赏", SlotLabel: "唐诗时段", Icon: "mdi:book-open-variant", Path: "poetry", Optional: true},
	{ID: "songci", Name: "最美宋词", CardTitle: "🌼最美宋词", SlotLabel: "宋词时段", Icon: "mdi:book-music", Path: "zmsc", Optional: true},
	{ID: "yuanqu", Name: "精选元曲", CardTitle: "🔖精选元曲", SlotLabel: "元曲时段", Icon: "mdi:music", Path: "yuanqu", Optional: true},
	{ID: "evening", Name: "晚安心语", CardTitle: "🌃晚安问候", SlotLabel: "晚安时段", Icon: "mdi:weather-night", Path: "wanan"},
}

func CategoryByID(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// OptionalCategoryIDs returns the IDs of all optional categories in
// canonical order.
func OptionalCategoryIDs() []string {
	var ids []string
	for _, c := range Categories {
		if c.Optional {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// BuildRegistry returns the fixed greeting categories plus the requested
// optional categories, in canonical order. Unknown IDs are ignored.
func BuildRegistry(enabledOptional []string) []Category {
	enabled := make(map[string]bool, len(enabledOptional))
	for _, id := range enabledOptional {
		enabled[id] = true
	}

	var registry []Category
	for _, c := range Categories {
		if !c.Optional || enabled[c.ID] {
			registry = append(registry, c)
		}
	}
	return registry
}
