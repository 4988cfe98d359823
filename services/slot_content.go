package services

import (
	"fmt"
	"strings"

	"tianboard/models"
)

// SlotContentFor builds the dashboard card block for a category from its
// cached payload. Both selector sensors publish this shape; the attribute
// names and the two content variants (content1 with HTML breaks, content2
// with plain newlines) are a compatibility contract with the card templates.
func SlotContentFor(cat models.Category, payload *models.ContentPayload) models.SlotContent {
	f := func(key, fallback string) string {
		if v := payload.Fields[key]; v != "" {
			return v
		}
		return fallback
	}

	sc := models.SlotContent{
		Title:    cat.CardTitle,
		Title2:   stripEmoji(cat.CardTitle),
		Align:    "center",
		Subalign: "center",
	}

	switch cat.ID {
	case "morning":
		content := f("content", defaultMorningGreeting)
		sc.Content1 = content
		sc.Content2 = content
		sc.Align = "left"
	case "evening":
		content := f("content", defaultEveningGreeting)
		sc.Content1 = content
		sc.Content2 = content
		sc.Align = "left"
	case "maxim":
		en := f("en", "No maxim available")
		zh := f("zh", "暂无格言")
		sc.Content1 = fmt.Sprintf("【英文】%s<br>【中文】%s", en, zh)
		sc.Content2 = fmt.Sprintf("【英文】%s\n【中文】%s", en, zh)
		sc.Align = "left"
	case "joke":
		name := f("name", "今日笑话")
		content := f("content", "暂无笑话内容")
		sc.Subtitle = name
		sc.Content1 = content
		sc.Content2 = name + "\n" + content
		sc.Align = "left"
	case "sentence":
		source := f("source", "古籍")
		content := f("content", "暂无名句内容")
		sc.Subtitle = fmt.Sprintf("《%s》", source)
		sc.Content1 = htmlBreaks(content)
		sc.Content2 = fmt.Sprintf("《%s》\n%s", source, plainBreaks(content))
	case "couplet":
		content := f("content", "暂无对联内容")
		sc.Content1 = content
		sc.Content2 = content
	case "history":
		content := f("content", "暂无历史内容")
		sc.Content1 = content
		sc.Content2 = content
		sc.Align = "left"
	case "poetry":
		author := f("author", "未知作者")
		source := f("source", "无题")
		content := f("content", "暂无唐诗内容")
		sc.Subtitle = fmt.Sprintf("%s · 《%s》", author, source)
		sc.Content1 = htmlBreaks(content)
		sc.Content2 = fmt.Sprintf("%s · 《%s》\n%s", author, source, plainBreaks(content))
	case "songci":
		source := f("source", "宋词")
		content := f("content", "暂无宋词内容")
		sc.Subtitle = source
		sc.Content1 = htmlBreaks(content)
		sc.Content2 = fmt.Sprintf("%s\n%s", source, plainBreaks(content))
	case "yuanqu":
		author := f("author", "未知作者")
		source := f("source", "无题")
		content := f("content", "暂无元曲内容")
		sc.Subtitle = fmt.Sprintf("%s · 《%s》", author, source)
		sc.Content1 = htmlBreaks(content)
		sc.Content2 = fmt.Sprintf("%s · 《%s》\n%s", author, source, plainBreaks(content))
	}

	return sc
}

// waitingSlotContent is published when the mirrored category has no cached
// data yet.
func waitingSlotContent(name, message string) models.SlotContent {
	return models.SlotContent{
		Title:    name,
		Title2:   name,
		Content1: message,
		Content2: message,
		Align:    "center",
		Subalign: "center",
	}
}

// Verse-style content breaks after Chinese sentence punctuation so the card
// shows one clause per line.
func htmlBreaks(text string) string {
	return breakAfterPunct(text, "<br>")
}

func plainBreaks(text string) string {
	return breakAfterPunct(text, "\n")
}

func breakAfterPunct(text, sep string) string {
	s := text
	for _, punct := range []string{"。", "？", "！"} {
		s = strings.ReplaceAll(s, punct, punct+sep)
	}
	s = strings.ReplaceAll(s, sep+sep, sep)
	return strings.TrimSuffix(s, sep)
}

func stripEmoji(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 0x1F300 && r <= 0x1F6FF, // pictographs, transport
			r >= 0x1F1E0 && r <= 0x1F1FF, // regional indicators
			r >= 0x2600 && r <= 0x27BF,   // misc symbols, dingbats
			r == 0xFE0F:                  // variation selector
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
