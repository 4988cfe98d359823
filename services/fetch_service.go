package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tianboard/models"
)

const (
	DefaultBaseURL = "https://apis.tianapi.com"

	apiCodeSuccess     = 200
	apiCodeInvalidKey  = 100
	apiCodeRateLimited = 130
)

// Greeting fallbacks when the upstream returns an empty result.
const (
	defaultMorningGreeting = "早安！新的一天开始了！"
	defaultEveningGreeting = "晚安！好梦！"
)

type FetchService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewFetchService(apiKey string) *FetchService {
	return &FetchService{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

type apiEnvelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Result json.RawMessage `json:"result"`
}

// Fetch performs a single GET against the category's endpoint and returns
// the normalized payload. No internal retry: network, parse and upstream
// failures are all terminal for this call.
func (fs *FetchService) Fetch(cat models.Category) (*models.ContentPayload, error) {
	url := fmt.Sprintf("%s/%s/index?key=%s%s", fs.baseURL, cat.Path, fs.apiKey, freeTierParams(cat.ID))

	resp, err := fs.client.Get(url)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &ParseError{Err: err}
	}

	if envelope.Code != apiCodeSuccess {
		return nil, &APIError{Code: envelope.Code, Msg: envelope.Msg}
	}

	result, err := extractResult(envelope.Result)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	fields, err := categoryFields(cat.ID, result)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	fetchedAt := fs.now()
	return &models.ContentPayload{
		Title:      cat.Name,
		Code:       envelope.Code,
		Fields:     fields,
		UpdateTime: fetchedAt.Format("2006-01-02 15:04:05"),
		UpdateDate: fetchedAt.Format("2006-01-02"),
	}, nil
}

// The free-tier result set is selected with num/page parameters on the
// endpoints that paginate; the rest take only the key.
func freeTierParams(categoryID string) string {
	switch categoryID {
	case "joke":
		return "&num=1"
	case "yuanqu":
		return "&num=1&page=1"
	default:
		return ""
	}
}

// extractResult normalizes the three shapes the upstream uses for result:
// a plain object, a bare array, or an object holding a "list" array. Where
// a list is involved the first element is taken.
func extractResult(raw json.RawMessage) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing result")
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []map[string]interface{}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("empty result list")
		}
		return list[0], nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}

	if nested, ok := obj["list"]; ok {
		items, ok := nested.([]interface{})
		if !ok || len(items) == 0 {
			return nil, fmt.Errorf("empty result list")
		}
		first, ok := items[0].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected list element shape")
		}
		return first, nil
	}

	return obj, nil
}

// categoryFields projects the raw result into the category's fixed attribute
// map. Field names differ across the ten categories and are part of the
// dashboard compatibility contract.
func categoryFields(categoryID string, result map[string]interface{}) (map[string]string, error) {
	s := func(key string) string {
		if v, ok := result[key].(string); ok {
			return v
		}
		return ""
	}

	switch categoryID {
	case "joke":
		return map[string]string{
			"name":    s("title"),
			"content": s("content"),
		}, nil
	case "morning":
		return map[string]string{
			"content": normalizeMorning(s("content")),
		}, nil
	case "evening":
		return map[string]string{
			"content": normalizeEvening(s("content")),
		}, nil
	case "poetry":
		return map[string]string{
			"content": s("content"),
			"source":  s("title"),
			"author":  s("author"),
			"intro":   s("intro"),
			"kind":    s("kind"),
		}, nil
	case "songci":
		return map[string]string{
			"content": s("content"),
			"source":  s("source"),
			"author":  s("author"),
		}, nil
	case "yuanqu":
		return map[string]string{
			"content":     s("content"),
			"source":      s("title"),
			"author":      s("author"),
			"note":        s("note"),
			"translation": s("translation"),
		}, nil
	case "history":
		return map[string]string{
			"content": s("content"),
		}, nil
	case "sentence":
		return map[string]string{
			"content": s("content"),
			"source":  s("source"),
		}, nil
	case "couplet":
		return map[string]string{
			"content": s("content"),
		}, nil
	case "maxim":
		return map[string]string{
			"en": s("en"),
			"zh": s("zh"),
		}, nil
	}

	return nil, fmt.Errorf("unknown category %q", categoryID)
}

func normalizeMorning(content string) string {
	if content == "" {
		return defaultMorningGreeting
	}
	if !strings.Contains(content, "早安") {
		return "早安！" + content
	}
	return content
}

func normalizeEvening(content string) string {
	if content == "" {
		return defaultEveningGreeting
	}
	if !strings.Contains(content, "晚安") {
		return content + "晚安！"
	}
	return content
}
