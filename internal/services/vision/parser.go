package vision

import (
	"encoding/json"
	"strings"

	"github.com/Nandan222001/ask-anything/internal/domain"
)

// fallbackConfidence используется, когда модель не вернула валидный JSON
const fallbackConfidence = 0.7

type parsedAnalysis struct {
	Explanation string   `json:"explanation"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Confidence  float64  `json:"confidence"`
}

// parseAnalysis разбирает ответ модели. Порядок попыток:
// JSON из fenced-блока, затем первый JSON-объект в тексте, затем
// весь текст как объяснение с категорией "other".
func parseAnalysis(raw string) parsedAnalysis {
	raw = strings.TrimSpace(raw)

	if candidate, ok := extractFenced(raw); ok {
		if p, ok := tryParse(candidate); ok {
			return p
		}
	}
	if candidate, ok := extractObject(raw); ok {
		if p, ok := tryParse(candidate); ok {
			return p
		}
	}

	return parsedAnalysis{
		Explanation: raw,
		Category:    string(domain.CategoryOther),
		Tags:        []string{},
		Confidence:  fallbackConfidence,
	}
}

func tryParse(candidate string) (parsedAnalysis, bool) {
	var p parsedAnalysis
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return parsedAnalysis{}, false
	}
	if strings.TrimSpace(p.Explanation) == "" {
		return parsedAnalysis{}, false
	}
	p.Category = string(domain.NormalizeCategory(p.Category))
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Confidence = domain.ClampConfidence(p.Confidence)
	return p, true
}

// extractFenced достаёт содержимое первого блока ```json ... ``` или ``` ... ```
func extractFenced(raw string) (string, bool) {
	start := strings.Index(raw, "```")
	if start == -1 {
		return "", false
	}
	rest := raw[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		lang := strings.TrimSpace(rest[:nl])
		if lang == "" || strings.EqualFold(lang, "json") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// extractObject достаёт первый сбалансированный JSON-объект из текста
func extractObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
