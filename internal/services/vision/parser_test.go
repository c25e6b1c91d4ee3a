package vision

import (
	"reflect"
	"testing"
)

func TestParseAnalysis_PlainJSON(t *testing.T) {
	raw := `{"explanation": "A ripe tomato on a vine.", "category": "food", "tags": ["tomato", "vegetable"], "confidence": 0.92}`

	p := parseAnalysis(raw)

	if p.Explanation != "A ripe tomato on a vine." {
		t.Errorf("unexpected explanation: %q", p.Explanation)
	}
	if p.Category != "food" {
		t.Errorf("expected category food, got %q", p.Category)
	}
	if !reflect.DeepEqual(p.Tags, []string{"tomato", "vegetable"}) {
		t.Errorf("unexpected tags: %v", p.Tags)
	}
	if p.Confidence != 0.92 {
		t.Errorf("unexpected confidence: %v", p.Confidence)
	}
}

func TestParseAnalysis_FencedJSON(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"explanation\": \"An old cathedral.\", \"category\": \"landmark\", \"tags\": [\"church\"], \"confidence\": 0.8}\n```"

	p := parseAnalysis(raw)

	if p.Explanation != "An old cathedral." {
		t.Errorf("unexpected explanation: %q", p.Explanation)
	}
	if p.Category != "landmark" {
		t.Errorf("expected category landmark, got %q", p.Category)
	}
}

func TestParseAnalysis_JSONEmbeddedInText(t *testing.T) {
	raw := `Sure! {"explanation": "A laptop with stickers.", "category": "technology", "tags": [], "confidence": 0.75} Hope that helps.`

	p := parseAnalysis(raw)

	if p.Explanation != "A laptop with stickers." {
		t.Errorf("unexpected explanation: %q", p.Explanation)
	}
	if p.Category != "technology" {
		t.Errorf("expected category technology, got %q", p.Category)
	}
}

func TestParseAnalysis_NonJSONFallsBack(t *testing.T) {
	raw := "This looks like a sunset over the mountains."

	p := parseAnalysis(raw)

	if p.Explanation != raw {
		t.Errorf("expected raw text as explanation, got %q", p.Explanation)
	}
	if p.Category != "other" {
		t.Errorf("expected category other, got %q", p.Category)
	}
	if len(p.Tags) != 0 {
		t.Errorf("expected empty tags, got %v", p.Tags)
	}
	if p.Confidence != fallbackConfidence {
		t.Errorf("expected confidence %v, got %v", fallbackConfidence, p.Confidence)
	}
}

func TestParseAnalysis_UnknownCategoryNormalized(t *testing.T) {
	raw := `{"explanation": "Something odd.", "category": "spaceship", "tags": null, "confidence": 1.4}`

	p := parseAnalysis(raw)

	if p.Category != "other" {
		t.Errorf("expected unknown category to map to other, got %q", p.Category)
	}
	if p.Tags == nil || len(p.Tags) != 0 {
		t.Errorf("expected empty non-nil tags, got %v", p.Tags)
	}
	if p.Confidence != 1.0 {
		t.Errorf("expected confidence clamped to 1, got %v", p.Confidence)
	}
}

func TestParseAnalysis_EmptyExplanationFallsBack(t *testing.T) {
	raw := `{"explanation": "", "category": "food", "tags": [], "confidence": 0.9}`

	p := parseAnalysis(raw)

	// JSON без текста бесполезен, парсер откатывается на сырой ответ
	if p.Category != "other" {
		t.Errorf("expected fallback category other, got %q", p.Category)
	}
	if p.Explanation != raw {
		t.Errorf("expected raw text as explanation, got %q", p.Explanation)
	}
}
