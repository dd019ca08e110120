package analyze

import (
	"reflect"
	"testing"
)

func TestExtractJSONDirect(t *testing.T) {
	obj, ok := ExtractJSON(`{"transcript": "hello", "scores": {"overall": 90}}`)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if obj["transcript"] != "hello" {
		t.Errorf("transcript = %v, want hello", obj["transcript"])
	}
}

func TestExtractJSONFencedBlock(t *testing.T) {
	fenced := "```json\n{\"transcript\": \"hi\", \"scores\": {\"overall\": 80}}\n```"
	plain := `{"transcript": "hi", "scores": {"overall": 80}}`

	fromFenced, ok := ExtractJSON(fenced)
	if !ok {
		t.Fatal("fenced block did not parse")
	}
	fromPlain, _ := ExtractJSON(plain)
	if !reflect.DeepEqual(fromFenced, fromPlain) {
		t.Errorf("fenced extraction %v differs from plain %v", fromFenced, fromPlain)
	}
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	text := "Sure! Here is the analysis you asked for:\n{\"transcript\": \"ok\"}\nLet me know if you need anything else."
	obj, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("expected brace-scan fallback to recover the object")
	}
	if obj["transcript"] != "ok" {
		t.Errorf("transcript = %v, want ok", obj["transcript"])
	}
}

func TestExtractJSONUnparseable(t *testing.T) {
	for _, text := range []string{
		"",
		"I could not transcribe the audio.",
		"{not valid json}",
		"}{",
	} {
		if _, ok := ExtractJSON(text); ok {
			t.Errorf("ExtractJSON(%q) parsed, want unparsed", text)
		}
	}
}

func TestNormalizeScores(t *testing.T) {
	parsed, _ := ExtractJSON(`{
		"scores": {
			"fluency": "87.9",
			"confidence": 91.2,
			"keyword_coverage_pct": null,
			"filler_rate_per_min": 3.5,
			"tone": "neutral"
		}
	}`)

	NormalizeScores(parsed)
	scores := parsed["scores"].(map[string]interface{})

	if scores["fluency"] != 87 {
		t.Errorf("fluency = %v (%T), want int 87", scores["fluency"], scores["fluency"])
	}
	if scores["confidence"] != 91 {
		t.Errorf("confidence = %v (%T), want int 91", scores["confidence"], scores["confidence"])
	}
	if scores["keyword_coverage_pct"] != nil {
		t.Errorf("null coverage should stay null, got %v", scores["keyword_coverage_pct"])
	}
	if scores["filler_rate_per_min"] != 3.5 {
		t.Errorf("filler_rate_per_min must not be coerced, got %v", scores["filler_rate_per_min"])
	}
	if scores["tone"] != "neutral" {
		t.Errorf("tone = %v, want neutral", scores["tone"])
	}
}

func TestNormalizeScoresNonNumericLeftAlone(t *testing.T) {
	parsed, _ := ExtractJSON(`{"scores": {"fluency": "excellent"}}`)
	NormalizeScores(parsed)
	scores := parsed["scores"].(map[string]interface{})
	if scores["fluency"] != "excellent" {
		t.Errorf("non-numeric fluency changed to %v", scores["fluency"])
	}
}

func TestNormalizeScoresMissingSections(t *testing.T) {
	// No scores object at all; must not panic or invent fields.
	parsed, _ := ExtractJSON(`{"transcript": "hello"}`)
	NormalizeScores(parsed)
	if _, present := parsed["scores"]; present {
		t.Error("scores section fabricated by normalization")
	}

	// Missing field stays absent.
	parsed, _ = ExtractJSON(`{"scores": {"confidence": 80}}`)
	NormalizeScores(parsed)
	scores := parsed["scores"].(map[string]interface{})
	if _, present := scores["fluency"]; present {
		t.Error("missing fluency fabricated by normalization")
	}
}

func TestBuildPromptKeywordClause(t *testing.T) {
	plain := BuildPrompt(nil)
	if plain != basePrompt {
		t.Error("prompt without keywords should be the base prompt")
	}

	withKeywords := BuildPrompt([]string{"pricing", "roadmap"})
	if withKeywords == plain {
		t.Error("keyword clause missing")
	}
	want := "Keywords to check for coverage: pricing, roadmap\n"
	if got := withKeywords[len(plain):]; got != want {
		t.Errorf("keyword clause = %q, want %q", got, want)
	}
}
