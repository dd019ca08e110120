package analyze

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractJSON digs a JSON object out of free-form model output. It strips a
// fenced code block if the whole payload is one, tries a direct parse, then
// falls back to the substring between the first '{' and the last '}'. The
// boolean is false when no object could be recovered.
func ExtractJSON(text string) (map[string]interface{}, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}

	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") {
		lines := strings.Split(s, "\n")
		if len(lines) >= 2 {
			s = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	if obj, ok := parseObject(s); ok {
		return obj, true
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		if obj, ok := parseObject(s[start : end+1]); ok {
			return obj, true
		}
	}
	return nil, false
}

func parseObject(s string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// coercedScoreFields are cast to integers when the model returns them as
// floats or numeric strings. filler_rate_per_min is deliberately absent:
// it is kept exactly as supplied, decimals and all.
var coercedScoreFields = []string{"fluency", "confidence", "keyword_coverage_pct"}

// NormalizeScores coerces known numeric score fields to truncated integers in
// place. Missing fields stay absent and non-numeric values are left untouched
// rather than turned into errors.
func NormalizeScores(parsed map[string]interface{}) {
	scores, ok := parsed["scores"].(map[string]interface{})
	if !ok {
		return
	}
	for _, key := range coercedScoreFields {
		val, present := scores[key]
		if !present || val == nil {
			continue
		}
		if n, ok := toInt(val); ok {
			scores[key] = n
		}
	}
}

func toInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}
