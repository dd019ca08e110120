package analyze

import "strings"

// basePrompt is the fixed instruction the model must follow. The schema and
// the filler-word definition are part of the service's output contract; keep
// changes in sync with NormalizeScores and the frontend.
const basePrompt = `You are an assistant that transcribes an audio clip and rates the speaker with objective numeric scores.
Output MUST be valid JSON and nothing else. Follow this JSON schema exactly:
{
  "transcript": "<string>",
  "scores": {
    "overall": "<0-100>",
    "fluency": "<0-100>",
    "confidence": "<0-100> (INTEGER, required)",
    "filler": "<0-100>",
    "filler_rate_per_min": "<float> (required, decimals allowed)",
    "tone": "<neutral|positive|negative|anxious|angry|happy>",
    "keyword_coverage_pct": "<0-100|null>"
  },
  "counts": {
    "total_words": "<int>",
    "total_fillers": "<int>",
    "long_pauses": "<int>"
  },
  "suggestions": ["<short suggestion strings>"]
}
REQUIREMENTS:
- "confidence" MUST be an integer between 0 and 100. Do not return null.
- "filler_rate_per_min" MUST be a numeric value (decimals allowed) representing estimated filler words per minute. Do not return null.
- Count filler words as occurrences of: "um", "uh", "like" (when used as a filler), "you know", "I mean". Do NOT count words used with clear semantic meaning.
- "total_fillers" should be the integer count of detected filler occurrences in the transcript.
- If you cannot determine a metric, estimate conservatively rather than returning null for confidence/filler_rate_per_min.
Provide integers for 0-100 scores; use one decimal place for filler_rate_per_min when appropriate.
`

// strictJSONInstruction is prepended on the single retry after an
// unparseable response.
const strictJSONInstruction = "ONLY OUTPUT A SINGLE JSON OBJECT following the schema. Do not add ANY explanatory text."

// BuildPrompt returns the instruction prompt, with a keyword-coverage clause
// appended only when keywords were supplied.
func BuildPrompt(keywords []string) string {
	if len(keywords) == 0 {
		return basePrompt
	}
	return basePrompt + "Keywords to check for coverage: " + strings.Join(keywords, ", ") + "\n"
}
