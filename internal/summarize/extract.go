package summarize

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	reFencedJSON = regexp.MustCompile("```json\\s*(\\{[\\s\\S]*?\\})\\s*```")
	reFenced     = regexp.MustCompile("```\\s*(\\{[\\s\\S]*?\\})\\s*```")
	reInline     = regexp.MustCompile("`(\\{[\\s\\S]*?\\})`")
)

// ExtractJSON locates a single JSON object inside arbitrary model output.
// It first scans for the first balanced-brace span, then falls back to
// fenced and backtick-wrapped blocks. It never fails hard: malformed input
// yields ok=false.
func ExtractJSON(s string) (map[string]any, bool) {
	if obj, ok := extractBalanced(s); ok {
		return obj, true
	}
	return extractFenced(s)
}

// extractBalanced finds the first '{' and scans forward counting brace
// depth; the span ending where depth returns to zero is the candidate.
// Interior substrings are not retried on parse failure.
func extractBalanced(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return nil, false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(s[start:i+1]), &obj); err != nil {
					return nil, false
				}
				return obj, true
			}
		}
	}
	return nil, false
}

// extractFenced tries, in order: a ```json fence, an untagged fence, then
// an inline backtick span. Only the first match found is parsed.
func extractFenced(s string) (map[string]any, bool) {
	for _, re := range []*regexp.Regexp{reFencedJSON, reFenced, reInline} {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(m[1]), &obj); err != nil {
			return nil, false
		}
		return obj, true
	}
	return nil, false
}
