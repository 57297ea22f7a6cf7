package summarize

import (
	"fmt"
	"strings"
)

// Normalize validates and clamps a parsed object into the canonical
// result. It never fails: any input other than a key-value object yields
// the placeholder result.
func Normalize(v any) Result {
	m, ok := v.(map[string]any)
	if !ok {
		return Result{
			LearnPoints: []string{unparsedPoint},
			Confusions:  []Confusion{},
		}
	}

	points := make([]string, 0, maxLearnPoints)
	if lp, ok := m["learn_points"].([]any); ok {
		// Only the first 6 entries are considered; empties among them
		// are dropped rather than replaced from further down the list.
		limit := len(lp)
		if limit > maxLearnPoints {
			limit = maxLearnPoints
		}
		for _, item := range lp[:limit] {
			s := strings.TrimSpace(stringify(item))
			if s == "" {
				continue
			}
			points = append(points, truncateRunes(s, learnPointMax, learnPointKeep))
		}
	}
	if len(points) == 0 {
		points = []string{noPointsFound}
	}

	confs := make([]Confusion, 0)
	if cs, ok := m["confusions"].([]any); ok {
		for _, item := range cs {
			cm, ok := item.(map[string]any)
			if !ok {
				continue
			}
			c := Confusion{
				Left:    strings.TrimSpace(stringify(cm["left"])),
				Right:   strings.TrimSpace(stringify(cm["right"])),
				Explain: strings.TrimSpace(stringify(cm["explain"])),
				Example: strings.TrimSpace(stringify(cm["example"])),
			}
			c.Explain = truncateRunes(c.Explain, confusionMax, confusionKeep)
			c.Example = truncateRunes(c.Example, confusionMax, confusionKeep)
			if c.Left != "" || c.Right != "" {
				confs = append(confs, c)
			}
		}
	}
	if len(confs) == 0 {
		confs = []Confusion{placeholderConfusion}
	}

	return Result{LearnPoints: points, Confusions: confs}
}

// stringify renders arbitrary JSON values as display text. Missing fields
// (nil) become empty strings rather than "<nil>".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
