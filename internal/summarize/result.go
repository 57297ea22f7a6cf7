// Package summarize turns raw OCR text into the canonical study-card
// result, delegating to an LLM backend when one is configured and falling
// back to a deterministic local summarizer on any failure.
package summarize

// Result is the canonical structure consumed by the card renderer. Both
// fields are always non-nil; learn points are never empty.
type Result struct {
	LearnPoints []string    `json:"learn_points"`
	Confusions  []Confusion `json:"confusions"`
}

// Confusion is one commonly-confused concept pair.
type Confusion struct {
	Left    string `json:"left"`
	Right   string `json:"right"`
	Explain string `json:"explain"`
	Example string `json:"example"`
}

const (
	maxLearnPoints = 6
	learnPointMax  = 40
	learnPointKeep = 37
	confusionMax   = 120
	confusionKeep  = 116
	ellipsis       = "..."
)

// Fixed placeholder strings. These guarantee the renderer always has
// content, and they surface which stage degraded.
const (
	emptyInputPoint  = "无法从图片中提取出明确的学习点，请拍清晰图片或补充文字。"
	unparsedPoint    = "无法解析模型输出，请重试或补充文本。"
	noPointsFound    = "无法从文本中提取出明确的学习点，请拍清晰图片或补充文字。"
	fallbackNoPoints = "请明确题目或拍清晰一点的图片，以便提取学习点。"
)

var placeholderConfusion = Confusion{
	Left:    "导数",
	Right:   "微分",
	Explain: "导数=瞬时变化率；微分=用于近似的增量。",
	Example: "速度(导数) vs 小路程增量(微分)",
}

// truncateRunes caps s at max runes, cutting to keep runes plus an
// ellipsis when over. Counts runes, not bytes: entries are mostly CJK.
func truncateRunes(s string, max, keep int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:keep]) + ellipsis
}
