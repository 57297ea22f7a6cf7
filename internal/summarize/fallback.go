package summarize

import "strings"

// confusablePairs maps well-known confusable concept pairs to canned
// explanations. Slice, not map: detection order must be deterministic.
var confusablePairs = []Confusion{
	{
		Left:    "导数",
		Right:   "微分",
		Explain: "导数表示瞬时变化率；微分常用于表示小变化的近似。",
		Example: "速度(导数) vs 小路程增量(微分)",
	},
	{
		Left:    "偏导数",
		Right:   "全导数",
		Explain: "偏导数针对单个变量的变化；全导数考虑多个变量的联合变化。",
		Example: "例如：温度关于时间和位置的全导数 vs 仅对时间的偏导数",
	},
	{
		Left:    "行列式",
		Right:   "矩阵",
		Explain: "矩阵是数据结构，行列式是矩阵的一个数值特征。",
		Example: "矩阵像变换，行列式像该变换放大缩小的程度",
	},
	{
		Left:    "概率",
		Right:   "频率",
		Explain: "概率是模型的主观/理论值；频率是实验观察到的比率。",
		Example: "抛硬币理论概率 0.5 vs 实际抛 10 次出现 7 次的频率 0.7",
	},
}

var fallbackConfusion = Confusion{
	Left:    "导数",
	Right:   "微分",
	Explain: "导数=瞬时变化率，微分=用于近似的增量。",
	Example: "速度(导数) vs 小路程增量(微分)",
}

// fallbackSummarize is the deterministic offline summarizer used whenever
// no backend is configured or every remote step fails. Identical input
// always produces identical output.
func fallbackSummarize(text string) Result {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	points := make([]string, 0, maxLearnPoints)
	limit := len(lines)
	if limit > maxLearnPoints {
		limit = maxLearnPoints
	}
	for _, l := range lines[:limit] {
		s := truncateRunes(l, learnPointMax, learnPointKeep)
		if !contains(points, s) {
			points = append(points, s)
		}
	}
	if len(points) == 0 {
		points = []string{fallbackNoPoints}
	}

	confs := make([]Confusion, 0)
	for _, pair := range confusablePairs {
		if strings.Contains(text, pair.Left) || strings.Contains(text, pair.Right) {
			confs = append(confs, pair)
		}
	}
	if len(confs) == 0 {
		confs = []Confusion{fallbackConfusion}
	}

	return Result{LearnPoints: points, Confusions: confs}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
