package summarize

import (
	"encoding/json"
	"strings"
)

const systemInstruction = "你是一个教学助理。输入是学生拍摄的题目或课堂笔记经 OCR 提取的文本。你的任务：\n" +
	"1) 提取最多 6 条 `learn_points`（中文每条不超过 15 个字，或等价简短英文）；\n" +
	"2) 提取 `confusions` 列表，项为 {left,right,explain,example}，其中 explain 不超过两行；\n" +
	"严格要求：只返回一个有效的 JSON 对象，只包含顶层键 `learn_points` 和 `confusions`。输出语言：中文。"

type fewShotExample struct {
	Input  string
	Output Result
}

// fewShotExamples are the illustrative input/expected-output pairs
// embedded in every prompt.
func fewShotExamples() []fewShotExample {
	return []fewShotExample{
		{
			Input: "定义：导数是函数在某点的瞬时变化率，几何上表示切线斜率。",
			Output: Result{
				LearnPoints: []string{"导数的几何意义：切线斜率"},
				Confusions: []Confusion{{
					Left:    "导数",
					Right:   "微分",
					Explain: "导数表示瞬时变化率；微分用于近似增量。",
					Example: "速度≈导数，路程小段≈微分",
				}},
			},
		},
		{
			Input: "偏导数与全导数：偏导数仅对单个变量求导，全导数考虑所有变量的联合作用。",
			Output: Result{
				LearnPoints: []string{"偏导数与全导数的含义"},
				Confusions: []Confusion{{
					Left:    "偏导数",
					Right:   "全导数",
					Explain: "偏导数是对单变量求导；全导数包含所有变量的影响。",
					Example: "温度关于时间和位置的全导数 vs 仅对时间的偏导数",
				}},
			},
		},
		{
			Input: "行列式与矩阵：矩阵是线性代数的基本对象，行列式是矩阵的一个标量特征。",
			Output: Result{
				LearnPoints: []string{"矩阵 vs 行列式"},
				Confusions: []Confusion{{
					Left:    "矩阵",
					Right:   "行列式",
					Explain: "矩阵是数据或线性变换；行列式是描述变换体积缩放的数值。",
					Example: "矩阵像变换，行列式像缩放因子",
				}},
			},
		},
	}
}

// BuildPrompt assembles the system instruction and the few-shot user
// prompt ending with the OCR text to analyze.
func BuildPrompt(text string) (system, user string) {
	var b strings.Builder
	b.WriteString("请仅以 JSON 返回分析结果；以下是几个示例（输入 → 输出）：\n")
	for _, ex := range fewShotExamples() {
		out, _ := json.Marshal(ex.Output)
		b.WriteString("输入：")
		b.WriteString(ex.Input)
		b.WriteString("\n输出：")
		b.Write(out)
		b.WriteString("\n---\n")
	}
	b.WriteString("\n现在请分析下面文本并仅返回 JSON：\n")
	b.WriteString(text)
	return systemInstruction, b.String()
}
