package model

// QuestionAnalysis 是首条消息分析调用产出的结构化结果，会话期间不可变。
type QuestionAnalysis struct {
	Title          string    `json:"title"`
	Quantities     []string  `json:"quantities"`
	Goal           *string   `json:"goal"`
	ProblemSummary string    `json:"problemSummary"`
	Formulas       []Formula `json:"formulas"`
}

// Formula 代表分析结果中的一组公式信息。
type Formula struct {
	Title     string     `json:"title"`
	Formula   string     `json:"formula"` // LaTeX 标记
	Variables []Variable `json:"variables"`
}

// Variable 代表公式中的一个变量。
type Variable struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FormulaCategory 代表侧边栏中可添加的一个公式类别。
type FormulaCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlaceholderAnalysis 返回分析调用解析失败时使用的固定占位记录。
func PlaceholderAnalysis() QuestionAnalysis {
	return QuestionAnalysis{
		Title:          "Problem Analysis",
		Quantities:     []string{},
		Goal:           nil,
		ProblemSummary: "Problem analysis unavailable",
		Formulas:       []Formula{},
	}
}
