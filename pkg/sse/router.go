package sse

import (
	"encoding/json"
	"strings"

	"learning-compass-go/internal/model"
)

// Callbacks 按信封类型分发事件。OnAnalysis 可以为 nil（非首条消息流没有分析事件）。
type Callbacks struct {
	OnContent  func(text string)
	OnAnalysis func(analysis model.QuestionAnalysis)
	OnEnd      func()
	OnError    func(message string)
}

// HandleLine 解析一行并分发到对应回调。返回值表示流是否应当停止，
// 仅在 end 和 error 信封时为 true。
//
// 不以 "data: " 开头的行不是协议事件，直接忽略；JSON 解析失败的行
// 同样静默忽略（防御上游的注释行或截断残片）；未知的 type 忽略，
// 以便协议向前演进。
func HandleLine(line string, cb Callbacks) bool {
	if !strings.HasPrefix(line, DataPrefix) {
		return false
	}

	var env Envelope
	if err := json.Unmarshal([]byte(line[len(DataPrefix):]), &env); err != nil {
		return false
	}

	switch env.Type {
	case TypeAnalysis:
		if cb.OnAnalysis != nil && env.Analysis != nil {
			cb.OnAnalysis(*env.Analysis)
		}
	case TypeContent:
		if cb.OnContent != nil {
			cb.OnContent(env.Text)
		}
	case TypeEnd:
		if cb.OnEnd != nil {
			cb.OnEnd()
		}
		return true
	case TypeError:
		if cb.OnError != nil {
			cb.OnError(env.Message)
		}
		return true
	}
	return false
}
