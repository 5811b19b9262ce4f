// Package sse 实现了中继服务与客户端之间的 Server-Sent Events 线协议：
// 每个事件是一行 "data: <JSON>\n\n"，JSON 为带 type 判别字段的信封。
package sse

import (
	"learning-compass-go/internal/model"
)

// 信封类型判别值。end 与 error 互斥，且各自最多出现一次并终止流。
const (
	TypeAnalysis = "analysis"
	TypeContent  = "content"
	TypeEnd      = "end"
	TypeError    = "error"
)

// DataPrefix 是协议行的固定前缀，不带该前缀的行不属于协议事件。
const DataPrefix = "data: "

// Envelope 是单个 SSE 事件的 JSON 信封。Type 决定哪些字段有效：
// content 使用 Text，error 使用 Message，analysis 使用 Analysis。
type Envelope struct {
	Type     string                  `json:"type"`
	Text     string                  `json:"text,omitempty"`
	Message  string                  `json:"message,omitempty"`
	Analysis *model.QuestionAnalysis `json:"analysis,omitempty"`
}

// Terminal 报告该信封是否终止流。
func (e Envelope) Terminal() bool {
	return e.Type == TypeEnd || e.Type == TypeError
}
