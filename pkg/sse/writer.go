package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"learning-compass-go/internal/model"
)

// Writer 将信封写入一个流式 HTTP 响应，每个事件写入后立即 flush。
// 写入任何终止信封（end 或 error）之后的写入都会被忽略，
// 保证每个流恰好以一个终止事件收尾。
type Writer struct {
	w          http.ResponseWriter
	flusher    http.Flusher
	terminated bool
}

// NewWriter 在响应上设置 SSE 头并返回一个 Writer。
// 必须在写入任何响应体之前调用。
func NewWriter(w http.ResponseWriter) *Writer {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Cache-Control")

	flusher, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: flusher}
}

// WriteAnalysis 写入一个 analysis 信封。只会在首条消息流的开头出现。
func (sw *Writer) WriteAnalysis(analysis model.QuestionAnalysis) error {
	return sw.write(Envelope{Type: TypeAnalysis, Analysis: &analysis})
}

// WriteContent 写入一个 content 增量信封。
func (sw *Writer) WriteContent(text string) error {
	return sw.write(Envelope{Type: TypeContent, Text: text})
}

// WriteEnd 写入终止流的 end 信封。
func (sw *Writer) WriteEnd() error {
	return sw.write(Envelope{Type: TypeEnd})
}

// WriteError 写入终止流的 error 信封。流一旦开始就无法再降级为状态码，
// 因此流式路径上的任何失败都通过它通知客户端。
func (sw *Writer) WriteError(message string) error {
	return sw.write(Envelope{Type: TypeError, Message: message})
}

func (sw *Writer) write(env Envelope) error {
	if sw.terminated {
		return nil
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal sse envelope: %w", err)
	}
	if _, err := fmt.Fprintf(sw.w, "%s%s\n\n", DataPrefix, payload); err != nil {
		return fmt.Errorf("failed to write sse envelope: %w", err)
	}
	if sw.flusher != nil {
		sw.flusher.Flush()
	}
	if env.Terminal() {
		sw.terminated = true
	}
	return nil
}
