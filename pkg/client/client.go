// Package client 是中继服务的 Go 客户端 SDK：
// 负责网络请求、SSE 流的读取编排，以及会话级的 UI 状态机（Session）。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"learning-compass-go/internal/model"
	"learning-compass-go/pkg/sse"
)

// 面向用户的连接失败文案，与其它失败区分开。
const (
	ErrMsgUnreachable      = "Unable to connect to server. Please check if the backend is running."
	errMsgUnexpected       = "An unexpected error occurred."
	errMsgUnexpectedStream = "An unexpected error occurred while processing the stream."
	errMsgStreamTruncated  = "Stream ended unexpectedly."
)

// APIError 携带面向用户的失败信息和（若有）HTTP 状态码。
type APIError struct {
	Message string
	Status  int
}

func (e *APIError) Error() string { return e.Message }

// Client 访问中继服务的 /api 接口。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建一个指向 baseURL（不含 /api 前缀）的客户端。
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, httpClient: &http.Client{}}
}

// SendInitialMessage 以非流式方式发送首条消息。
func (c *Client) SendInitialMessage(ctx context.Context, message string) (model.InitialChatResponse, error) {
	var resp model.InitialChatResponse
	err := c.postJSON(ctx, "/chat/initial", model.InitialChatRequest{Message: message}, &resp)
	return resp, err
}

// SendMessage 以非流式方式发送后续消息。
func (c *Client) SendMessage(ctx context.Context, message string, conversation []model.ChatMessage) (model.ChatResponse, error) {
	var resp model.ChatResponse
	err := c.postJSON(ctx, "/chat", model.ChatRequest{Message: message, Conversation: conversation}, &resp)
	return resp, err
}

// SendInitialMessageStream 以流式方式发送首条消息。
// 分析信封先于任何内容增量到达，cb.OnAnalysis 恰好被调用一次。
func (c *Client) SendInitialMessageStream(ctx context.Context, message string, cb sse.Callbacks) {
	c.stream(ctx, "/chat/initial", model.InitialChatRequest{Message: message, Stream: true}, cb)
}

// SendMessageStream 以流式方式发送后续消息，历史随请求携带。
func (c *Client) SendMessageStream(ctx context.Context, message string, conversation []model.ChatMessage, cb sse.Callbacks) {
	c.stream(ctx, "/chat", model.ChatRequest{Message: message, Conversation: conversation, Stream: true}, cb)
}

// ExplainConcept 取得概念的解释与关联。
func (c *Client) ExplainConcept(ctx context.Context, concept, problemContext string) (model.CombinedConceptResponse, error) {
	var resp model.CombinedConceptResponse
	err := c.postJSON(ctx, "/concept", model.ConceptRequest{Concept: concept, ProblemContext: problemContext}, &resp)
	return resp, err
}

// FormulaCategories 把资源名列表映射为公式类别。
func (c *Client) FormulaCategories(ctx context.Context, resources []string, problemContext string) ([]model.FormulaCategory, error) {
	var resp model.FormulaCategoriesResponse
	err := c.postJSON(ctx, "/formulas/categories", model.FormulaCategoriesRequest{Resources: resources, ProblemContext: problemContext}, &resp)
	return resp.Categories, err
}

// GenerateFormula 为一个类别生成公式信息。
func (c *Client) GenerateFormula(ctx context.Context, categoryID, problemContext string) (model.FormulaResponse, error) {
	var resp model.FormulaResponse
	err := c.postJSON(ctx, "/formulas", model.FormulaRequest{CategoryID: categoryID, ProblemContext: problemContext}, &resp)
	return resp, err
}

// Health 调用健康检查接口。
func (c *Client) Health(ctx context.Context) (model.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return model.HealthResponse{}, &APIError{Message: errMsgUnexpected}
	}
	var resp model.HealthResponse
	err = c.doJSON(req, &resp)
	return resp, err
}

// postJSON 发送一个 JSON 请求并解析 JSON 响应。连接失败映射为
// 专门的"无法连接"文案；非 2xx 响应解析服务端的 error 字段。
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	req, err := c.newPost(ctx, path, body)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) newPost(ctx context.Context, path string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{Message: errMsgUnexpected}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api"+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Message: errMsgUnexpected}
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: ErrMsgUnreachable}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Message: errMsgUnexpected, Status: resp.StatusCode}
	}
	return nil
}

func apiErrorFromResponse(resp *http.Response) *APIError {
	var body model.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	message := body.Error
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	}
	return &APIError{Message: message, Status: resp.StatusCode}
}

// stream 驱动一次流式请求：发起调用、校验响应、读取字节块、
// 经行缓冲重组后逐行路由，直到路由器给出停止信号或流自然结束。
// cb.OnEnd 与 cb.OnError 合计恰好被调用一次。
func (c *Client) stream(ctx context.Context, path string, body any, cb sse.Callbacks) {
	terminated := false
	wrapped := sse.Callbacks{
		OnContent:  cb.OnContent,
		OnAnalysis: cb.OnAnalysis,
		OnEnd: func() {
			terminated = true
			if cb.OnEnd != nil {
				cb.OnEnd()
			}
		},
		OnError: func(message string) {
			terminated = true
			if cb.OnError != nil {
				cb.OnError(message)
			}
		},
	}
	fail := func(message string) {
		if !terminated {
			wrapped.OnError(message)
		}
	}

	req, err := c.newPost(ctx, path, body)
	if err != nil {
		fail(errMsgUnexpected)
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fail(ErrMsgUnreachable)
		return
	}
	defer resp.Body.Close()

	// 读取响应体之前先确认请求成功：失败响应是 JSON 错误体，不是事件流
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fail(apiErrorFromResponse(resp).Message)
		return
	}

	var buffer sse.LineBuffer
	chunk := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			for _, line := range buffer.Feed(chunk[:n]) {
				if sse.HandleLine(line, wrapped) {
					// 终止信封之后同块内剩余的行一律不再处理
					return
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			fail(errMsgUnexpectedStream)
			return
		}
	}

	// 流在没有终止信封的情况下结束：按失败处理，保证回调恰好一次
	fail(errMsgStreamTruncated)
}
