// Package llm provides a client for interacting with Large Language Models.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"learning-compass-go/internal/config"
	"learning-compass-go/internal/model"
)

// DeltaFunc 在流式调用期间接收每个增量文本分块。返回错误会中止流。
type DeltaFunc func(delta string) error

// CallOptions 控制单次调用的行为。
type CallOptions struct {
	System    string // 可选的 system 提示词
	MaxTokens int    // 本次调用的 token 预算
}

// Client 定义了 LLM 客户端的接口。
type Client interface {
	// ChatMessages 发起一次非流式调用，返回完整的回复文本。
	ChatMessages(ctx context.Context, messages []Message, opts CallOptions) (string, error)
	// StreamChatMessages 发起一次流式调用，把每个增量分块交给 onDelta。
	// 上游的分块按到达顺序逐个转发，不做合并或重排。
	StreamChatMessages(ctx context.Context, messages []Message, opts CallOptions, onDelta DeltaFunc) error
}

type openAIClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

// NewClient 根据配置创建一个 OpenAI 兼容接口的 LLM 客户端。
func NewClient(cfg config.LLMConfig) Client {
	httpClient := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		// 为上游调用设置上限，避免挂起的上游拖死整个请求
		httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &openAIClient{cfg: cfg, client: httpClient}
}

// Message 表示一条角色消息。Content 是纯文本字符串，或多模态的内容分段列表。
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// TextMessage 构造一条纯文本消息。
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// UserMessageWithImages 构造一条带内联图片的用户消息。
// 图片以 data URL 的形式随文本一起放进同一个用户回合。
func UserMessageWithImages(text string, images []model.ImageAttachment) Message {
	if len(images) == 0 {
		return TextMessage("user", text)
	}
	parts := make([]contentPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, contentPart{
			Type: "image_url",
			ImageURL: &imageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", img.Type, img.Data),
			},
		})
	}
	parts = append(parts, contentPart{Type: "text", Text: text})
	return Message{Role: "user", Content: parts}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream"`
	MaxTokens *int      `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ChatMessages 调用聊天接口并一次性返回完整回复。
func (c *openAIClient) ChatMessages(ctx context.Context, messages []Message, opts CallOptions) (string, error) {
	resp, err := c.do(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat api returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// StreamChatMessages 调用聊天接口并把流式分块逐个交给 onDelta。
func (c *openAIClient) StreamChatMessages(ctx context.Context, messages []Message, opts CallOptions, onDelta DeltaFunc) error {
	resp, err := c.do(ctx, messages, opts, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read from stream: %w", err)
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if strings.TrimSpace(data) == "[DONE]" {
			break
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			if err := onDelta(content); err != nil {
				return fmt.Errorf("failed to deliver stream delta: %w", err)
			}
		}
	}
	return nil
}

func (c *openAIClient) do(ctx context.Context, messages []Message, opts CallOptions, stream bool) (*http.Response, error) {
	reqBody := chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   stream,
	}
	if opts.System != "" {
		reqBody.Messages = append([]Message{TextMessage("system", opts.System)}, messages...)
	}
	if opts.MaxTokens > 0 {
		m := opts.MaxTokens
		reqBody.MaxTokens = &m
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat api: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("chat api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}
	return resp, nil
}
