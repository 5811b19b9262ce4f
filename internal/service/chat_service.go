// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"learning-compass-go/internal/config"
	"learning-compass-go/internal/model"
	"learning-compass-go/internal/prompt"
	"learning-compass-go/pkg/jsonextract"
	"learning-compass-go/pkg/llm"
	"learning-compass-go/pkg/log"
	"learning-compass-go/pkg/sse"
)

// ChatService 定义了聊天编排的接口。
// 首条消息的流程是两次严格串行的上游调用：先做问题分析（结果或其
// 占位回退在第二次调用开始前完全就绪），再做导师回复生成。
type ChatService interface {
	// AnalyzeQuestion 对首条消息做结构化分析。解析失败不报错，
	// 代之以固定的占位记录，保证该步骤单独失败不会拖垮请求。
	AnalyzeQuestion(ctx context.Context, message string) model.QuestionAnalysis
	// Respond 发起一次非流式回复生成，返回完整的助手消息。
	Respond(ctx context.Context, message string, history []model.ChatMessage, images []model.ImageAttachment) (string, error)
	// StreamRespond 发起一次流式回复生成，把每个增量作为 content 信封
	// 写入 w，上游正常结束时写入 end 信封。返回错误时未写任何终止信封，
	// 由调用方决定错误信封的内容。
	StreamRespond(ctx context.Context, message string, history []model.ChatMessage, images []model.ImageAttachment, w *sse.Writer) error
}

type chatService struct {
	llmClient llm.Client
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(llmClient llm.Client) ChatService {
	return &chatService{llmClient: llmClient}
}

// AnalyzeQuestion 调用分析提示词并严格解析返回的 JSON。
func (s *chatService) AnalyzeQuestion(ctx context.Context, message string) model.QuestionAnalysis {
	text, err := s.llmClient.ChatMessages(ctx,
		[]llm.Message{llm.TextMessage(model.RoleUser, prompt.QuestionAnalysis+message)},
		llm.CallOptions{MaxTokens: config.Conf.LLM.AnalysisBudget()},
	)
	if err != nil {
		log.Errorf("问题分析调用失败: %v", err)
		return model.PlaceholderAnalysis()
	}

	var analysis model.QuestionAnalysis
	if err := jsonextract.Unmarshal(text, &analysis); err != nil {
		log.Warnf("问题分析 JSON 解析失败: %v, 原始输出: %s", err, text)
		return model.PlaceholderAnalysis()
	}
	if analysis.Quantities == nil {
		analysis.Quantities = []string{}
	}
	if analysis.Formulas == nil {
		analysis.Formulas = []model.Formula{}
	}
	return analysis
}

// Respond 组装消息列表并发起非流式生成调用。
func (s *chatService) Respond(ctx context.Context, message string, history []model.ChatMessage, images []model.ImageAttachment) (string, error) {
	return s.llmClient.ChatMessages(ctx, composeMessages(message, history, images), llm.CallOptions{
		System:    prompt.ChatTutor,
		MaxTokens: config.Conf.LLM.ChatBudget(),
	})
}

// StreamRespond 组装消息列表并发起流式生成调用，将增量中继为 SSE 信封。
func (s *chatService) StreamRespond(ctx context.Context, message string, history []model.ChatMessage, images []model.ImageAttachment, w *sse.Writer) error {
	err := s.llmClient.StreamChatMessages(ctx, composeMessages(message, history, images), llm.CallOptions{
		System:    prompt.ChatTutor,
		MaxTokens: config.Conf.LLM.ChatBudget(),
	}, func(delta string) error {
		return w.WriteContent(delta)
	})
	if err != nil {
		return err
	}
	return w.WriteEnd()
}

// composeMessages 由历史记录加当前用户回合构造上游消息列表。
// 历史由调用方随请求提供，服务端不保存任何会话状态。
func composeMessages(message string, history []model.ChatMessage, images []model.ImageAttachment) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		role := model.RoleAssistant
		if m.Role == model.RoleUser {
			role = model.RoleUser
		}
		msgs = append(msgs, llm.TextMessage(role, m.Content))
	}
	if len(images) > 0 {
		if message == "" {
			message = "What can you help me understand about this image?"
		}
		msgs = append(msgs, llm.UserMessageWithImages(message, images))
	} else {
		msgs = append(msgs, llm.TextMessage(model.RoleUser, message))
	}
	return msgs
}
