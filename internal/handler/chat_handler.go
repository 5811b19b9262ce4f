// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-compass-go/internal/model"
	"learning-compass-go/internal/service"
	"learning-compass-go/pkg/log"
	"learning-compass-go/pkg/sse"
)

// 流式路径上对外暴露的统一失败文案，细节只进日志。
const errProcessMessage = "Failed to process message"

// ChatHandler 负责处理聊天中继请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Initial 处理会话的首条消息：先做同步的问题分析，再做回复生成。
// 流式请求先下发 analysis 信封，再中继生成调用的增量。
func (h *ChatHandler) Initial(c *gin.Context) {
	var req model.InitialChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Message is required"})
		return
	}
	log.Infof("[ChatHandler] 收到初始聊天请求, stream: %v", req.Stream)

	ctx := c.Request.Context()

	// 第一次调用：问题分析。解析失败在服务层降级为占位记录，这一步不会让请求失败。
	analysis := h.chatService.AnalyzeQuestion(ctx, req.Message)

	if !req.Stream {
		message, err := h.chatService.Respond(ctx, req.Message, nil, nil)
		if err != nil {
			log.Errorf("[ChatHandler] 初始回复生成失败: %v", err)
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: errProcessMessage, Details: err.Error()})
			return
		}
		c.JSON(http.StatusOK, model.InitialChatResponse{Message: message, Analysis: analysis, Success: true})
		return
	}

	// 流式分支：响应头发出后就无法再降级为状态码，
	// 任何失败都必须转成终止的 error 信封，绝不半途弃连接。
	w := sse.NewWriter(c.Writer)
	if err := w.WriteAnalysis(analysis); err != nil {
		log.Errorf("[ChatHandler] 写入分析信封失败: %v", err)
		return
	}
	if err := h.chatService.StreamRespond(ctx, req.Message, nil, nil, w); err != nil {
		log.Errorf("[ChatHandler] 流式回复生成失败: %v", err)
		_ = w.WriteError(errProcessMessage)
	}
}

// Chat 处理后续回合：历史由请求携带，支持随文本内联图片。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Message == "" && len(req.Images) == 0) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Message or image is required"})
		return
	}
	log.Infof("[ChatHandler] 收到聊天请求, 历史 %d 条, 图片 %d 张, stream: %v",
		len(req.Conversation), len(req.Images), req.Stream)

	ctx := c.Request.Context()

	if !req.Stream {
		message, err := h.chatService.Respond(ctx, req.Message, req.Conversation, req.Images)
		if err != nil {
			log.Errorf("[ChatHandler] 回复生成失败: %v", err)
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: errProcessMessage, Details: err.Error()})
			return
		}
		c.JSON(http.StatusOK, model.ChatResponse{Message: message, Success: true})
		return
	}

	w := sse.NewWriter(c.Writer)
	if err := h.chatService.StreamRespond(ctx, req.Message, req.Conversation, req.Images, w); err != nil {
		log.Errorf("[ChatHandler] 流式回复生成失败: %v", err)
		_ = w.WriteError(errProcessMessage)
	}
}
