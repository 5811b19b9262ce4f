// Package model 包含了应用的数据模型定义。
package model

// 消息角色常量。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage 代表会话中的单条消息。会话历史由调用方随请求提供，服务端不保存。
type ChatMessage struct {
	Role    string `json:"role"` // "user" 或 "assistant"
	Content string `json:"content"`
}

// ImageAttachment 代表随用户消息内联提交的一张图片。
type ImageAttachment struct {
	Type string `json:"type"` // MIME 类型，如 "image/png"
	Data string `json:"data"` // base64 编码的图片数据
}
