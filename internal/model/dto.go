package model

// InitialChatRequest 是 /api/chat/initial 的请求体。
type InitialChatRequest struct {
	Message string `json:"message"`
	Stream  bool   `json:"stream"`
}

// ChatRequest 是 /api/chat 的请求体。
type ChatRequest struct {
	Message      string            `json:"message"`
	Conversation []ChatMessage     `json:"conversation"`
	Images       []ImageAttachment `json:"images"`
	Stream       bool              `json:"stream"`
}

// ChatResponse 是非流式聊天的响应体。
type ChatResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// InitialChatResponse 是非流式首条消息的响应体。
type InitialChatResponse struct {
	Message  string           `json:"message"`
	Analysis QuestionAnalysis `json:"analysis"`
	Success  bool             `json:"success"`
}

// ConceptRequest 是概念相关接口的请求体。
type ConceptRequest struct {
	Concept        string `json:"concept"`
	ProblemContext string `json:"problemContext"`
}

// CombinedConceptResponse 是 /api/concept 的响应体。
type CombinedConceptResponse struct {
	Explanation string `json:"explanation"`
	Relation    string `json:"relation"`
	Success     bool   `json:"success"`
}

// ConceptExplanationResponse 是 /api/concept/explain 的响应体。
type ConceptExplanationResponse struct {
	Explanation string `json:"explanation"`
	Success     bool   `json:"success"`
}

// ConceptRelationResponse 是 /api/concept/relate 的响应体。
type ConceptRelationResponse struct {
	Relation string `json:"relation"`
	Success  bool   `json:"success"`
}

// FormulaCategoriesRequest 是 /api/formulas/categories 的请求体。
type FormulaCategoriesRequest struct {
	Resources      []string `json:"resources"`
	ProblemContext string   `json:"problemContext"`
}

// FormulaCategoriesResponse 是 /api/formulas/categories 的响应体。
type FormulaCategoriesResponse struct {
	Categories []FormulaCategory `json:"categories"`
	Success    bool              `json:"success"`
}

// FormulaRequest 是 /api/formulas 的请求体。
type FormulaRequest struct {
	CategoryID     string `json:"categoryId"`
	ProblemContext string `json:"problemContext"`
}

// FormulaResponse 是 /api/formulas 的响应体。
type FormulaResponse struct {
	Title     string     `json:"title"`
	Formula   string     `json:"formula"`
	Variables []Variable `json:"variables"`
	Success   bool       `json:"success"`
}

// ErrorResponse 是非流式错误的统一响应体。
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse 是健康检查的响应体。
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
