package model

// ChatMessageRequest 是发送消息接口的请求体。
// SessionID 为空时会创建一个新会话。
type ChatMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// SourceDTO 描述一次回答引用的分块来源及其相似度得分。
type SourceDTO struct {
	DocumentID string  `json:"documentId"`
	ChunkID    string  `json:"chunkId"`
	Similarity float64 `json:"similarity"`
}

// ChatResponseDTO 是一次对话轮次的响应负载。
// 未使用任何检索上下文时 Sources 缺省。
type ChatResponseDTO struct {
	Message   ChatMessage `json:"message"`
	SessionID string      `json:"sessionId"`
	Sources   []SourceDTO `json:"sources,omitempty"`
}

// RetrievedChunk 是检索器返回的一条带得分的候选分块。
type RetrievedChunk struct {
	ChunkID    string
	DocumentID string
	ChunkIndex int
	Content    string
	Score      float64
}

// DocumentListResponse 是文档列表接口的响应体。
type DocumentListResponse struct {
	Documents []Document `json:"documents"`
	Total     int64      `json:"total"`
}

// ErrorResponse 是统一的错误响应体：error 为类别，detail 为细节。
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
