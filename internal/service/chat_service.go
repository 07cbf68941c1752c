package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/config"
	"ai-chat-go/internal/model"
	"ai-chat-go/internal/repository"
	"ai-chat-go/pkg/llm"
	"ai-chat-go/pkg/log"
)

// ContextRetriever 是对话服务依赖的检索能力的最小接口。
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]model.RetrievedChunk, error)
}

// ChatService 定义了对话编排的业务接口。
type ChatService interface {
	// SendMessage 执行一轮完整对话：落库用户消息、检索、生成、落库回复。
	SendMessage(ctx context.Context, req *model.ChatMessageRequest) (*model.ChatResponseDTO, error)
	CreateSession(name string) (*model.ChatSession, error)
	GetSession(id string) (*model.ChatSession, error)
	ListSessions(limit int) ([]model.ChatSession, error)
	GetMessages(sessionID string, limit int) ([]model.ChatMessage, error)
	DeleteSession(id string) error
}

type chatService struct {
	convRepo  repository.ConversationRepository
	retriever ContextRetriever
	llm       llm.Client
	topK      int
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	convRepo repository.ConversationRepository,
	retriever ContextRetriever,
	llmClient llm.Client,
	topK int,
) ChatService {
	if topK <= 0 {
		topK = 3
	}
	return &chatService{
		convRepo:  convRepo,
		retriever: retriever,
		llm:       llmClient,
		topK:      topK,
	}
}

func (s *chatService) SendMessage(ctx context.Context, req *model.ChatMessageRequest) (*model.ChatResponseDTO, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperr.New(apperr.KindValidation, "消息内容不能为空")
	}

	// 解析或新建会话
	var session *model.ChatSession
	newSession := false
	if req.SessionID != "" {
		found, err := s.convRepo.FindSessionByID(req.SessionID)
		if err != nil {
			return nil, err
		}
		session = found
	} else {
		now := time.Now()
		session = &model.ChatSession{
			ID:           uuid.NewString(),
			SessionName:  "New Chat",
			CreatedAt:    now,
			LastActivity: now,
			IsActive:     true,
		}
		newSession = true
	}

	// 事务一：用户消息先落库，即使后续生成失败也保留
	userMsg := &model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      model.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now(),
		Metadata:  model.JSONMap{"type": "user_message"},
	}
	if err := s.convRepo.SaveUserTurn(session, userMsg, newSession); err != nil {
		return nil, err
	}

	// 检索失败只降级为无上下文回答，不中断对话
	retrieved, err := s.retriever.Retrieve(ctx, req.Message, s.topK)
	if err != nil {
		log.Warnf("[ChatService] 上下文检索失败，降级为无引用回答: %v", err)
		retrieved = nil
	}

	answer, err := s.generate(ctx, req.Message, retrieved)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindGeneration, "生成回复失败", err)
	}

	sources := make([]model.SourceDTO, 0, len(retrieved))
	for _, c := range retrieved {
		sources = append(sources, model.SourceDTO{
			DocumentID: c.DocumentID,
			ChunkID:    c.ChunkID,
			Similarity: c.Score,
		})
	}

	// 事务二：AI 回复落库并刷新会话活跃时间
	aiMsg := &model.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      model.RoleAssistant,
		Content:   answer,
		Timestamp: time.Now(),
		Metadata: model.JSONMap{
			"type":          "ai_response",
			"sources_count": len(sources),
		},
	}
	if err := s.convRepo.SaveAssistantTurn(aiMsg, aiMsg.Timestamp); err != nil {
		return nil, err
	}

	resp := &model.ChatResponseDTO{
		Message:   *aiMsg,
		SessionID: session.ID,
	}
	if len(sources) > 0 {
		resp.Sources = sources
	}
	return resp, nil
}

// generate 组装系统提示词并调用大模型。检索结果为空且未配置回答规则时不发系统消息。
func (s *chatService) generate(ctx context.Context, query string, retrieved []model.RetrievedChunk) (string, error) {
	prompt := config.Conf.LLM.Prompt
	var sysParts []string
	if prompt.Rules != "" {
		sysParts = append(sysParts, prompt.Rules)
	}
	if len(retrieved) > 0 {
		pieces := make([]string, 0, len(retrieved))
		for _, c := range retrieved {
			pieces = append(pieces, c.Content)
		}
		sysParts = append(sysParts, prompt.RefStart+"\n"+strings.Join(pieces, "\n\n")+"\n"+prompt.RefEnd)
	} else if prompt.NoResultText != "" {
		sysParts = append(sysParts, prompt.NoResultText)
	}

	var messages []llm.Message
	if len(sysParts) > 0 {
		messages = append(messages, llm.Message{
			Role:    "system",
			Content: strings.Join(sysParts, "\n\n"),
		})
	}
	messages = append(messages, llm.Message{Role: model.RoleUser, Content: query})

	return s.llm.ChatCompletion(ctx, messages, nil)
}

func (s *chatService) CreateSession(name string) (*model.ChatSession, error) {
	if strings.TrimSpace(name) == "" {
		name = "New Chat"
	}
	now := time.Now()
	session := &model.ChatSession{
		ID:           uuid.NewString(),
		SessionName:  name,
		CreatedAt:    now,
		LastActivity: now,
		IsActive:     true,
	}
	if err := s.convRepo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *chatService) GetSession(id string) (*model.ChatSession, error) {
	return s.convRepo.FindSessionByID(id)
}

func (s *chatService) ListSessions(limit int) ([]model.ChatSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.convRepo.ListSessions(limit)
}

func (s *chatService) GetMessages(sessionID string, limit int) ([]model.ChatMessage, error) {
	if _, err := s.convRepo.FindSessionByID(sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.convRepo.FindMessages(sessionID, limit)
}

func (s *chatService) DeleteSession(id string) error {
	return s.convRepo.DeleteSession(id)
}
