package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/model"
)

// ConversationRepository 定义了会话与消息的持久化操作接口。
// 一轮对话的两次落库（用户消息、AI 回复）分别对应一个事务方法。
type ConversationRepository interface {
	CreateSession(session *model.ChatSession) error
	FindSessionByID(id string) (*model.ChatSession, error)
	// ListSessions 按最近活跃时间倒序返回活跃会话。
	ListSessions(limit int) ([]model.ChatSession, error)
	// FindMessages 按时间正序返回会话内的消息。
	FindMessages(sessionID string, limit int) ([]model.ChatMessage, error)
	// SaveUserTurn 在一个事务中落库用户消息；newSession 为 true 时同事务内先建会话。
	SaveUserTurn(session *model.ChatSession, msg *model.ChatMessage, newSession bool) error
	// SaveAssistantTurn 在一个事务中落库 AI 回复并刷新会话的 last_activity。
	SaveAssistantTurn(msg *model.ChatMessage, activity time.Time) error
	// DeleteSession 级联删除会话及其全部消息；会话不存在时返回 NotFound。
	DeleteSession(id string) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) CreateSession(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return apperr.Wrap(apperr.KindPersistence, "创建会话失败", err)
	}
	return nil
}

func (r *conversationRepository) FindSessionByID(id string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "会话 %s 不存在", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "查询会话失败", err)
	}
	return &session, nil
}

func (r *conversationRepository) ListSessions(limit int) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	err := r.db.Where("is_active = ?", true).Order("last_activity desc").Limit(limit).Find(&sessions).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "查询会话列表失败", err)
	}
	return sessions, nil
}

func (r *conversationRepository) FindMessages(sessionID string, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	// timestamp 精度不足以区分同一轮内的两条消息，用自增 seq 兜底保证插入序。
	err := r.db.Where("session_id = ?", sessionID).
		Order("timestamp asc").Order("seq asc").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "查询会话消息失败", err)
	}
	return messages, nil
}

func (r *conversationRepository) SaveUserTurn(session *model.ChatSession, msg *model.ChatMessage, newSession bool) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if newSession {
			if err := tx.Create(session).Error; err != nil {
				return err
			}
		}
		return tx.Create(msg).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "保存用户消息失败", err)
	}
	return nil
}

func (r *conversationRepository) SaveAssistantTurn(msg *model.ChatMessage, activity time.Time) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.ChatSession{}).Where("id = ?", msg.SessionID).
			Update("last_activity", activity).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "保存 AI 回复失败", err)
	}
	return nil
}

func (r *conversationRepository) DeleteSession(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var session model.ChatSession
		if err := tx.Where("id = ?", id).First(&session).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.ChatSession{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Newf(apperr.KindNotFound, "会话 %s 不存在", id)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "删除会话失败", err)
	}
	return nil
}
