package model

import "time"

// 消息角色取值。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession 对应 chat_sessions 表。
// last_activity 单调不减，在每轮消息交互后更新。
type ChatSession struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	SessionName  string    `gorm:"type:varchar(255);not null" json:"sessionName"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	LastActivity time.Time `gorm:"not null;index" json:"lastActivity"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage 对应 chat_messages 表，归属且仅归属一个会话。
// Seq 为数据库自增序号，与 Timestamp 一起保证按真实会话顺序读取：
// 同一轮次内用户消息先于助手回复写入。
type ChatMessage struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Seq       uint64    `gorm:"autoIncrement;uniqueIndex" json:"-"`
	SessionID string    `gorm:"type:char(36);not null;index" json:"sessionId"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Metadata  JSONMap   `gorm:"type:text" json:"metadata,omitempty"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChatMessage) TableName() string {
	return "chat_messages"
}
