// Package model 包含了应用的数据模型定义。
package model

import "time"

// Document 对应 documents 表，记录上传文档的原始文本与处理状态。
// processed 仅在分块向量化成功提交后翻转为 true。
type Document struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"filename"`
	Content    string    `gorm:"type:longtext;not null" json:"-"`
	FileType   string    `gorm:"type:varchar(16);not null" json:"fileType"`
	FileSize   int64     `gorm:"not null" json:"fileSize"`
	UploadDate time.Time `gorm:"autoCreateTime" json:"uploadDate"`
	Processed  bool      `gorm:"not null;default:false" json:"processed"`
	Metadata   JSONMap   `gorm:"type:text" json:"metadata,omitempty"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Document) TableName() string {
	return "documents"
}

// DocumentChunk 对应 document_chunks 表。
// 分块归属且仅归属一个文档：删除文档时级联删除其全部分块；
// 重新处理时整组替换（先删后插），绝不部分更新。
type DocumentChunk struct {
	ID         string `gorm:"type:char(36);primaryKey" json:"id"`
	DocumentID string `gorm:"type:char(36);not null;index" json:"documentId"`
	ChunkIndex int    `gorm:"not null" json:"chunkIndex"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Embedding  Vector  `gorm:"type:longtext" json:"-"`
	Metadata   JSONMap `gorm:"type:text" json:"metadata,omitempty"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DocumentChunk) TableName() string {
	return "document_chunks"
}
