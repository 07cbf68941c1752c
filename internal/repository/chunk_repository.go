package repository

import (
	"gorm.io/gorm"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/model"
)

// ChunkRepository 定义了文档分块的只读访问接口。
type ChunkRepository interface {
	// FindAll 返回全库的全部分块（含向量），供暴力检索遍历。
	FindAll() ([]model.DocumentChunk, error)
	FindByDocumentID(documentID string) ([]model.DocumentChunk, error)
}

type chunkRepository struct {
	db *gorm.DB
}

// NewChunkRepository 创建一个新的 ChunkRepository 实例。
func NewChunkRepository(db *gorm.DB) ChunkRepository {
	return &chunkRepository{db: db}
}

func (r *chunkRepository) FindAll() ([]model.DocumentChunk, error) {
	var chunks []model.DocumentChunk
	if err := r.db.Find(&chunks).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "查询全部分块失败", err)
	}
	return chunks, nil
}

func (r *chunkRepository) FindByDocumentID(documentID string) ([]model.DocumentChunk, error) {
	var chunks []model.DocumentChunk
	err := r.db.Where("document_id = ?", documentID).Order("chunk_index asc").Find(&chunks).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "查询文档分块失败", err)
	}
	return chunks, nil
}
