// Package repository 提供了数据访问层的实现。
// 多步写操作全部收敛在仓库层的单个事务方法中：要么全部落库，要么全部回滚。
package repository

import (
	"errors"

	"gorm.io/gorm"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/model"
)

// DocumentRepository 定义了文档及其分块的持久化操作接口。
type DocumentRepository interface {
	Create(doc *model.Document) error
	FindByID(id string) (*model.Document, error)
	FindAll(offset, limit int) ([]model.Document, int64, error)
	// ReplaceChunks 以原子方式用新分块集合整组替换文档的旧分块并置 processed=true。
	ReplaceChunks(documentID string, chunks []*model.DocumentChunk) error
	// Delete 级联删除文档及其全部分块；文档不存在时返回 NotFound。
	Delete(id string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create 在数据库中创建一条新的文档记录。
func (r *documentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return apperr.Wrap(apperr.KindPersistence, "创建文档记录失败", err)
	}
	return nil
}

// FindByID 根据 ID 查找文档。
func (r *documentRepository) FindByID(id string) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "文档 %s 不存在", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "查询文档失败", err)
	}
	return &doc, nil
}

// FindAll 按上传时间倒序分页查询文档，并返回总数。
func (r *documentRepository) FindAll(offset, limit int) ([]model.Document, int64, error) {
	var total int64
	if err := r.db.Model(&model.Document{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindPersistence, "统计文档总数失败", err)
	}
	var docs []model.Document
	err := r.db.Order("upload_date desc").Offset(offset).Limit(limit).Find(&docs).Error
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindPersistence, "查询文档列表失败", err)
	}
	return docs, total, nil
}

// ReplaceChunks 在一个事务中删除文档的全部旧分块、批量写入新分块并置 processed=true。
// 任一步失败整体回滚，后续读取绝不会看到新旧混杂的分块集合。
func (r *documentRepository) ReplaceChunks(documentID string, chunks []*model.DocumentChunk) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var doc model.Document
		if err := tx.Where("id = ?", documentID).First(&doc).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", documentID).Delete(&model.DocumentChunk{}).Error; err != nil {
			return err
		}
		if len(chunks) > 0 {
			if err := tx.CreateInBatches(chunks, 100).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Document{}).Where("id = ?", documentID).Update("processed", true).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Newf(apperr.KindNotFound, "文档 %s 不存在", documentID)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "替换文档分块失败", err)
	}
	return nil
}

// Delete 在一个事务中先删除文档的全部分块，再删除文档本身。
func (r *documentRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var doc model.Document
		if err := tx.Where("id = ?", id).First(&doc).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentChunk{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Document{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Newf(apperr.KindNotFound, "文档 %s 不存在", id)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "删除文档失败", err)
	}
	return nil
}
