// Package service 实现了文档与对话的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/chunker"
	"ai-chat-go/internal/config"
	"ai-chat-go/internal/model"
	"ai-chat-go/internal/repository"
	"ai-chat-go/pkg/embedding"
	"ai-chat-go/pkg/kafka"
	"ai-chat-go/pkg/log"
	"ai-chat-go/pkg/storage"
	"ai-chat-go/pkg/tasks"
	"ai-chat-go/pkg/tika"
)

// DocumentService 定义了文档入库与管理的业务接口。
type DocumentService interface {
	// Upload 解析上传内容并创建文档记录，随后同步或异步触发向量化处理。
	Upload(ctx context.Context, fileName string, data []byte, size int64) (*model.Document, error)
	// Process 对已入库的文档执行分块与向量化，整组替换旧分块。
	Process(ctx context.Context, documentID string) error
	List(offset, limit int) (*model.DocumentListResponse, error)
	Get(id string) (*model.Document, error)
	Chunks(id string) ([]model.DocumentChunk, error)
	Delete(ctx context.Context, id string) error
	Reprocess(ctx context.Context, id string) error
}

type documentService struct {
	docRepo   repository.DocumentRepository
	chunkRepo repository.ChunkRepository
	splitter  *chunker.Splitter
	embedder  embedding.Client
	tika      *tika.Client
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(
	docRepo repository.DocumentRepository,
	chunkRepo repository.ChunkRepository,
	splitter *chunker.Splitter,
	embedder embedding.Client,
	tikaClient *tika.Client,
) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		splitter:  splitter,
		embedder:  embedder,
		tika:      tikaClient,
	}
}

// extractText 按扩展名提取文本：纯文本直接解码，富文本交给 Tika。
func (s *documentService) extractText(ctx context.Context, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".txt", ".md":
		return string(data), nil
	case ".pdf", ".docx", ".doc":
		if s.tika == nil || !s.tika.Enabled() {
			return "", apperr.Newf(apperr.KindValidation, "未配置文本提取服务，无法解析 %s 文件", ext)
		}
		text, err := s.tika.ExtractText(ctx, bytes.NewReader(data), fileName)
		if err != nil {
			return "", apperr.Wrap(apperr.KindValidation, "文件文本提取失败", err)
		}
		return text, nil
	default:
		return "", apperr.Newf(apperr.KindValidation, "不支持的文件类型: %s", ext)
	}
}

func (s *documentService) Upload(ctx context.Context, fileName string, data []byte, size int64) (*model.Document, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, apperr.New(apperr.KindValidation, "文件名不能为空")
	}
	content, err := s.extractText(ctx, fileName, data)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:       uuid.NewString(),
		FileName: fileName,
		Content:  content,
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), "."),
		FileSize: size,
		Metadata: model.JSONMap{
			"original_filename": fileName,
			"upload_method":     "api",
		},
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}
	log.Infof("[DocumentService] 文档已入库: id=%s file=%s size=%d", doc.ID, doc.FileName, doc.FileSize)

	// 原始文件归档到对象存储，失败不阻塞入库流程
	if config.Conf.MinIO.Enabled {
		objectName := fmt.Sprintf("documents/%s/%s", doc.ID, fileName)
		if err := storage.PutObject(ctx, config.Conf.MinIO.BucketName, objectName,
			bytes.NewReader(data), size, "application/octet-stream"); err != nil {
			log.Warnf("[DocumentService] 原始文件归档失败: %v", err)
		}
	}

	if config.Conf.Kafka.Enabled {
		task := tasks.DocumentProcessingTask{DocumentID: doc.ID, FileName: doc.FileName}
		if err := kafka.ProduceDocumentTask(ctx, task); err != nil {
			log.Error("[DocumentService] 投递文档处理任务失败", err)
		}
	} else if err := s.Process(ctx, doc.ID); err != nil {
		// 文档已保存，处理失败可通过 reprocess 重试
		log.Error("[DocumentService] 文档处理失败", err)
	}

	refreshed, err := s.docRepo.FindByID(doc.ID)
	if err != nil {
		return doc, nil
	}
	return refreshed, nil
}

func (s *documentService) Process(ctx context.Context, documentID string) error {
	doc, err := s.docRepo.FindByID(documentID)
	if err != nil {
		return err
	}

	pieces := s.splitter.Split(doc.Content)
	if len(pieces) == 0 {
		log.Infof("[DocumentService] 文档 %s 内容为空，清空分块", documentID)
		return s.docRepo.ReplaceChunks(documentID, nil)
	}

	vectors, err := s.embedder.CreateEmbeddings(ctx, pieces)
	if err != nil {
		return apperr.Wrap(apperr.KindEmbedding, "文档分块向量化失败", err)
	}
	if len(vectors) != len(pieces) {
		return apperr.Newf(apperr.KindEmbedding,
			"向量数量与分块数量不一致: %d != %d", len(vectors), len(pieces))
	}

	chunks := make([]*model.DocumentChunk, 0, len(pieces))
	dims := 0
	for i, piece := range pieces {
		if len(vectors[i]) == 0 {
			return apperr.Newf(apperr.KindEmbedding, "第 %d 个分块返回了空向量", i)
		}
		if dims == 0 {
			dims = len(vectors[i])
		} else if len(vectors[i]) != dims {
			return apperr.Newf(apperr.KindEmbedding,
				"向量维度不一致: %d != %d", len(vectors[i]), dims)
		}
		chunks = append(chunks, &model.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			ChunkIndex: i,
			Content:    piece,
			Embedding:  model.Vector(vectors[i]),
			Metadata: model.JSONMap{
				"chunk_index": i,
				"chunk_size":  utf8.RuneCountInString(piece),
			},
		})
	}

	if err := s.docRepo.ReplaceChunks(documentID, chunks); err != nil {
		return err
	}
	log.Infof("[DocumentService] 文档处理完成: id=%s chunks=%d dims=%d", documentID, len(chunks), dims)
	return nil
}

func (s *documentService) List(offset, limit int) (*model.DocumentListResponse, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	docs, total, err := s.docRepo.FindAll(offset, limit)
	if err != nil {
		return nil, err
	}
	return &model.DocumentListResponse{Documents: docs, Total: total}, nil
}

func (s *documentService) Get(id string) (*model.Document, error) {
	return s.docRepo.FindByID(id)
}

func (s *documentService) Chunks(id string) ([]model.DocumentChunk, error) {
	if _, err := s.docRepo.FindByID(id); err != nil {
		return nil, err
	}
	return s.chunkRepo.FindByDocumentID(id)
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.docRepo.Delete(id); err != nil {
		return err
	}
	if config.Conf.MinIO.Enabled {
		objectName := fmt.Sprintf("documents/%s/%s", id, doc.FileName)
		if err := storage.RemoveObject(ctx, config.Conf.MinIO.BucketName, objectName); err != nil {
			log.Warnf("[DocumentService] 删除归档文件失败: %v", err)
		}
	}
	log.Infof("[DocumentService] 文档已删除: id=%s", id)
	return nil
}

func (s *documentService) Reprocess(ctx context.Context, id string) error {
	return s.Process(ctx, id)
}
