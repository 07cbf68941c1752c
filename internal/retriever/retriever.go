package retriever

import (
	"context"
	"sort"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/model"
	"ai-chat-go/pkg/embedding"
	"ai-chat-go/pkg/log"
)

// ChunkSource 提供检索所需的分块全量扫描。
type ChunkSource interface {
	FindAll() ([]model.DocumentChunk, error)
}

// EmbeddingCache 缓存查询向量，避免对相同查询重复调用 Embedder。
// 实现必须是尽力而为的：缓存故障不影响检索正确性。
type EmbeddingCache interface {
	Get(ctx context.Context, text string) (model.Vector, bool)
	Set(ctx context.Context, text string, vec model.Vector)
}

// Retriever 实现暴力余弦扫描检索。没有任何近似索引：
// 这是设计上明确记录的基线方案，在目标数据量下可接受。
type Retriever struct {
	embedder embedding.Client
	chunks   ChunkSource
	cache    EmbeddingCache // 可为 nil
}

// New 创建一个 Retriever；cache 传 nil 时禁用查询向量缓存。
func New(embedder embedding.Client, chunks ChunkSource, cache EmbeddingCache) *Retriever {
	return &Retriever{embedder: embedder, chunks: chunks, cache: cache}
}

// Retrieve 将查询向量化后对全部分块做余弦相似度扫描，返回得分降序的前 k 条。
// 并列得分按 (chunk_index, document_id) 升序决胜，保证重复调用结果可复现。
// 空语料返回空结果而不是错误；Embedder 失败按 EmbeddingFailure 上抛，由调用方决定是否降级。
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]model.RetrievedChunk, error) {
	if k <= 0 {
		return nil, apperr.Newf(apperr.KindValidation, "top-k 必须为正数, 当前为 %d", k)
	}

	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindEmbedding, "查询向量化失败", err)
	}

	all, err := r.chunks.FindAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	results := make([]model.RetrievedChunk, 0, len(all))
	for _, c := range all {
		results = append(results, model.RetrievedChunk{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			Score:      Cosine(vec, c.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].ChunkIndex != results[j].ChunkIndex {
			return results[i].ChunkIndex < results[j].ChunkIndex
		}
		return results[i].DocumentID < results[j].DocumentID
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// embedQuery 先查缓存，未命中时调用 Embedder 并回填。
func (r *Retriever) embedQuery(ctx context.Context, query string) (model.Vector, error) {
	if r.cache != nil {
		if vec, ok := r.cache.Get(ctx, query); ok {
			log.Debugf("[Retriever] 查询向量缓存命中, query_len: %d", len(query))
			return vec, nil
		}
	}
	vec, err := r.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Set(ctx, query, vec)
	}
	return vec, nil
}
