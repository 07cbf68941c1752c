package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/chunker"
	"ai-chat-go/internal/model"
)

// fakeDocumentRepo 是 DocumentRepository 的内存实现，
// 分块整组替换的语义与真实仓库保持一致。
type fakeDocumentRepo struct {
	docs   map[string]*model.Document
	chunks map[string][]*model.DocumentChunk

	replaceCalls int
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:   map[string]*model.Document{},
		chunks: map[string][]*model.DocumentChunk{},
	}
}

func (f *fakeDocumentRepo) Create(doc *model.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepo) FindByID(id string) (*model.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "文档 %s 不存在", id)
	}
	return d, nil
}

func (f *fakeDocumentRepo) FindAll(offset, limit int) ([]model.Document, int64, error) {
	var out []model.Document
	for _, d := range f.docs {
		out = append(out, *d)
	}
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeDocumentRepo) ReplaceChunks(documentID string, chunks []*model.DocumentChunk) error {
	f.replaceCalls++
	d, ok := f.docs[documentID]
	if !ok {
		return apperr.Newf(apperr.KindNotFound, "文档 %s 不存在", documentID)
	}
	f.chunks[documentID] = chunks
	d.Processed = true
	return nil
}

func (f *fakeDocumentRepo) Delete(id string) error {
	if _, ok := f.docs[id]; !ok {
		return apperr.Newf(apperr.KindNotFound, "文档 %s 不存在", id)
	}
	delete(f.docs, id)
	delete(f.chunks, id)
	return nil
}

type fakeChunkRepo struct {
	docRepo *fakeDocumentRepo
}

func (f *fakeChunkRepo) FindAll() ([]model.DocumentChunk, error) {
	var out []model.DocumentChunk
	for _, cs := range f.docRepo.chunks {
		for _, c := range cs {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) FindByDocumentID(documentID string) ([]model.DocumentChunk, error) {
	var out []model.DocumentChunk
	for _, c := range f.docRepo.chunks[documentID] {
		out = append(out, *c)
	}
	return out, nil
}

// fakeBatchEmbedder 为每段文本返回固定维度的向量，或统一返回错误。
type fakeBatchEmbedder struct {
	dims      int
	err       error
	batchSize int
	truncated bool // 为 true 时少返回一个向量，模拟协作方行为异常
}

func (f *fakeBatchEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec := make([]float32, f.dims)
	vec[0] = float32(len(text))
	return vec, nil
}

func (f *fakeBatchEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batchSize = len(texts)
	n := len(texts)
	if f.truncated && n > 0 {
		n--
	}
	out := make([][]float32, 0, n)
	for i := 0; i < n; i++ {
		v, _ := f.CreateEmbedding(ctx, texts[i])
		out = append(out, v)
	}
	return out, nil
}

func newTestDocumentService(t *testing.T, repo *fakeDocumentRepo, embedder *fakeBatchEmbedder) DocumentService {
	t.Helper()
	splitter, err := chunker.NewSplitter(100, 20)
	require.NoError(t, err)
	return NewDocumentService(repo, &fakeChunkRepo{docRepo: repo}, splitter, embedder, nil)
}

func seedDocument(repo *fakeDocumentRepo, id, content string) *model.Document {
	doc := &model.Document{ID: id, FileName: id + ".txt", Content: content, FileType: "txt"}
	repo.docs[id] = doc
	return doc
}

func TestProcessSplitsAndEmbeds(t *testing.T) {
	repo := newFakeDocumentRepo()
	embedder := &fakeBatchEmbedder{dims: 4}
	svc := newTestDocumentService(t, repo, embedder)

	content := strings.Repeat("知识库内容。", 60) // 远超单块上限
	seedDocument(repo, "doc-1", content)

	require.NoError(t, svc.Process(context.Background(), "doc-1"))

	chunks := repo.chunks["doc-1"]
	require.NotEmpty(t, chunks)
	assert.Greater(t, len(chunks), 1)
	// 单批次向量化全部分块
	assert.Equal(t, len(chunks), embedder.batchSize)
	for i, c := range chunks {
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, i, c.ChunkIndex)
		assert.NotEmpty(t, c.ID)
		assert.Len(t, []float32(c.Embedding), 4)
		assert.Equal(t, i, c.Metadata["chunk_index"])
	}
	assert.True(t, repo.docs["doc-1"].Processed)
}

func TestProcessIsIdempotent(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestDocumentService(t, repo, &fakeBatchEmbedder{dims: 4})
	seedDocument(repo, "doc-1", strings.Repeat("内容片段。", 80))

	require.NoError(t, svc.Process(context.Background(), "doc-1"))
	first := len(repo.chunks["doc-1"])

	// 重新处理整组替换，不产生重复分块
	require.NoError(t, svc.Reprocess(context.Background(), "doc-1"))
	assert.Equal(t, first, len(repo.chunks["doc-1"]))
	assert.Equal(t, 2, repo.replaceCalls)
}

func TestProcessEmptyContentClearsChunks(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestDocumentService(t, repo, &fakeBatchEmbedder{dims: 4})
	seedDocument(repo, "doc-1", "")

	require.NoError(t, svc.Process(context.Background(), "doc-1"))
	assert.Empty(t, repo.chunks["doc-1"])
	assert.True(t, repo.docs["doc-1"].Processed)
}

func TestProcessUnknownDocument(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestDocumentService(t, repo, &fakeBatchEmbedder{dims: 4})
	err := svc.Process(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestProcessEmbedderFailureLeavesChunksUntouched(t *testing.T) {
	repo := newFakeDocumentRepo()
	embedder := &fakeBatchEmbedder{dims: 4}
	svc := newTestDocumentService(t, repo, embedder)
	seedDocument(repo, "doc-1", strings.Repeat("内容片段。", 80))
	require.NoError(t, svc.Process(context.Background(), "doc-1"))
	existing := len(repo.chunks["doc-1"])

	embedder.err = errors.New("rate limited")
	err := svc.Process(context.Background(), "doc-1")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindEmbedding))
	// 失败的处理不触碰已有分块
	assert.Equal(t, existing, len(repo.chunks["doc-1"]))
}

func TestProcessVectorCountMismatch(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestDocumentService(t, repo, &fakeBatchEmbedder{dims: 4, truncated: true})
	seedDocument(repo, "doc-1", strings.Repeat("内容片段。", 80))

	err := svc.Process(context.Background(), "doc-1")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindEmbedding))
	assert.Empty(t, repo.chunks["doc-1"])
}

func TestUploadTextFileProcessesSynchronously(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestDocumentService(t, repo, &fakeBatchEmbedder{dims: 4})

	data := []byte(strings.Repeat("上传的内容。", 60))
	doc, err := svc.Upload(context.Background(), "notes.txt", data, int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.FileName)
	assert.Equal(t, "txt", doc.FileType)
	assert.True(t, doc.Processed)
	assert.NotEmpty(t, repo.chunks[doc.ID])
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc := newTestDocumentService(t, newFakeDocumentRepo(), &fakeBatchEmbedder{dims: 4})
	_, err := svc.Upload(context.Background(), "image.png", []byte{1, 2, 3}, 3)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUploadRichTextWithoutExtractor(t *testing.T) {
	svc := newTestDocumentService(t, newFakeDocumentRepo(), &fakeBatchEmbedder{dims: 4})
	// 未配置 Tika 时 PDF 上传被拒绝
	_, err := svc.Upload(context.Background(), "report.pdf", []byte("%PDF-1.4"), 8)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDeleteDocument(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestDocumentService(t, repo, &fakeBatchEmbedder{dims: 4})
	seedDocument(repo, "doc-1", "内容")
	require.NoError(t, svc.Process(context.Background(), "doc-1"))

	require.NoError(t, svc.Delete(context.Background(), "doc-1"))
	assert.Empty(t, repo.docs)
	assert.Empty(t, repo.chunks)

	// 再次删除返回 NotFound
	err := svc.Delete(context.Background(), "doc-1")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestChunksUnknownDocument(t *testing.T) {
	svc := newTestDocumentService(t, newFakeDocumentRepo(), &fakeBatchEmbedder{dims: 4})
	_, err := svc.Chunks("missing")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListNormalizesPagination(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc := newTestDocumentService(t, repo, &fakeBatchEmbedder{dims: 4})
	seedDocument(repo, "doc-1", "内容")
	seedDocument(repo, "doc-2", "内容")

	resp, err := svc.List(-5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Documents, 2)
}
