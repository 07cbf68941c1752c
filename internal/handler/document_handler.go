package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/service"
)

// DocumentHandler 处理文档上传与管理相关的 HTTP 请求。
type DocumentHandler struct {
	docService service.DocumentService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(docService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// Upload 处理 POST /api/v1/documents/upload 的 multipart 文件上传。
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindValidation, "缺少上传文件", err))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindValidation, "无法读取上传文件", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, apperr.Wrap(apperr.KindValidation, "读取上传内容失败", err))
		return
	}

	doc, err := h.docService.Upload(c.Request.Context(), fileHeader.Filename, data, fileHeader.Size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// List 处理 GET /api/v1/documents，支持 skip/limit 分页参数。
func (h *DocumentHandler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.docService.List(skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get 处理 GET /api/v1/documents/:id。
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.docService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Chunks 处理 GET /api/v1/documents/:id/chunks。
func (h *DocumentHandler) Chunks(c *gin.Context) {
	chunks, err := h.docService.Chunks(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": chunks, "total": len(chunks)})
}

// Delete 处理 DELETE /api/v1/documents/:id。
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.docService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "文档已删除"})
}

// Reprocess 处理 POST /api/v1/documents/:id/reprocess，重新分块并向量化。
func (h *DocumentHandler) Reprocess(c *gin.Context) {
	if err := h.docService.Reprocess(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "文档已重新处理"})
}
