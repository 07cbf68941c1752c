// Package handler 实现了 HTTP 接口层。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/model"
	"ai-chat-go/pkg/log"
)

// writeError 将业务错误按错误类别映射为 HTTP 状态码并输出统一错误体。
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = "internal_error"
	}
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindEmbedding, apperr.KindGeneration:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		log.Error("[Handler] 请求处理失败", err)
	}
	detail := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		detail = appErr.Detail
	}
	c.JSON(status, model.ErrorResponse{Error: string(kind), Detail: detail})
}
