package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/model"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"未找到", apperr.New(apperr.KindNotFound, "会话不存在"), http.StatusNotFound, "not_found"},
		{"参数不合法", apperr.New(apperr.KindValidation, "消息不能为空"), http.StatusBadRequest, "validation_failure"},
		{"向量化失败", apperr.New(apperr.KindEmbedding, "embedding 服务不可用"), http.StatusBadGateway, "embedding_failure"},
		{"生成失败", apperr.New(apperr.KindGeneration, "模型超时"), http.StatusBadGateway, "generation_failure"},
		{"存储失败", apperr.New(apperr.KindPersistence, "事务提交失败"), http.StatusInternalServerError, "persistence_failure"},
		{"未分类错误", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)
			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantError, body.Error)
		})
	}
}

func TestWriteErrorKeepsDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, apperr.Wrap(apperr.KindGeneration, "生成回复失败", errors.New("dial tcp")))

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "生成回复失败", body.Detail)
}
