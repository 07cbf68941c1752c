package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotFound, "会话不存在")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindValidation))

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := Newf(KindEmbedding, "向量化失败: %s", "timeout")
	outer := fmt.Errorf("检索失败: %w", inner)
	assert.True(t, IsKind(outer, KindEmbedding))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(KindGeneration, "生成回复失败", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "generation_failure")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapPassesThroughSameKind(t *testing.T) {
	inner := New(KindEmbedding, "原始错误")
	wrapped := Wrap(KindEmbedding, "外层说明", inner)
	// 同类错误不重复包装，保留最初的细节
	require.Same(t, inner, wrapped)
	assert.Equal(t, "原始错误", wrapped.Detail)
}

func TestWrapReclassifiesDifferentKind(t *testing.T) {
	inner := New(KindPersistence, "事务提交失败")
	wrapped := Wrap(KindGeneration, "回复落库失败", inner)
	assert.Equal(t, KindGeneration, wrapped.Kind)
	assert.True(t, errors.Is(wrapped, inner))
}
