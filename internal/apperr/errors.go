// Package apperr 定义了应用统一的结构化错误分类。
// 错误的类别与细节分离，便于调用方按类别决定降级或上抛。
package apperr

import (
	"errors"
	"fmt"
)

// Kind 标识错误的类别。
type Kind string

const (
	// KindNotFound 表示目标实体（会话/文档等）不存在。
	KindNotFound Kind = "not_found"
	// KindEmbedding 表示 Embedding 协作方不可达或调用出错。
	KindEmbedding Kind = "embedding_failure"
	// KindGeneration 表示生成模型协作方不可达或调用出错。
	KindGeneration Kind = "generation_failure"
	// KindPersistence 表示存储事务无法提交。
	KindPersistence Kind = "persistence_failure"
	// KindValidation 表示调用参数不合法，例如非正的 chunk_size 或 top-k。
	KindValidation Kind = "validation_failure"
)

// Error 携带错误类别、细节说明与可选的底层原因。
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap 返回底层错误，支持 errors.Is/errors.As 链式匹配。
func (e *Error) Unwrap() error { return e.Err }

// New 创建一个不带底层原因的分类错误。
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf 创建一个带格式化细节的分类错误。
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并赋予类别；err 已经是同类分类错误时直接透传，避免重复包装。
func Wrap(kind Kind, detail string, err error) *Error {
	var e *Error
	if errors.As(err, &e) && e.Kind == kind {
		return e
	}
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf 提取错误的类别；非分类错误返回空字符串。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误（或其包装链中的任一错误）是否属于指定类别。
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
