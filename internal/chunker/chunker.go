// Package chunker 将长文本切分为带重叠的检索分块。
package chunker

import (
	"strings"
	"unicode/utf8"

	"ai-chat-go/internal/apperr"
)

// 分隔符按优先级从粗到细：段落、换行、句末标点、空格。
// 全部用尽后退化为逐字符硬切分。
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", "。", "！", "？", " "}

// Splitter 是确定性的纯函数切分器：相同输入与参数总是产生相同切分，
// 这是文档幂等重处理的前提。长度按 rune 计数。
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter 校验参数并创建切分器。
// chunkSize 必须为正，overlap 必须满足 0 <= overlap < chunkSize。
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, apperr.Newf(apperr.KindValidation, "chunk_size 必须为正数, 当前为 %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, apperr.Newf(apperr.KindValidation, "overlap 必须满足 0 <= overlap < chunk_size, 当前为 %d", overlap)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize 返回配置的分块长度。
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap 返回配置的相邻分块重叠长度。
func (s *Splitter) Overlap() int { return s.overlap }

// Split 将文本切分为若干长度不超过 chunkSize 的分块，
// 相邻分块之间保留约 overlap 个字符的重叠以保持边界上下文。
// 空输入返回 nil；不超过 chunkSize 的输入返回单个分块。
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}
	return s.merge(s.splitRecursive(text, 0))
}

// splitRecursive 按分隔符优先级递归切分，保证每个片段不超过 chunkSize。
// 切分保留分隔符在片段尾部，因此所有片段顺序拼接即还原原文。
func (s *Splitter) splitRecursive(text string, sepIdx int) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}
	if sepIdx >= len(separators) {
		// 无分隔符可用：硬切分为单个字符，由 merge 组装滑动窗口
		runes := []rune(text)
		pieces := make([]string, len(runes))
		for i, r := range runes {
			pieces[i] = string(r)
		}
		return pieces
	}

	parts := splitKeepSep(text, separators[sepIdx])
	if len(parts) == 1 {
		return s.splitRecursive(text, sepIdx+1)
	}
	var pieces []string
	for _, p := range parts {
		if utf8.RuneCountInString(p) <= s.chunkSize {
			pieces = append(pieces, p)
		} else {
			pieces = append(pieces, s.splitRecursive(p, sepIdx+1)...)
		}
	}
	return pieces
}

// merge 将细粒度片段贪心合并为不超过 chunkSize 的分块，
// 每次产出分块后保留不超过 overlap 个字符的尾部片段作为下一块的开头。
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, p := range pieces {
		l := utf8.RuneCountInString(p)
		if total+l > s.chunkSize && total > 0 {
			chunks = append(chunks, strings.Join(window, ""))
			for len(window) > 0 && (total > s.overlap || total+l > s.chunkSize) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		total += l
	}
	if total > 0 {
		chunks = append(chunks, strings.Join(window, ""))
	}
	return chunks
}

// splitKeepSep 按分隔符切分并把分隔符保留在各片段的尾部。
func splitKeepSep(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
