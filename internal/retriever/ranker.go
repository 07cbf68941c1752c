// Package retriever 组合 Embedder、分块存储与余弦排序：
// 给定自由文本查询，对全部已存分块做暴力扫描并返回 top-k 相关结果。
package retriever

import "math"

// Cosine 计算两个向量的余弦相似度，结果在 [-1, 1] 之间。
// 任一向量范数为零或维度不一致时返回 0 而不是 NaN：
// 退化候选永远不会排在正常候选之前，但也不会被排除。
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	score := dot / math.Sqrt(normA*normB)
	// 浮点误差可能使结果略微越界
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}
