// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// DocumentProcessingTask 表示一次文档切分与向量化处理任务。
type DocumentProcessingTask struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
}
