// Package pipeline 实现了异步文档处理任务的消费逻辑。
package pipeline

import (
	"context"

	"ai-chat-go/internal/service"
	"ai-chat-go/pkg/log"
	"ai-chat-go/pkg/tasks"
)

// Processor 消费文档处理任务，对文档执行分块与向量化。
type Processor struct {
	docService service.DocumentService
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(docService service.DocumentService) *Processor {
	return &Processor{docService: docService}
}

// Process 实现 kafka.TaskProcessor 接口。
func (p *Processor) Process(ctx context.Context, task tasks.DocumentProcessingTask) error {
	log.Infof("[Processor] 开始处理文档任务: id=%s file=%s", task.DocumentID, task.FileName)
	if err := p.docService.Process(ctx, task.DocumentID); err != nil {
		log.Error("[Processor] 文档任务处理失败", err)
		return err
	}
	log.Infof("[Processor] 文档任务处理完成: id=%s", task.DocumentID)
	return nil
}
