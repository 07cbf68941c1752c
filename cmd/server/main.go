// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ai-chat-go/internal/chunker"
	"ai-chat-go/internal/config"
	"ai-chat-go/internal/handler"
	"ai-chat-go/internal/middleware"
	"ai-chat-go/internal/model"
	"ai-chat-go/internal/pipeline"
	"ai-chat-go/internal/repository"
	"ai-chat-go/internal/retriever"
	"ai-chat-go/internal/service"
	"ai-chat-go/pkg/database"
	"ai-chat-go/pkg/embedding"
	"ai-chat-go/pkg/kafka"
	"ai-chat-go/pkg/llm"
	"ai-chat-go/pkg/log"
	"ai-chat-go/pkg/storage"
	"ai-chat-go/pkg/tika"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := database.DB.AutoMigrate(
		&model.Document{},
		&model.DocumentChunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
	); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	if cfg.MinIO.Enabled {
		storage.InitMinIO(cfg.MinIO)
	}
	if cfg.Kafka.Enabled {
		kafka.InitProducer(cfg.Kafka)
	}

	// 4. 初始化 Repository
	docRepo := repository.NewDocumentRepository(database.DB)
	chunkRepo := repository.NewChunkRepository(database.DB)
	convRepo := repository.NewConversationRepository(database.DB)

	// 5. 初始化 Service (依赖注入)
	splitter, err := chunker.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatalf("分块器配置不合法: %v", err)
	}
	tikaClient := tika.NewClient(cfg.Tika)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	embeddingCache := retriever.NewRedisEmbeddingCache(
		database.RDB, cfg.Embedding.Model, time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour)
	contextRetriever := retriever.New(embeddingClient, chunkRepo, embeddingCache)
	documentService := service.NewDocumentService(docRepo, chunkRepo, splitter, embeddingClient, tikaClient)
	chatService := service.NewChatService(convRepo, contextRetriever, llmClient, cfg.RAG.TopK)

	// 6. 启动后台 Kafka 消费者
	if cfg.Kafka.Enabled {
		processor := pipeline.NewProcessor(documentService)
		go kafka.StartConsumer(cfg.Kafka, processor)
	}

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "ai-chat-go", "status": "running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// 8. 注册路由
	docHandler := handler.NewDocumentHandler(documentService)
	chatHandler := handler.NewChatHandler(chatService)
	apiV1 := r.Group("/api/v1")
	{
		documents := apiV1.Group("/documents")
		{
			documents.POST("/upload", docHandler.Upload)
			documents.GET("", docHandler.List)
			documents.GET("/:id", docHandler.Get)
			documents.GET("/:id/chunks", docHandler.Chunks)
			documents.POST("/:id/reprocess", docHandler.Reprocess)
			documents.DELETE("/:id", docHandler.Delete)
		}

		chat := apiV1.Group("/chat")
		{
			chat.POST("/send", chatHandler.Send)
			chat.POST("/sessions", chatHandler.CreateSession)
			chat.GET("/sessions", chatHandler.ListSessions)
			chat.GET("/sessions/:id", chatHandler.GetSession)
			chat.GET("/sessions/:id/messages", chatHandler.GetMessages)
			chat.DELETE("/sessions/:id", chatHandler.DeleteSession)
		}
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
