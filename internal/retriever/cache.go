package retriever

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ai-chat-go/internal/model"
	"ai-chat-go/pkg/log"
)

// RedisEmbeddingCache 用 Redis 缓存查询向量。
// 键按 (模型名, 查询文本) 哈希，换模型后旧缓存自然失效。
type RedisEmbeddingCache struct {
	client *redis.Client
	model  string
	ttl    time.Duration
}

// NewRedisEmbeddingCache 创建一个 Redis 查询向量缓存。
func NewRedisEmbeddingCache(client *redis.Client, modelName string, ttl time.Duration) *RedisEmbeddingCache {
	return &RedisEmbeddingCache{client: client, model: modelName, ttl: ttl}
}

func (c *RedisEmbeddingCache) key(text string) string {
	sum := sha1.Sum([]byte(c.model + "\x00" + text))
	return fmt.Sprintf("embedding:%s:%x", c.model, sum)
}

// Get 读取缓存的查询向量；未命中或任何 Redis 异常都返回 false。
func (c *RedisEmbeddingCache) Get(ctx context.Context, text string) (model.Vector, bool) {
	data, err := c.client.Get(ctx, c.key(text)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warnf("[EmbeddingCache] 读取缓存失败: %v", err)
		return nil, false
	}
	var vec model.Vector
	if err := json.Unmarshal(data, &vec); err != nil {
		log.Warnf("[EmbeddingCache] 缓存内容解析失败: %v", err)
		return nil, false
	}
	return vec, true
}

// Set 回填查询向量，失败只记日志。
func (c *RedisEmbeddingCache) Set(ctx context.Context, text string, vec model.Vector) {
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(text), data, c.ttl).Err(); err != nil {
		log.Warnf("[EmbeddingCache] 写入缓存失败: %v", err)
	}
}
