package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 实体快照的保存期限。快照只作为拉取失败时的兜底，不需要永久保存。
const entityTTL = 7 * 24 * time.Hour

// entityKey 根据实体名生成Redis键
func entityKey(name string) string {
	return fmt.Sprintf("entity:%s", name)
}

// SaveEntity 保存实体快照（JSON序列化）
func SaveEntity(ctx context.Context, name string, entity interface{}) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity %s: %w", name, err)
	}

	if err := RedisClient.Set(ctx, entityKey(name), data, entityTTL).Err(); err != nil {
		return fmt.Errorf("failed to save entity %s: %w", name, err)
	}

	return nil
}

// LoadEntity 读取实体快照。快照不存在时返回(false, nil)。
func LoadEntity(ctx context.Context, name string, out interface{}) (bool, error) {
	if RedisClient == nil {
		return false, fmt.Errorf("Redis client not initialized")
	}

	data, err := RedisClient.Get(ctx, entityKey(name)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to load entity %s: %w", name, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal entity %s: %w", name, err)
	}

	return true, nil
}

// DeleteEntity 删除实体快照
func DeleteEntity(ctx context.Context, name string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	if err := RedisClient.Del(ctx, entityKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete entity %s: %w", name, err)
	}

	return nil
}
