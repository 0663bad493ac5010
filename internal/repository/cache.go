package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"simple-todo/internal/models"
)

// CachedTaskStore keeps each owner's task list in Redis. List entries are
// keyed by a per-owner generation that every write increments, so a fill
// that raced with a write lands under a generation nobody reads again.
// Redis failures are logged and fall through to the wrapped store.
type CachedTaskStore struct {
	next   TaskStore
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedTaskStore(next TaskStore, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedTaskStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedTaskStore{next: next, client: client, ttl: ttl, log: log}
}

func taskGenerationKey(ownerID string) string {
	return "todos:gen:" + ownerID
}

func taskListKey(ownerID string, gen int64) string {
	return fmt.Sprintf("todos:list:%s:%d", ownerID, gen)
}

// generation returns the owner's current generation, 0 before any write.
func (s *CachedTaskStore) generation(ctx context.Context, ownerID string) (int64, error) {
	gen, err := s.client.Get(ctx, taskGenerationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (s *CachedTaskStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	gen, err := s.generation(ctx, ownerID)
	if err != nil {
		s.log.Error("Error reading task cache generation", zap.String("owner_id", ownerID), zap.Error(err))
		return s.next.ListByOwner(ctx, ownerID)
	}
	key := taskListKey(ownerID, gen)

	cached, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var tasks []models.Task
		if err := json.Unmarshal(cached, &tasks); err == nil {
			return tasks, nil
		}
		s.log.Warn("Dropping undecodable task cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		s.log.Error("Error reading task cache", zap.String("key", key), zap.Error(err))
	}

	tasks, err := s.next.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tasks); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.log.Error("Error caching task list", zap.String("key", key), zap.Error(err))
		}
	}
	return tasks, nil
}

func (s *CachedTaskStore) Create(ctx context.Context, t models.Task) (models.Task, error) {
	created, err := s.next.Create(ctx, t)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidate(ctx, t.OwnerID)
	return created, nil
}

func (s *CachedTaskStore) Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (models.Task, error) {
	updated, err := s.next.Update(ctx, ownerID, id, patch)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidate(ctx, ownerID)
	return updated, nil
}

func (s *CachedTaskStore) Delete(ctx context.Context, ownerID, id string) (models.Task, error) {
	deleted, err := s.next.Delete(ctx, ownerID, id)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidate(ctx, ownerID)
	return deleted, nil
}

// invalidate moves the owner to a new generation. It runs after the
// backing write, so any list read before the write was cached under an
// older generation.
func (s *CachedTaskStore) invalidate(ctx context.Context, ownerID string) {
	if err := s.client.Incr(ctx, taskGenerationKey(ownerID)).Err(); err != nil {
		s.log.Error("Error invalidating task cache", zap.String("owner_id", ownerID), zap.Error(err))
	}
}
