package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"simple-todo/configs"
	"simple-todo/pkg/database"
	"simple-todo/pkg/logger"
)

// Stores is the opened backend plus the function releasing it.
type Stores struct {
	Users   UserStore
	Tasks   TaskStore
	closers []func()
}

// Close releases every connection in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open connects the backend named by cfg.StoreDriver and, when REDIS_ADDR
// is set, wraps the task store with the Redis list cache.
func Open(ctx context.Context, cfg configs.Config, log *logger.Loggers) (*Stores, error) {
	s := &Stores{}

	switch cfg.StoreDriver {
	case configs.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })

		db := client.Database(cfg.MongoDB)
		if err := EnsureMongoIndexes(ctx, db); err != nil {
			s.Close()
			return nil, err
		}
		s.Users = NewMongoUserStore(db)
		s.Tasks = NewMongoTaskStore(db)

	case configs.DriverPostgres:
		db, err := database.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = db.Close() })

		if err := CreateTableIfNotExists(ctx, db); err != nil {
			s.Close()
			return nil, err
		}
		s.Users = NewPostgresUserStore(db)
		s.Tasks = NewPostgresTaskStore(db)

	case configs.DriverMemory:
		mem := NewMemoryStore()
		s.Users = mem.Users()
		s.Tasks = mem.Tasks()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	log.System.Info("Store connected", zap.String("driver", cfg.StoreDriver))

	if cfg.RedisAddr != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Tasks = NewCachedTaskStore(s.Tasks, client, cfg.TaskCacheTTL, log.Error)
		log.System.Info("Task cache enabled", zap.String("addr", cfg.RedisAddr))
	}
	return s, nil
}
