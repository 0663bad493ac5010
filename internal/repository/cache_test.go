package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"simple-todo/internal/models"
)

// countingTaskStore records how often ListByOwner reaches the backing store.
type countingTaskStore struct {
	TaskStore
	mu    sync.Mutex
	lists int
}

func (c *countingTaskStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.TaskStore.ListByOwner(ctx, ownerID)
}

func (c *countingTaskStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists
}

// pausingTaskStore holds the first ListByOwner after its backing read until
// release is closed.
type pausingTaskStore struct {
	TaskStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newPausingTaskStore(next TaskStore) *pausingTaskStore {
	return &pausingTaskStore{TaskStore: next, read: make(chan struct{}), release: make(chan struct{})}
}

func (p *pausingTaskStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	tasks, err := p.TaskStore.ListByOwner(ctx, ownerID)
	p.once.Do(func() {
		close(p.read)
		<-p.release
	})
	return tasks, err
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedTaskStore_Contract(t *testing.T) {
	_, client := newMiniRedis(t)
	s := NewMemoryStore()
	runTaskStoreContract(t, s.Users(), NewCachedTaskStore(s.Tasks(), client, time.Minute, nil))
}

func TestCachedTaskStore_ServesFromCacheUntilWrite(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)

	backing := &countingTaskStore{TaskStore: NewMemoryStore().Tasks()}
	cached := NewCachedTaskStore(backing, client, time.Minute, nil)

	_, err := cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	_, err = cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, backing.count())

	created, err := cached.Create(ctx, models.Task{OwnerID: "owner-1", Title: "fresh"})
	require.NoError(t, err)

	listed, err := cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.count())
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	done := true
	_, err = cached.Update(ctx, "owner-1", created.ID, models.TaskPatch{Completed: &done})
	require.NoError(t, err)
	listed, err = cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Completed)

	_, err = cached.Delete(ctx, "owner-1", created.ID)
	require.NoError(t, err)
	listed, err = cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, listed)

	// another owner's write leaves this entry alone
	before := backing.count()
	_, err = cached.Create(ctx, models.Task{OwnerID: "owner-2", Title: "other"})
	require.NoError(t, err)
	_, err = cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, before, backing.count())
}

func TestCachedTaskStore_FillRacingWriteIsNotServed(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)

	paused := newPausingTaskStore(NewMemoryStore().Tasks())
	cached := NewCachedTaskStore(paused, client, time.Minute, nil)

	filled := make(chan error, 1)
	go func() {
		_, err := cached.ListByOwner(ctx, "owner-1")
		filled <- err
	}()

	// the list has read the empty backing store but not yet filled the cache
	<-paused.read
	created, err := cached.Create(ctx, models.Task{OwnerID: "owner-1", Title: "fresh"})
	require.NoError(t, err)
	close(paused.release)
	require.NoError(t, <-filled)

	listed, err := cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestCachedTaskStore_FailsOpen(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)

	core, logs := observer.New(zap.ErrorLevel)
	backing := &countingTaskStore{TaskStore: NewMemoryStore().Tasks()}
	cached := NewCachedTaskStore(backing, client, time.Minute, zap.New(core))

	mr.SetError("ERR redis unavailable")

	created, err := cached.Create(ctx, models.Task{OwnerID: "owner-1", Title: "still works"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		listed, err := cached.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, created.ID, listed[0].ID)
	}
	assert.Equal(t, 2, backing.count())
	assert.NotZero(t, logs.FilterMessage("Error invalidating task cache").Len())
	assert.NotZero(t, logs.FilterMessage("Error reading task cache generation").Len())

	mr.SetError("")
	_, err = cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	_, err = cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 3, backing.count())
}

func TestCachedTaskStore_DropsUndecodableEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)

	backing := &countingTaskStore{TaskStore: NewMemoryStore().Tasks()}
	cached := NewCachedTaskStore(backing, client, time.Minute, nil)

	require.NoError(t, mr.Set(taskListKey("owner-1", 0), "{not json"))

	listed, err := cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Equal(t, 1, backing.count())

	_, err = cached.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, backing.count())
}
