package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
)

// newTestClient connects to REDIS_TEST_ADDR. Tests are skipped when it is unset.
func newTestClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := Open(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestQueueRepo_ServesByPriority(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	q := NewQueueRepo(client)
	q.key = "speedsale:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, q.key, q.lowKey()) })

	require.NoError(t, q.Push(ctx, &entity.ScrapingJob{ID: "1", RetailerID: "a", Priority: entity.PriorityLow}))
	require.NoError(t, q.Push(ctx, &entity.ScrapingJob{ID: "2", RetailerID: "b", Priority: entity.PriorityMedium}))
	require.NoError(t, q.Push(ctx, &entity.ScrapingJob{ID: "3", RetailerID: "c", Category: "running", Priority: entity.PriorityHigh}))
	require.NoError(t, q.Push(ctx, &entity.ScrapingJob{ID: "4", RetailerID: "d", Priority: entity.PriorityMedium}))
	require.NoError(t, q.Push(ctx, &entity.ScrapingJob{ID: "5", RetailerID: "e", Priority: entity.PriorityLow}))

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	var order []string
	for i := 0; i < 5; i++ {
		job, err := q.Pop(ctx)
		require.NoError(t, err)
		order = append(order, job.ID)
	}
	assert.Equal(t, []string{"3", "2", "4", "1", "5"}, order)

	_, err = q.Pop(ctx)
	assert.ErrorIs(t, err, repository.ErrQueueEmpty)
}

func TestLockRepo_AcquireRelease(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	retailer := "test-" + uuid.NewString()

	first := NewLockRepo(client)
	second := NewLockRepo(client)

	ok, err := first.Acquire(ctx, retailer, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx, retailer, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "lock is held by another owner")

	require.NoError(t, second.Release(ctx, retailer))
	ok, err = second.Acquire(ctx, retailer, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "release by a non-owner is a no-op")

	require.NoError(t, first.Release(ctx, retailer))
	ok, err = second.Acquire(ctx, retailer, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Release(ctx, retailer))
}

func TestQueueRepo_Target(t *testing.T) {
	q := NewQueueRepo(nil)

	tests := []struct {
		priority  entity.JobPriority
		wantKey   string
		wantFront bool
	}{
		{entity.PriorityHigh, "speedsale:jobs", true},
		{entity.PriorityMedium, "speedsale:jobs", false},
		{"", "speedsale:jobs", false},
		{entity.PriorityLow, "speedsale:jobs:low", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			key, front := q.target(tt.priority)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantFront, front)
		})
	}
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "speedsale:lock:sportsshoes", lockKey("sportsshoes"))
}
