package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
)

const jobQueueKey = "speedsale:jobs"

// QueueRepoImpl provides a concrete implementation for the JobQueue interface
// using two Redis lists. High and medium jobs share the main list; low jobs
// wait in a second list that is drained only when the main one is empty.
type QueueRepoImpl struct {
	client *redis.Client
	key    string
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client, key: jobQueueKey}
}

func (r *QueueRepoImpl) lowKey() string {
	return r.key + ":low"
}

// target picks the list a job goes to and whether it is pushed on the right,
// the side Pop reads from.
func (r *QueueRepoImpl) target(priority entity.JobPriority) (key string, front bool) {
	switch priority {
	case entity.PriorityHigh:
		return r.key, true
	case entity.PriorityLow:
		return r.lowKey(), false
	default:
		return r.key, false
	}
}

// Push enqueues a job. High priority jobs jump the main list.
func (r *QueueRepoImpl) Push(ctx context.Context, job *entity.ScrapingJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	key, front := r.target(job.Priority)
	if front {
		return r.client.RPush(ctx, key, payload).Err()
	}
	return r.client.LPush(ctx, key, payload).Err()
}

// Pop removes and returns the next job, falling back to the low list.
func (r *QueueRepoImpl) Pop(ctx context.Context) (*entity.ScrapingJob, error) {
	payload, err := r.client.RPop(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		payload, err = r.client.RPop(ctx, r.lowKey()).Bytes()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrQueueEmpty
		}
		return nil, err
	}
	var job entity.ScrapingJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// Size returns the number of jobs across both lists.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	pipe := r.client.Pipeline()
	primary := pipe.LLen(ctx, r.key)
	low := pipe.LLen(ctx, r.lowKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return primary.Val() + low.Val(), nil
}
