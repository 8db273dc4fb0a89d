package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/speedsale-scraper/internal/entity"
	"github.com/user/speedsale-scraper/internal/repository"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthChecker(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		store := newMemStore()
		last := time.Date(2024, 5, 10, 6, 0, 0, 0, time.UTC)
		store.retailers["a"] = &entity.RetailerState{ID: "a", Enabled: true, LastScraped: &last}
		store.retailers["b"] = &entity.RetailerState{ID: "b"}
		_, _ = memShoes{store}.Create(context.Background(), &entity.Shoe{Slug: "s"})

		report := NewHealthChecker(fakePinger{}, memRetailers{store}, memShoes{store}, memPrices{store}).Check(context.Background())

		assert.True(t, report.Healthy)
		assert.True(t, report.DatabaseConnected)
		assert.Equal(t, 1, report.RetailersEnabled)
		assert.Equal(t, 2, report.RetailersTotal)
		assert.Equal(t, int64(1), report.Shoes)
		require.NotNil(t, report.LastScraped)
		assert.True(t, last.Equal(*report.LastScraped))
	})

	t.Run("no enabled retailers", func(t *testing.T) {
		store := newMemStore()
		store.retailers["b"] = &entity.RetailerState{ID: "b"}

		report := NewHealthChecker(fakePinger{}, memRetailers{store}, memShoes{store}, memPrices{store}).Check(context.Background())
		assert.True(t, report.DatabaseConnected)
		assert.False(t, report.Healthy)
	})

	t.Run("database down", func(t *testing.T) {
		store := newMemStore()
		store.retailers["a"] = &entity.RetailerState{ID: "a", Enabled: true}

		report := NewHealthChecker(fakePinger{err: errors.New("dial tcp: refused")}, memRetailers{store}, memShoes{store}, memPrices{store}).Check(context.Background())
		assert.False(t, report.Healthy)
		assert.False(t, report.DatabaseConnected)
		assert.Equal(t, "dial tcp: refused", report.DatabaseError)
	})
}

type memQueue struct {
	mu   sync.Mutex
	jobs []*entity.ScrapingJob
	err  error
}

func (q *memQueue) Push(_ context.Context, job *entity.ScrapingJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memQueue) Pop(context.Context) (*entity.ScrapingJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	if len(q.jobs) == 0 {
		return nil, repository.ErrQueueEmpty
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *memQueue) Size(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

type recordingScraper struct {
	mu   sync.Mutex
	jobs []entity.ScrapingJob
}

func (s *recordingScraper) RunJob(_ context.Context, job entity.ScrapingJob) *entity.JobResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return &entity.JobResult{RetailerID: job.RetailerID, Success: job.RetailerID != "broken"}
}

func (s *recordingScraper) RunDue(context.Context) []*entity.JobResult { return nil }
func (s *recordingScraper) RunAll(context.Context) []*entity.JobResult { return nil }

func (s *recordingScraper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func TestJobManagerAndWorker(t *testing.T) {
	ctx := context.Background()
	queue := &memQueue{}
	registry := fakeRegistry{
		"sportsshoes": testProfile("sportsshoes", entity.StrategyDynamic),
		"broken":      testProfile("broken", entity.StrategyStatic),
	}
	manager := NewJobManager(registry, queue)

	job, err := manager.Submit(ctx, "sportsshoes", "women", "")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, entity.PriorityMedium, job.Priority)
	assert.NotNil(t, job.ScheduledAt)

	_, err = manager.Submit(ctx, "broken", "", entity.PriorityHigh)
	require.NoError(t, err)

	_, err = manager.Submit(ctx, "ghost", "", entity.PriorityLow)
	assert.ErrorIs(t, err, repository.ErrRetailerNotFound)

	_, err = manager.Submit(ctx, "sportsshoes", "", "urgent")
	assert.ErrorIs(t, err, ErrInvalidPriority)

	scraper := &recordingScraper{}
	worker := NewWorker(queue, scraper)

	for i := 0; i < 2; i++ {
		processed, err := worker.ProcessNext(ctx)
		require.NoError(t, err)
		assert.True(t, processed)
	}
	processed, err := worker.ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, processed)

	require.Len(t, scraper.jobs, 2)
	assert.Equal(t, "women", scraper.jobs[0].Category)
	assert.Equal(t, "broken", scraper.jobs[1].RetailerID)
}

func TestWorker_PopError(t *testing.T) {
	worker := NewWorker(&memQueue{err: errors.New("redis down")}, &recordingScraper{})

	processed, err := worker.ProcessNext(context.Background())
	assert.False(t, processed)
	assert.ErrorContains(t, err, "redis down")
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	queue := &memQueue{}
	_ = queue.Push(context.Background(), &entity.ScrapingJob{ID: "1", RetailerID: "sportsshoes"})
	scraper := &recordingScraper{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWorker(queue, scraper).Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return scraper.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler(t *testing.T) {
	var fast, panicky atomic.Int32
	s := NewScheduler(
		ScheduledTask{Name: "fast", Every: 5 * time.Millisecond, Run: func(context.Context) { fast.Add(1) }},
		ScheduledTask{Name: "panicky", Every: 5 * time.Millisecond, Run: func(context.Context) {
			panicky.Add(1)
			panic("boom")
		}},
		ScheduledTask{Name: "disabled", Every: 0, Run: func(context.Context) { t.Error("disabled task ran") }},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return fast.Load() >= 2 && panicky.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
