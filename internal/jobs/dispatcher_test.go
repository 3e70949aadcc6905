package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-gate/internal/core"
)

type countingJob struct {
	mu    sync.Mutex
	seen  []string
	block chan struct{}
}

func (c *countingJob) Run(_ context.Context, event *core.ReviewEvent) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, event.RepoFullName)
	return nil
}

func TestDispatcherProcessesQueuedEvents(t *testing.T) {
	job := &countingJob{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	d := NewDispatcher(job, 2, logger)
	for range 5 {
		require.NoError(t, d.Dispatch(context.Background(), &core.ReviewEvent{RepoFullName: "sevigo/demo", PRNumber: 1}))
	}
	d.Stop()

	assert.Len(t, job.seen, 5)
}

func TestDispatcherRejectsWhenQueueFull(t *testing.T) {
	job := &countingJob{block: make(chan struct{})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	d := &dispatcher{
		reviewJob:  job,
		maxWorkers: 1,
		jobQueue:   make(chan *core.ReviewEvent, 1),
		logger:     logger,
	}

	require.NoError(t, d.Dispatch(context.Background(), &core.ReviewEvent{RepoFullName: "sevigo/demo"}))
	err := d.Dispatch(context.Background(), &core.ReviewEvent{RepoFullName: "sevigo/demo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestDispatcherDefaultsToOneWorker(t *testing.T) {
	job := &countingJob{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	d := NewDispatcher(job, 0, logger)
	require.NoError(t, d.Dispatch(context.Background(), &core.ReviewEvent{RepoFullName: "sevigo/demo"}))
	d.Stop()

	assert.Len(t, job.seen, 1)
}
