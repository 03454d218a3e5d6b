package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/famcal/internal/config"
	"github.com/tartampluch/famcal/internal/engine"
	"github.com/tartampluch/famcal/internal/worker"
)

type fakeLoader struct {
	calls atomic.Int32
	err   error
}

func (f *fakeLoader) Load(ctx context.Context, sources []config.SourceConfig) (*engine.Snapshot, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &engine.Snapshot{Stats: engine.Stats{Events: len(sources)}}, nil
}

type recorder struct {
	mu    sync.Mutex
	snaps []*engine.Snapshot
}

func (r *recorder) publish(s *engine.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func TestRefresh_PublishesOnSuccess(t *testing.T) {
	rec := &recorder{}
	w := &worker.Worker{
		Loader:  &fakeLoader{},
		Sources: []config.SourceConfig{{ID: "a"}, {ID: "b"}},
		Publish: rec.publish,
	}

	require.NoError(t, w.Refresh(context.Background()))
	require.Equal(t, 1, rec.count())
	assert.Equal(t, 2, rec.snaps[0].Stats.Events)
}

func TestRefresh_FailureKeepsPrevious(t *testing.T) {
	rec := &recorder{}
	w := &worker.Worker{
		Loader:  &fakeLoader{err: errors.New("boom")},
		Publish: rec.publish,
	}

	assert.Error(t, w.Refresh(context.Background()))
	assert.Zero(t, rec.count())
}

func TestRun_InvalidSchedule(t *testing.T) {
	w := &worker.Worker{Loader: &fakeLoader{}, Schedule: "every tuesday"}
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrCronSpec)
}

func TestRun_RefreshesImmediatelyAndOnSchedule(t *testing.T) {
	loader := &fakeLoader{}
	rec := &recorder{}
	w := &worker.Worker{
		Loader:   loader,
		Schedule: "@every 1s",
		Publish:  rec.publish,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return loader.calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
