package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (j *blockingJob) Run() {
	j.runs.Add(1)
	j.started <- struct{}{}
	<-j.release
}

func TestRunExclusive(t *testing.T) {
	var mu sync.Mutex
	running := mapset.NewSet[*blockingJob]()
	job := &blockingJob{started: make(chan struct{}, 1), release: make(chan struct{})}

	done := make(chan struct{})
	go func() {
		runExclusive(&mu, running, job)
		close(done)
	}()
	<-job.started

	// skipped while the first run is in progress
	runExclusive(&mu, running, job)
	assert.Equal(t, int32(1), job.runs.Load())

	close(job.release)
	<-done
	assert.False(t, running.Contains(job))

	runExclusive(&mu, running, job)
	<-job.started
	assert.Equal(t, int32(2), job.runs.Load())
}

type fakeRefresher struct {
	mu        sync.Mutex
	templates []string
}

func (f *fakeRefresher) Refresh(_ context.Context, template string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates = append(f.templates, template)
	if template == "broken" {
		return nil, errors.New("broken template")
	}
	return []string{"a"}, nil
}

func TestLookupRefreshTask_Refresh(t *testing.T) {
	s := tester.TestStore(t)
	tester.MetadataType(t, s, &model.MetadataType{Name: "color", Lookup: "{{ colors }}"})
	tester.MetadataType(t, s, &model.MetadataType{Name: "shade", Lookup: "{{ colors }}"})
	tester.MetadataType(t, s, &model.MetadataType{Name: "size", Lookup: "broken"})
	tester.MetadataType(t, s, &model.MetadataType{Name: "note"})

	refresher := &fakeRefresher{}
	task := NewLookupRefreshTask("@every 1m", s, refresher)
	assert.Equal(t, "@every 1m", task.Schedule())

	refreshed, err := task.Refresh(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
	assert.ElementsMatch(t, []string{"{{ colors }}", "broken"}, refresher.templates)
}

func TestTaskExecutor_BadSchedule(t *testing.T) {
	s := tester.TestStore(t)
	executor := NewTaskExecutor(NewLookupRefreshTask("whenever", s, &fakeRefresher{}))
	assert.Error(t, executor.Run())
}

type tickJob struct {
	ticks chan struct{}
}

func (j *tickJob) Schedule() string {
	return "@every 1s"
}

func (j *tickJob) Run() {
	select {
	case j.ticks <- struct{}{}:
	default:
	}
}

func TestTaskExecutor_Run(t *testing.T) {
	job := &tickJob{ticks: make(chan struct{}, 1)}
	executor := NewTaskExecutor(job)
	require.NoError(t, executor.Run())
	defer executor.Stop()

	select {
	case <-job.ticks:
	case <-time.After(5 * time.Second):
		t.Fatal("cron job did not run")
	}
}
