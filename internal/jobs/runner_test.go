package jobs

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterprofile/internal/profile/application"
)

func buildCSV(rows int) string {
	var b strings.Builder
	b.WriteString("Date,Time,kWh\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "2024-01-%02d,%02d:00,%d.5\n", i/24+1, i%24, i%6)
	}
	return b.String()
}

func waitFinished(t *testing.T, r *Runner, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := r.Get(id)
		require.True(t, ok)
		if job.Status == StatusDone || job.Status == StatusFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish")
	return Job{}
}

func TestRunnerRunsJob(t *testing.T) {
	r := NewRunner(application.NewExtractor(nil), nil, WithWorkers(1))
	r.Start()
	defer r.Stop()

	id, err := r.Submit("user-1", buildCSV(72), application.Config{})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job := waitFinished(t, r, id)
	assert.Equal(t, StatusDone, job.Status)
	assert.Equal(t, "user-1", job.Actor)
	require.NotNil(t, job.Result)
	assert.Equal(t, 72, job.Result.DataPointCount)
	assert.False(t, job.StartedAt.IsZero())
	assert.False(t, job.FinishedAt.IsZero())
}

func TestRunnerFailedJob(t *testing.T) {
	r := NewRunner(application.NewExtractor(nil), nil, WithWorkers(1))
	r.Start()
	defer r.Stop()

	id, err := r.Submit("", "", application.Config{})
	require.NoError(t, err)

	job := waitFinished(t, r, id)
	assert.Equal(t, StatusFailed, job.Status)
	assert.NotEmpty(t, job.Error)
	assert.Nil(t, job.Result)
}

func TestRunnerQueueFull(t *testing.T) {
	// No workers started, so the queue never drains.
	r := NewRunner(application.NewExtractor(nil), nil, WithQueueDepth(1))

	_, err := r.Submit("", buildCSV(10), application.Config{})
	require.NoError(t, err)

	id, err := r.Submit("", buildCSV(10), application.Config{})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Empty(t, id)

	// The refused submission leaves no orphan record.
	assert.Len(t, r.jobs, 1)
}

func TestRunnerGetUnknown(t *testing.T) {
	r := NewRunner(application.NewExtractor(nil), nil)
	_, ok := r.Get("nope")
	assert.False(t, ok)
}

func TestNewJobIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := newJobID()
		assert.Len(t, id, 32)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
