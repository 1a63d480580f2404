package collector

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// WorkerPool
// ---------------------------------------------------------------------------

func TestNewWorkerPool(t *testing.T) {
	pool := NewWorkerPool(4)
	require.NotNil(t, pool)
	assert.Equal(t, 4, cap(pool.sem))
}

func TestNewWorkerPool_MinimumOne(t *testing.T) {
	assert.Equal(t, 1, cap(NewWorkerPool(0).sem))
}

func TestWorkerPool_Submit_ExecutesFunction(t *testing.T) {
	pool := NewWorkerPool(2)
	var called atomic.Bool

	done := make(chan struct{})
	err := pool.Submit(context.Background(), func() {
		called.Store(true)
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("function was not executed in time")
	}
	assert.True(t, called.Load())
}

func TestWorkerPool_Submit_BlocksWhenFull(t *testing.T) {
	pool := NewWorkerPool(1)

	blocker := make(chan struct{})
	err := pool.Submit(context.Background(), func() {
		<-blocker
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = pool.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(blocker)
}

func TestWorkerPool_Submit_ErrorOnCancelledContext(t *testing.T) {
	pool := NewWorkerPool(1)

	blocker := make(chan struct{})
	err := pool.Submit(context.Background(), func() {
		<-blocker
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = pool.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)

	close(blocker)
}

// ---------------------------------------------------------------------------
// DemoMode / device names
// ---------------------------------------------------------------------------

func TestParseDemoMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DemoMode
		wantErr bool
	}{
		{"", DemoAuto, false},
		{"auto", DemoAuto, false},
		{"always", DemoAlways, false},
		{"never", DemoNever, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDemoMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidDeviceName(t *testing.T) {
	assert.True(t, ValidDeviceName("sda"))
	assert.True(t, ValidDeviceName("nvme0n1"))
	assert.True(t, ValidDeviceName("eth0.100"))
	assert.False(t, ValidDeviceName(""))
	assert.False(t, ValidDeviceName("sda; rm -rf /"))
	assert.False(t, ValidDeviceName("-sda"))
}
