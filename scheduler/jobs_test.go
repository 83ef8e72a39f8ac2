package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kasuganosora/relicsave/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSessions struct {
	mu      sync.Mutex
	reaps   int
	saves   int
	saveErr error
}

func (f *fakeSessions) ReapIdle(time.Duration) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reaps++
	if f.reaps == 1 {
		return []string{"s1"}
	}
	return nil
}

func (f *fakeSessions) AutosaveDirty(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return 1, f.saveErr
}

func (f *fakeSessions) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reaps, f.saves
}

func TestRegisterEditorJobs(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()
	f := &fakeSessions{saveErr: errors.New("disk full")}

	reaped := make(chan []string, 1)
	RegisterEditorJobs(s, f, config.EditorConfig{
		SessionIdle:   20 * time.Millisecond,
		AutosaveEvery: 10 * time.Millisecond,
	}, func(ids []string) { reaped <- ids }, zap.NewNop())

	assert.Equal(t, []string{TaskAutosave, TaskReapIdle}, s.ListTickers())
	select {
	case ids := <-reaped:
		assert.Equal(t, []string{"s1"}, ids)
	case <-time.After(time.Second):
		t.Fatal("reap job did not run")
	}
	assert.Eventually(t, func() bool { _, saves := f.counts(); return saves >= 2 }, time.Second, 5*time.Millisecond)
}

func TestRegisterEditorJobs_Disabled(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()
	RegisterEditorJobs(s, &fakeSessions{}, config.EditorConfig{}, nil, zap.NewNop())
	assert.Empty(t, s.ListTickers())
}

func TestReapInterval(t *testing.T) {
	assert.Equal(t, time.Minute, reapInterval(30*time.Minute))
	assert.Equal(t, 15*time.Second, reapInterval(30*time.Second))
	assert.Equal(t, 10*time.Millisecond, reapInterval(time.Millisecond))
}
