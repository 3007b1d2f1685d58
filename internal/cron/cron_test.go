package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvictor struct {
	mu    sync.Mutex
	got   []time.Duration
	evict int
}

func (f *fakeEvictor) EvictIdle(maxIdle time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, maxIdle)
	return f.evict
}

type fakePurger struct {
	retention time.Duration
	n         int64
	err       error
}

func (f *fakePurger) Purge(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return f.n, f.err
}

func TestEvictIdle_CallsEveryEvictor(t *testing.T) {
	wiz, cat := &fakeEvictor{evict: 2}, &fakeEvictor{}
	s := NewScheduler(map[string]Evictor{"wizard": wiz, "catalyst": cat}, nil, Options{IdleTimeout: time.Hour})

	s.EvictIdle()

	assert.Equal(t, []time.Duration{time.Hour}, wiz.got)
	assert.Equal(t, []time.Duration{time.Hour}, cat.got)
}

func TestPurgeDrafts(t *testing.T) {
	p := &fakePurger{n: 4}
	s := NewScheduler(nil, p, Options{Retention: 30 * 24 * time.Hour})

	n, err := s.PurgeDrafts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, 30*24*time.Hour, p.retention)

	p.err = errors.New("connection refused")
	_, err = s.PurgeDrafts(context.Background())
	assert.Error(t, err)
}

func TestPurgeDrafts_WithoutPurger(t *testing.T) {
	s := NewScheduler(nil, nil, Options{Retention: time.Hour})
	n, err := s.PurgeDrafts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStart_RegistersConfiguredJobs(t *testing.T) {
	s := NewScheduler(map[string]Evictor{"wizard": &fakeEvictor{}}, &fakePurger{}, Options{IdleTimeout: time.Hour, Retention: time.Hour})
	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Len(t, s.cron.Entries(), 2)

	bare := NewScheduler(nil, nil, Options{})
	require.NoError(t, bare.Start())
	defer bare.Stop()
	assert.Empty(t, bare.cron.Entries())
}
