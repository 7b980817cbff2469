package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	cutoff  time.Time
	calls   int
	deleted int64
	err     error
}

func (f *fakePurger) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestOutboxRetentionJobUsesRetentionWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakePurger{deleted: 4}
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Retention:  48 * time.Hour,
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)
	require.Equal(t, "outbox-retention", job.Name())

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, 1, repo.calls)
	require.True(t, repo.cutoff.Equal(now.Add(-48*time.Hour)))
}

func TestOutboxRetentionJobDefaultsAndErrors(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakePurger{err: errors.New("db down")}
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)

	require.Error(t, job.Run(context.Background()))
	require.True(t, repo.cutoff.Equal(now.Add(-defaultOutboxRetention)))
}

func TestNewOutboxRetentionJobRequiresRepository(t *testing.T) {
	_, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: testLogger()})
	require.Error(t, err)
}
