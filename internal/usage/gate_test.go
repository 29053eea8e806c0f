package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spediak/spediak-backend/internal/models"
	"github.com/spediak/spediak-backend/internal/tasks"
)

type fakeStore struct {
	sub         *models.UserSubscription
	resetAt     time.Time
	resets      int
	incremented chan string
}

func (f *fakeStore) GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error) {
	return f.sub, nil
}

func (f *fakeStore) ResetSubscriptionUsage(ctx context.Context, userID string, resetAt time.Time) error {
	f.resets++
	f.resetAt = resetAt
	return nil
}

func (f *fakeStore) IncrementStatementsUsed(ctx context.Context, userID string) error {
	if f.incremented != nil {
		f.incremented <- userID
	}
	return nil
}

func sub(tier string, used, limit int, lastReset time.Time) *models.UserSubscription {
	return &models.UserSubscription{
		PlanType: tier,
		StatementsUsed:   used,
		StatementsLimit:  limit,
		LastResetDate:    lastReset,
	}
}

func TestCanGenerate(t *testing.T) {
	now := time.Now()

	assert.False(t, CanGenerate(sub(models.PlanFree, 10, 10, now), false), "free at limit")
	assert.True(t, CanGenerate(sub(models.PlanFree, 9, 10, now), false), "free under limit")
	assert.True(t, CanGenerate(sub(models.PlanPro, 500, 10, now), false), "pro ignores counters")
	assert.True(t, CanGenerate(sub(models.PlanPlatinum, 500, 10, now), false), "platinum ignores counters")
	assert.True(t, CanGenerate(sub(models.PlanFree, 10, 10, now), true), "admin bypasses quota")
	assert.False(t, CanGenerate(nil, false), "missing subscription denies")
}

func TestNeedsReset(t *testing.T) {
	now := time.Now()

	assert.False(t, NeedsReset(sub(models.PlanFree, 5, 10, now.Add(-time.Hour)), now))
	assert.True(t, NeedsReset(sub(models.PlanFree, 5, 10, now.Add(-31*24*time.Hour)), now))
	assert.False(t, NeedsReset(sub(models.PlanPro, 5, 10, now.Add(-31*24*time.Hour)), now), "unlimited tiers never reset")
	assert.False(t, NeedsReset(nil, now))
}

func TestCurrentAppliesLazyReset(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{sub: sub(models.PlanFree, 10, 10, now.Add(-31*24*time.Hour))}

	g := NewGate(store, tasks.NewRunner(4))
	g.now = func() time.Time { return now }

	got, err := g.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.StatementsUsed, "window elapsed, counter resets")
	assert.Equal(t, now, got.LastResetDate)
	assert.Equal(t, 1, store.resets)

	// A second read inside the fresh window does not reset again.
	_, err = g.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.resets)
}

func TestCurrentLeavesFreshWindowAlone(t *testing.T) {
	now := time.Now()
	store := &fakeStore{sub: sub(models.PlanFree, 3, 10, now.Add(-time.Hour))}

	g := NewGate(store, tasks.NewRunner(4))
	got, err := g.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.StatementsUsed)
	assert.Zero(t, store.resets)
}

func TestRecordUsageRunsInBackground(t *testing.T) {
	store := &fakeStore{incremented: make(chan string, 1)}
	runner := tasks.NewRunner(4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx, 1)

	g := NewGate(store, runner)
	g.RecordUsage("u1")

	select {
	case id := <-store.incremented:
		assert.Equal(t, "u1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("increment task never ran")
	}
}
