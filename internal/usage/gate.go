// Package usage enforces per-plan statement quotas before a model call is paid
// for. Capped tiers roll over every 30 days; the reset is applied lazily on
// read rather than by a scheduled job.
package usage

import (
	"context"
	"time"

	"github.com/spediak/spediak-backend/internal/models"
	"github.com/spediak/spediak-backend/internal/tasks"
)

// ResetInterval is the rolling quota window for capped tiers.
const ResetInterval = 30 * 24 * time.Hour

// Store is the subscription persistence the gate needs; *db.DatabaseClient
// satisfies it.
type Store interface {
	GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error)
	ResetSubscriptionUsage(ctx context.Context, userID string, resetAt time.Time) error
	IncrementStatementsUsed(ctx context.Context, userID string) error
}

type Gate struct {
	db     Store
	runner *tasks.Runner
	now    func() time.Time
}

func NewGate(db Store, runner *tasks.Runner) *Gate {
	return &Gate{db: db, runner: runner, now: time.Now}
}

// NeedsReset reports whether the subscription's window has elapsed.
func NeedsReset(sub *models.UserSubscription, now time.Time) bool {
	if sub == nil || sub.Unlimited() {
		return false
	}
	return now.Sub(sub.LastResetDate) >= ResetInterval
}

// CanGenerate is true for unlimited tiers, admins, and capped tiers still
// under their limit.
func CanGenerate(sub *models.UserSubscription, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	if sub == nil {
		return false
	}
	if sub.Unlimited() {
		return true
	}
	return sub.StatementsUsed < sub.StatementsLimit
}

// Current returns the subscription with the lazy 30-day reset applied.
func (g *Gate) Current(ctx context.Context, userID string) (*models.UserSubscription, error) {
	sub, err := g.db.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if NeedsReset(sub, g.now()) {
		resetAt := g.now()
		if err := g.db.ResetSubscriptionUsage(ctx, userID, resetAt); err != nil {
			return nil, err
		}
		sub.StatementsUsed = 0
		sub.LastResetDate = resetAt
	}
	return sub, nil
}

// RecordUsage increments the statement counter on the background runner.
// It is invoked after the response has been sent; failures are logged by the
// runner and never reach the caller. Undercounting is accepted over blocking.
func (g *Gate) RecordUsage(userID string) {
	db := g.db
	g.runner.Enqueue(tasks.Task{
		Name: "usage-increment",
		Run: func(ctx context.Context) error {
			return db.IncrementStatementsUsed(ctx, userID)
		},
	})
}
