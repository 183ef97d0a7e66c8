package throttle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/physoxy/internal/lib/apperr"
	"github.com/magabrotheeeer/physoxy/internal/models"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

// memRepo хранит записи в памяти и ведет себя как repository.Storage.
type memRepo struct {
	mu      sync.Mutex
	pending map[string]models.PendingRegistration
	getErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{pending: map[string]models.PendingRegistration{}}
}

func (r *memRepo) GetPending(_ context.Context, email string) (*models.PendingRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.pending[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("storage.GetPending: %w", repository.ErrNotFound)
	}
	return &p, nil
}

func (r *memRepo) SavePending(_ context.Context, p models.PendingRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[strings.ToLower(p.Email)] = p
	return nil
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		prev         *models.PendingRegistration
		now          time.Time
		wantAllowed  bool
		wantReason   Reason
		wantAttempts int
		wantRetry    time.Duration
	}{
		{
			name:         "first attempt",
			now:          t0,
			wantAllowed:  true,
			wantAttempts: 1,
		},
		{
			name:       "inside small cooldown",
			prev:       &models.PendingRegistration{Attempts: 1, AttemptAt: t0},
			now:        t0.Add(30 * time.Second),
			wantReason: ReasonShortCooldown,
			wantRetry:  90 * time.Second,
		},
		{
			name:         "small cooldown elapsed",
			prev:         &models.PendingRegistration{Attempts: 1, AttemptAt: t0},
			now:          t0.Add(2 * time.Minute),
			wantAllowed:  true,
			wantAttempts: 2,
		},
		{
			name:         "reaching max tries stores max",
			prev:         &models.PendingRegistration{Attempts: 2, AttemptAt: t0},
			now:          t0.Add(3 * time.Minute),
			wantAllowed:  true,
			wantAttempts: 3,
		},
		{
			name:       "exhausted inside big cooldown",
			prev:       &models.PendingRegistration{Attempts: 3, AttemptAt: t0},
			now:        t0.Add(10 * time.Minute),
			wantReason: ReasonLongCooldown,
			wantRetry:  20 * time.Minute,
		},
		{
			name:         "big cooldown elapsed resets counter",
			prev:         &models.PendingRegistration{Attempts: 3, AttemptAt: t0},
			now:          t0.Add(30 * time.Minute),
			wantAllowed:  true,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.prev, "a@x.com", tt.now, DefaultLimits)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			if tt.wantAllowed {
				assert.Equal(t, tt.wantAttempts, d.Next.Attempts)
				assert.Equal(t, tt.now, d.Next.AttemptAt)
				assert.Equal(t, "a@x.com", d.Next.Email)
				return
			}
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.wantRetry, d.RetryAfter)
		})
	}
}

func TestGuard_ThreeAttemptsThenLongCooldown(t *testing.T) {
	repo := newMemRepo()
	g := New(repo, DefaultLimits)
	ctx := context.Background()

	now := t0
	for i := 0; i < 3; i++ {
		require.NoError(t, g.RegisterAttempt(ctx, "a@x.com", now), "attempt %d", i+1)
		now = now.Add(2 * time.Minute)
	}

	err := g.RegisterAttempt(ctx, "a@x.com", now)
	require.ErrorIs(t, err, apperr.ErrThrottled)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, msgLongCooldown, e.Message)
	assert.Equal(t, "wait 30 mins before trying again", e.Details)

	lastAttempt := now.Add(-2 * time.Minute)
	require.NoError(t, g.RegisterAttempt(ctx, "a@x.com", lastAttempt.Add(30*time.Minute)))
	p, err := repo.GetPending(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Attempts)
}

func TestGuard_RapidRegistrationScenario(t *testing.T) {
	repo := newMemRepo()
	g := New(repo, DefaultLimits)
	ctx := context.Background()

	require.NoError(t, g.RegisterAttempt(ctx, "a@x.com", t0))

	err := g.RegisterAttempt(ctx, "a@x.com", t0.Add(time.Second))
	require.ErrorIs(t, err, apperr.ErrThrottled)
	e, _ := apperr.As(err)
	assert.Equal(t, msgShortCooldown, e.Message)
	assert.Equal(t, "wait 2 mins before trying again", e.Details)
	assert.Equal(t, 2*time.Minute-time.Second, e.RetryAfter)

	// отказ не двигает attemptAt
	p, err := repo.GetPending(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, t0, p.AttemptAt)
	assert.Equal(t, 1, p.Attempts)
}

func TestGuard_RepositoryError(t *testing.T) {
	repo := newMemRepo()
	repo.getErr = errors.New("connection reset")
	g := New(repo, DefaultLimits)

	err := g.RegisterAttempt(context.Background(), "a@x.com", t0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrThrottled)
}
