package app

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	base := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, time.Minute},
		{"two failures", 2, 2 * time.Minute},
		{"three failures", 3, 4 * time.Minute},
		{"four failures capped", 4, 5 * time.Minute},
		{"many failures capped", 60, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateBackoff(tt.failures, base); got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, base, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	for failures := 0; failures <= 100; failures++ {
		if got := calculateBackoff(failures, time.Second); got > maxBackoff || got <= 0 {
			t.Errorf("calculateBackoff(%d) = %v, outside (0, %v]", failures, got, maxBackoff)
		}
	}
}

type countingPuller struct {
	calls atomic.Int32
	err   error
}

func (p *countingPuller) Pull(context.Context) error {
	p.calls.Add(1)
	return p.err
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func storeWithSession(role model.Role) *state.Store {
	store := state.NewStore()
	store.Dispatch(state.Batch{
		state.SetSession{Session: &model.Session{Username: "acme", Role: role}},
		state.SetInitialized{Initialized: true},
		state.SetLoading{Loading: false},
	})
	return store
}

func TestCrewRefresher_PullsForCrew(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	puller := &countingPuller{}
	StartCrewRefresher(ctx, storeWithSession(model.RoleCrew), puller, 10*time.Millisecond, quietLog())

	deadline := time.Now().Add(2 * time.Second)
	for puller.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("calls = %d, want at least 2", puller.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCrewRefresher_IgnoresAdmin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	puller := &countingPuller{}
	StartCrewRefresher(ctx, storeWithSession(model.RoleAdmin), puller, 5*time.Millisecond, quietLog())

	time.Sleep(60 * time.Millisecond)
	if got := puller.calls.Load(); got != 0 {
		t.Fatalf("calls = %d, want 0", got)
	}
}

func TestCrewRefresher_BacksOffOnFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	puller := &countingPuller{err: errors.New("offline")}
	StartCrewRefresher(ctx, storeWithSession(model.RoleCrew), puller, 20*time.Millisecond, quietLog())

	// Waits are 20ms, 40ms, 80ms, 160ms: about four pulls in 300ms
	// instead of fifteen.
	time.Sleep(300 * time.Millisecond)
	if got := puller.calls.Load(); got < 1 || got > 6 {
		t.Fatalf("calls = %d, want a backed-off count", got)
	}
}

func TestCrewRefresher_DisabledByZeroInterval(t *testing.T) {
	puller := &countingPuller{}
	StartCrewRefresher(context.Background(), storeWithSession(model.RoleCrew), puller, 0, quietLog())
	time.Sleep(20 * time.Millisecond)
	if got := puller.calls.Load(); got != 0 {
		t.Fatalf("calls = %d, want 0", got)
	}
}
