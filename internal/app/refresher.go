package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/state"
)

// maxBackoff caps the wait between failed crew refreshes.
const maxBackoff = 5 * time.Minute

// Puller refreshes local state from the remote store.
type Puller interface {
	Pull(ctx context.Context) error
}

// StartCrewRefresher pulls company state at a fixed cadence while a crew
// session is active, backing off on failures. Crew devices never push, so
// this is how they see office changes. It returns immediately; a
// non-positive interval disables it.
func StartCrewRefresher(ctx context.Context, store *state.Store, puller Puller, interval time.Duration, log logrus.FieldLogger) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "refresher")

	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if refreshDue(store.Snapshot()) {
				if err := puller.Pull(ctx); err != nil {
					failures++
					log.WithError(err).WithField("failures", failures).Warn("crew refresh failed")
				} else {
					failures = 0
				}
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

func refreshDue(s state.State) bool {
	return s.Session != nil && s.Session.IsCrew() && s.UI.Initialized && !s.UI.Loading
}

// calculateBackoff doubles base for each consecutive failure, up to
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
