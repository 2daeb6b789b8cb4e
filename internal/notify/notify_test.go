package notify

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foampro/foamsync/internal/state"
)

func TestNotifierPostsAndExpires(t *testing.T) {
	store := state.NewStore()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	n := New(store, 30*time.Millisecond, log)

	n.Error("Sync Failed")

	latest, ok := store.Snapshot().UI.LatestNotification()
	require.True(t, ok)
	assert.Equal(t, state.NotifyError, latest.Kind)
	assert.Equal(t, "Sync Failed", latest.Message)

	require.Eventually(t, func() bool {
		return len(store.Snapshot().UI.Notifications) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestNotifierWithoutTTLKeepsMessages(t *testing.T) {
	store := state.NewStore()
	n := New(store, 0, nil)

	n.Success("one")
	n.Warning("two")

	notes := store.Snapshot().UI.Notifications
	require.Len(t, notes, 2)
	assert.Equal(t, state.NotifyWarning, notes[1].Kind)

	n.Dismiss(notes[0].ID)
	assert.Len(t, store.Snapshot().UI.Notifications, 1)
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.Success("ignored")
	n.Dismiss("x")
}
