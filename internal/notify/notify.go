// Package notify raises short-lived user-facing messages through the state
// store and removes them again after a fixed lifetime.
package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/state"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 2 * time.Second

// Notifier posts notifications. A nil *Notifier drops everything, which
// lets engines run without a UI.
type Notifier struct {
	store *state.Store
	ttl   time.Duration
	log   logrus.FieldLogger
	now   func() time.Time
}

// New returns a Notifier posting to store. A ttl of zero or less keeps
// notifications until they are dismissed explicitly.
func New(store *state.Store, ttl time.Duration, log logrus.FieldLogger) *Notifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Notifier{
		store: store,
		ttl:   ttl,
		log:   log.WithField("component", "notify"),
		now:   time.Now,
	}
}

func (n *Notifier) Success(msg string) { n.post(state.NotifySuccess, msg) }
func (n *Notifier) Warning(msg string) { n.post(state.NotifyWarning, msg) }
func (n *Notifier) Error(msg string)   { n.post(state.NotifyError, msg) }

// Dismiss removes a notification before its lifetime ends.
func (n *Notifier) Dismiss(id string) {
	if n == nil || n.store == nil {
		return
	}
	n.store.Dispatch(state.DismissNotification{ID: id})
}

func (n *Notifier) post(kind state.NotificationKind, msg string) {
	if n == nil || n.store == nil {
		return
	}

	note := state.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   msg,
		CreatedAt: n.now(),
	}
	n.store.Dispatch(state.PushNotification{Notification: note})

	entry := n.log.WithField("kind", string(kind))
	switch kind {
	case state.NotifyError:
		entry.Error(msg)
	case state.NotifyWarning:
		entry.Warn(msg)
	default:
		entry.Info(msg)
	}

	if n.ttl > 0 {
		time.AfterFunc(n.ttl, func() { n.Dismiss(note.ID) })
	}
}
