package state

import (
	"sync"
	"time"

	"github.com/foampro/foamsync/internal/model"
)

// SyncStatus reflects the most recent background push lifecycle.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncPending SyncStatus = "pending"
	SyncSyncing SyncStatus = "syncing"
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
)

// View names the screen the user is looking at.
type View string

const (
	ViewDashboard      View = "dashboard"
	ViewEstimateDetail View = "estimate_detail"
	ViewWarehouse      View = "warehouse"
	ViewCustomers      View = "customers"
	ViewCustomerDetail View = "customer_detail"
)

// NotificationKind classifies a user-facing notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyWarning NotificationKind = "warning"
	NotifyError   NotificationKind = "error"
)

// maxNotifications bounds the visible notification stack.
const maxNotifications = 5

// Notification is a short-lived message for the user.
type Notification struct {
	ID        string
	Kind      NotificationKind
	Message   string
	CreatedAt time.Time
}

// UIState is client-only presentation state. It is never pushed.
type UIState struct {
	View              View
	Loading           bool
	Initialized       bool
	SyncStatus        SyncStatus
	Notifications     []Notification
	EditingEstimateID string
	ViewingCustomerID string
}

// LatestNotification returns the newest visible notification.
func (u UIState) LatestNotification() (Notification, bool) {
	if len(u.Notifications) == 0 {
		return Notification{}, false
	}
	return u.Notifications[len(u.Notifications)-1], true
}

// State is everything the client knows at one instant.
type State struct {
	Session *model.Session
	Data    model.AppData
	UI      UIState
}

func (s State) clone() State {
	out := s
	out.Session = s.Session.Clone()
	out.Data = s.Data.Clone()
	if s.UI.Notifications != nil {
		out.UI.Notifications = append([]Notification(nil), s.UI.Notifications...)
	}
	return out
}

// Initial returns the state of a freshly started client: default data, no
// session, loading until session recovery decides otherwise.
func Initial() State {
	return State{
		Data: model.DefaultAppData(),
		UI: UIState{
			View:       ViewDashboard,
			Loading:    true,
			SyncStatus: SyncIdle,
		},
	}
}

// Change announces that a dispatch replaced the state.
type Change struct {
	Version uint64
}

// Store holds the current State and applies actions to it.
type Store struct {
	mu      sync.RWMutex
	ready   bool
	state   State
	version uint64
	subs    map[int]chan Change
	nextSub int
}

// NewStore returns a store holding Initial().
func NewStore() *Store {
	s := &Store{}
	s.mu.Lock()
	s.initLocked()
	s.mu.Unlock()
	return s
}

func (s *Store) initLocked() {
	if s.ready {
		return
	}
	s.state = Initial()
	s.ready = true
}

// Dispatch applies a to a private copy of the current state and publishes
// the result as the new state. A nil action is ignored.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
	s.state = a.apply(s.state.clone())
	s.version++
	change := Change{Version: s.version}
	for _, ch := range s.subs {
		notify(ch, change)
	}
}

// notify delivers the newest change without blocking. A slow subscriber
// loses intermediate changes but always sees the latest.
func notify(ch chan Change, change Change) {
	for {
		select {
		case ch <- change:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	if !s.ready {
		s.mu.RUnlock()
		return Initial()
	}
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Version returns the number of dispatches applied so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers for change announcements. The returned func
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]chan Change)
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}
