package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/cache"
	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/notify"
	"github.com/foampro/foamsync/internal/state"
)

const (
	DefaultDebounce      = 3 * time.Second
	DefaultSuccessWindow = 3 * time.Second
)

var (
	// ErrNoSession is returned by operations that need an authenticated actor.
	ErrNoSession = errors.New("no active session")
	// ErrNotInitialized is returned by pushes attempted before company state
	// was loaded.
	ErrNotInitialized = errors.New("company state not loaded")
	// ErrUnsafeBaseline is returned by forced pushes while local state is
	// the built-in defaults loaded after a failed pull. Pushing it would
	// replace the company's remote data.
	ErrUnsafeBaseline = errors.New("local state is unsynced defaults; pull first")
)

// loadOrigin records where the state installed by commitLoaded came from.
type loadOrigin int

const (
	fromRemote loadOrigin = iota
	fromBackup
	fromDefaults
)

// Remote is the slice of the remote store the engine needs.
type Remote interface {
	PullCompanyState(ctx context.Context, storeHandle string) (json.RawMessage, error)
	PushCompanyState(ctx context.Context, data model.AppData, storeHandle string) error
}

// Cache is the device-local key-value store.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Options configures an Engine.
type Options struct {
	Store         *state.Store
	Remote        Remote
	Cache         Cache
	Notifier      *notify.Notifier
	Logger        logrus.FieldLogger
	Debounce      time.Duration
	SuccessWindow time.Duration
}

// Engine keeps the remote store in step with local state.
type Engine struct {
	store         *state.Store
	remote        Remote
	cache         Cache
	notifier      *notify.Notifier
	log           logrus.FieldLogger
	debounce      time.Duration
	successWindow time.Duration

	// io serializes remote traffic: at most one pull or push is in flight.
	io sync.Mutex

	mu           sync.Mutex
	ctx          context.Context
	lastSynced   string
	lastObserved string
	timer        *time.Timer
	timerGen     uint64
	decay        *time.Timer
	pushing      bool
	unsafe       bool // defaults fallback is loaded
	closed       bool
	unsubscribe  func()
	watchDone    chan struct{}
}

// New validates opts and returns an idle Engine. Call Start to begin.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("syncer: store is required")
	}
	if opts.Remote == nil {
		return nil, errors.New("syncer: remote is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("syncer: cache is required")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	window := opts.SuccessWindow
	if window <= 0 {
		window = DefaultSuccessWindow
	}
	return &Engine{
		store:         opts.Store,
		remote:        opts.Remote,
		cache:         opts.Cache,
		notifier:      opts.Notifier,
		log:           log.WithField("component", "syncer"),
		debounce:      debounce,
		successWindow: window,
		ctx:           context.Background(),
	}, nil
}

// Start begins observing the store, recovers a cached session and, when one
// exists, runs cloud-first initialization. The context bounds background
// pushes for the engine's lifetime.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.watchDone != nil {
		e.mu.Unlock()
		return errors.New("syncer: already started")
	}
	e.ctx = ctx
	changes, unsubscribe := e.store.Subscribe()
	e.unsubscribe = unsubscribe
	e.watchDone = make(chan struct{})
	e.mu.Unlock()

	go e.watch(changes)

	if !e.RecoverSession() {
		return nil
	}
	return e.Initialize(ctx)
}

// Close stops the debounce timer and the observer. In-flight requests are
// not cancelled here; cancel the Start context for that.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopTimerLocked()
	if e.decay != nil {
		e.decay.Stop()
		e.decay = nil
	}
	unsubscribe := e.unsubscribe
	done := e.watchDone
	e.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if done != nil {
		<-done
	}
}

func (e *Engine) watch(changes <-chan state.Change) {
	defer close(e.watchDone)
	for range changes {
		e.observe()
	}
}

// RecoverSession restores the cached session. It reports whether one was
// found; without one the store leaves the loading state and no network call
// is made.
func (e *Engine) RecoverSession() bool {
	raw, err := e.cache.Get(cache.SessionKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			e.log.WithError(err).Warn("read cached session")
		}
		e.store.Dispatch(state.SetLoading{Loading: false})
		return false
	}

	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s.Username) == "" {
		e.log.WithError(err).Warn("discarding unreadable cached session")
		if err := e.cache.Delete(cache.SessionKey); err != nil {
			e.log.WithError(err).Warn("delete cached session")
		}
		e.store.Dispatch(state.SetLoading{Loading: false})
		return false
	}

	e.log.WithFields(logrus.Fields{"user": s.Username, "role": s.Role}).Info("recovered session")
	e.store.Dispatch(state.SetSession{Session: &s})
	return true
}

// Login persists session and initializes from the cloud.
func (e *Engine) Login(ctx context.Context, session model.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := e.cache.Set(cache.SessionKey, raw); err != nil {
		return err
	}

	e.mu.Lock()
	e.stopTimerLocked()
	e.lastSynced = ""
	e.lastObserved = ""
	e.unsafe = false
	e.mu.Unlock()

	e.store.Dispatch(state.Batch{
		state.SetSession{Session: &session},
		state.SetInitialized{Initialized: false},
	})
	return e.Initialize(ctx)
}

// Logout forgets the session on this device and resets local state. The
// per-company backup is kept for the next offline start.
func (e *Engine) Logout() error {
	e.mu.Lock()
	e.stopTimerLocked()
	e.lastSynced = ""
	e.lastObserved = ""
	e.unsafe = false
	e.mu.Unlock()

	err := e.cache.Delete(cache.SessionKey)
	e.store.Dispatch(state.Logout{})
	return err
}

// Initialize loads company state, preferring the remote store. On remote
// failure it falls back to the device backup, then to defaults. A backup
// may hold edits the remote store never saw, so it is pushed once the
// debounce elapses. Defaults become the sync baseline and are never pushed
// unless edited.
func (e *Engine) Initialize(ctx context.Context) error {
	snap := e.store.Snapshot()
	if snap.Session == nil {
		return ErrNoSession
	}
	session := *snap.Session
	log := e.log.WithField("user", session.Username)

	e.store.Dispatch(state.Batch{
		state.SetLoading{Loading: true},
		state.SetSyncStatus{Status: state.SyncSyncing},
	})

	data, err := e.pull(ctx, session.StoreHandle, model.DefaultAppData())
	if err == nil {
		e.commitLoaded(data, state.SyncSuccess, fromRemote)
		e.scheduleDecay()
		log.Info("loaded company state from cloud")
		e.checkCrewPin(data)
		return nil
	}
	log.WithError(err).Warn("cloud load failed")

	if backup, ok := e.readBackup(session.Username); ok {
		e.commitLoaded(backup, state.SyncError, fromBackup)
		e.notifier.Error("Offline Mode: Using local backup.")
		e.checkCrewPin(backup)
		return fmt.Errorf("using local backup: %w", err)
	}

	e.commitLoaded(model.DefaultAppData(), state.SyncError, fromDefaults)
	e.notifier.Error("Sync Failed. Check Internet Connection.")
	return fmt.Errorf("using default state: %w: %w", ErrUnsafeBaseline, err)
}

// pull fetches remote state and merges it over base.
func (e *Engine) pull(ctx context.Context, storeHandle string, base model.AppData) (model.AppData, error) {
	e.io.Lock()
	defer e.io.Unlock()

	raw, err := e.remote.PullCompanyState(ctx, storeHandle)
	if err != nil {
		return model.AppData{}, err
	}
	merged, err := model.MergeOverDefaults(base, raw)
	if err != nil {
		return model.AppData{}, fmt.Errorf("merge remote state: %w", err)
	}
	return merged, nil
}

func (e *Engine) readBackup(username string) (model.AppData, bool) {
	raw, err := e.cache.Get(cache.BackupKey(username))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			e.log.WithError(err).Warn("read local backup")
		}
		return model.AppData{}, false
	}
	data, err := model.MergeOverDefaults(model.DefaultAppData(), raw)
	if err != nil {
		e.log.WithError(err).Warn("local backup unreadable")
		return model.AppData{}, false
	}
	return data, true
}

// commitLoaded installs data as the current state. Remote and default
// states also become the sync baseline; a backup leaves the baseline empty
// so the observer schedules a push for it.
func (e *Engine) commitLoaded(data model.AppData, status state.SyncStatus, origin loadOrigin) {
	fp, err := model.Fingerprint(data)
	if err != nil {
		e.log.WithError(err).Error("fingerprint loaded state")
	}

	e.mu.Lock()
	e.stopTimerLocked()
	if origin == fromBackup {
		e.lastSynced = ""
		e.lastObserved = ""
	} else {
		e.lastSynced = fp
	}
	e.unsafe = origin == fromDefaults
	e.mu.Unlock()

	e.store.Dispatch(state.Batch{
		state.LoadData{Data: data},
		state.SetInitialized{Initialized: true},
		state.SetSyncStatus{Status: status},
	})
}

func (e *Engine) checkCrewPin(data model.AppData) {
	if strings.TrimSpace(data.CompanyProfile.CrewAccessPin) == "" {
		e.notifier.Warning("Warning: Crew PIN not configured.")
	}
}

// Pull refreshes from the remote store, merging the result over the current
// data. Pending local edits not yet pushed are overwritten where the remote
// document has values.
func (e *Engine) Pull(ctx context.Context) error {
	snap := e.store.Snapshot()
	if snap.Session == nil {
		return ErrNoSession
	}

	e.store.Dispatch(state.SetSyncStatus{Status: state.SyncSyncing})
	data, err := e.pull(ctx, snap.Session.StoreHandle, e.store.Snapshot().Data)
	if err != nil {
		e.log.WithError(err).Warn("manual pull failed")
		e.store.Dispatch(state.SetSyncStatus{Status: state.SyncError})
		e.notifier.Error("Refresh Failed.")
		return err
	}

	e.commitLoaded(data, state.SyncSuccess, fromRemote)
	e.scheduleDecay()
	e.notifier.Success("Cloud data refreshed")
	return nil
}

// Push sends the full current state now, bypassing the debounce.
func (e *Engine) Push(ctx context.Context) error {
	if err := e.push(ctx, true); err != nil {
		if errors.Is(err, ErrUnsafeBaseline) {
			e.notifier.Warning("Refresh from the cloud before pushing.")
		} else {
			e.notifier.Error("Sync Failed. Check Internet.")
		}
		return err
	}
	e.notifier.Success("Cloud Sync Complete")
	return nil
}

// Reconcile pushes the full current state now without raising
// notifications. The caller reports the outcome. It refuses with
// ErrUnsafeBaseline while the state is the defaults fallback.
func (e *Engine) Reconcile(ctx context.Context) error {
	return e.push(ctx, true)
}

// observe reacts to a store change: back up locally, then schedule a push
// when the data differs from what the remote store last acknowledged.
func (e *Engine) observe() {
	snap := e.store.Snapshot()
	if snap.Session == nil || snap.UI.Loading || !snap.UI.Initialized {
		return
	}

	current, err := model.Fingerprint(snap.Data)
	if err != nil {
		e.log.WithError(err).Error("fingerprint state")
		return
	}

	e.mu.Lock()
	if e.closed || current == e.lastObserved {
		e.mu.Unlock()
		return
	}
	e.lastObserved = current
	e.mu.Unlock()

	if err := e.cache.Set(cache.BackupKey(snap.Session.Username), []byte(current)); err != nil {
		e.log.WithError(err).Warn("write local backup")
	}

	if snap.Session.IsCrew() {
		return
	}
	e.schedule(current)
}

// schedule arms the debounce for current unless a push is in flight (the
// push re-checks when it finishes) or current is already synced.
func (e *Engine) schedule(current string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.pushing {
		return
	}

	if current == e.lastSynced {
		if e.timer != nil {
			e.stopTimerLocked()
			e.store.Dispatch(state.SetSyncStatus{Status: state.SyncIdle})
		}
		return
	}

	e.store.Dispatch(state.SetSyncStatus{Status: state.SyncPending})
	e.stopTimerLocked()
	e.timerGen++
	gen := e.timerGen
	e.timer = time.AfterFunc(e.debounce, func() { e.fire(gen) })
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.timerGen || e.timer == nil {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	ctx := e.ctx
	e.mu.Unlock()

	err := e.push(ctx, false)
	if err != nil && !errors.Is(err, ErrNoSession) && !errors.Is(err, ErrNotInitialized) {
		e.notifier.Error("Cloud sync failed")
	}
}

// push sends the full current state. Unless forced, a state equal to the
// last-synced snapshot is not sent.
func (e *Engine) push(ctx context.Context, force bool) error {
	e.io.Lock()
	defer e.io.Unlock()

	snap := e.store.Snapshot()
	if snap.Session == nil {
		return ErrNoSession
	}
	if !snap.UI.Initialized {
		return ErrNotInitialized
	}
	payload, err := model.Fingerprint(snap.Data)
	if err != nil {
		e.store.Dispatch(state.SetSyncStatus{Status: state.SyncError})
		return err
	}

	e.mu.Lock()
	if force && e.unsafe {
		e.mu.Unlock()
		return ErrUnsafeBaseline
	}
	e.stopTimerLocked()
	if !force && payload == e.lastSynced {
		e.mu.Unlock()
		e.store.Dispatch(state.SetSyncStatus{Status: state.SyncIdle})
		return nil
	}
	e.pushing = true
	e.mu.Unlock()

	log := e.log.WithFields(logrus.Fields{"user": snap.Session.Username, "bytes": len(payload)})
	e.store.Dispatch(state.SetSyncStatus{Status: state.SyncSyncing})
	err = e.remote.PushCompanyState(ctx, snap.Data, snap.Session.StoreHandle)

	e.mu.Lock()
	e.pushing = false
	if err == nil {
		e.lastSynced = payload
	}
	e.mu.Unlock()

	if err != nil {
		log.WithError(err).Warn("push failed")
		e.store.Dispatch(state.SetSyncStatus{Status: state.SyncError})
	} else {
		log.Info("pushed company state")
		e.store.Dispatch(state.SetSyncStatus{Status: state.SyncSuccess})
		e.scheduleDecay()
	}

	e.recheck(payload)
	return err
}

// recheck arms a new cycle when the state moved on while pushed was in
// flight. An unchanged state after a failure waits for the next edit.
func (e *Engine) recheck(pushed string) {
	snap := e.store.Snapshot()
	if snap.Session == nil || snap.Session.IsCrew() || !snap.UI.Initialized {
		return
	}
	current, err := model.Fingerprint(snap.Data)
	if err != nil || current == pushed {
		return
	}
	e.schedule(current)
}

// scheduleDecay re-arms the success window so that it always measures from
// the latest success.
func (e *Engine) scheduleDecay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.decay != nil {
		e.decay.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(e.successWindow, func() {
		e.mu.Lock()
		current := e.decay == t
		if current {
			e.decay = nil
		}
		e.mu.Unlock()
		if current {
			e.store.Dispatch(state.ExpireSyncSuccess{})
		}
	})
	e.decay = t
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.timerGen++
}
