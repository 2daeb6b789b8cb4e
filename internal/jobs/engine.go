package jobs

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/notify"
	"github.com/foampro/foamsync/internal/state"
)

// Remote is the slice of the remote store the lifecycle needs.
type Remote interface {
	CreateFieldLog(ctx context.Context, rec model.EstimateRecord, storageHandle, storeHandle string) (string, error)
	DeleteEstimate(ctx context.Context, id, storeHandle string) error
	MarkPaid(ctx context.Context, id, storeHandle string) (model.EstimateRecord, error)
	CompleteJob(ctx context.Context, id string, actuals model.Actuals, storeHandle string) error
	UploadImage(ctx context.Context, image []byte, filename, storeHandle, storageHandle string) (string, error)
	LogCrewTime(ctx context.Context, sheetURL string, start, end time.Time, user string) error
}

// Reconciler pushes the full current state to the remote store.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// Options configures an Engine. NewID, InvoiceNumber and Now default to
// uuid, a random INV- number and time.Now.
type Options struct {
	Context       context.Context
	Store         *state.Store
	Remote        Remote
	Sync          Reconciler
	Notifier      *notify.Notifier
	Logger        logrus.FieldLogger
	NewID         func() string
	InvoiceNumber func() string
	Now           func() time.Time
}

// Engine applies job lifecycle transitions. Local commits are synchronous;
// remote propagation runs in tracked background tasks.
type Engine struct {
	ctx           context.Context
	store         *state.Store
	remote        Remote
	sync          Reconciler
	notifier      *notify.Notifier
	log           logrus.FieldLogger
	newID         func() string
	invoiceNumber func() string
	now           func() time.Time

	wg sync.WaitGroup
}

// New validates opts and returns an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("jobs: store is required")
	}
	if opts.Remote == nil {
		return nil, errors.New("jobs: remote is required")
	}
	if opts.Sync == nil {
		return nil, errors.New("jobs: reconciler is required")
	}
	e := &Engine{
		ctx:           opts.Context,
		store:         opts.Store,
		remote:        opts.Remote,
		sync:          opts.Sync,
		notifier:      opts.Notifier,
		log:           opts.Logger,
		newID:         opts.NewID,
		invoiceNumber: opts.InvoiceNumber,
		now:           opts.Now,
	}
	if e.ctx == nil {
		e.ctx = context.Background()
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	e.log = e.log.WithField("component", "jobs")
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.invoiceNumber == nil {
		e.invoiceNumber = randomInvoiceNumber
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Wait blocks until every background task started so far has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// background runs fn after the local commit has been published. Its outcome
// only reaches the user through notifications and sync status.
func (e *Engine) background(name string, fn func(ctx context.Context, session model.Session)) {
	snap := e.store.Snapshot()
	if snap.Session == nil {
		e.log.WithField("task", name).Debug("no session, skipping remote step")
		return
	}
	session := *snap.Session

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn(e.ctx, session)
	}()
}

func (e *Engine) today() string {
	return e.now().Format("2006-01-02")
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

// randomInvoiceNumber is a human-facing reference, not a key; collisions
// are tolerated.
func randomInvoiceNumber() string {
	return fmt.Sprintf("INV-%d", rand.IntN(100000))
}

func (e *Engine) find(id string) (model.EstimateRecord, state.State, error) {
	snap := e.store.Snapshot()
	rec, ok := snap.Data.FindEstimate(id)
	if !ok {
		return model.EstimateRecord{}, snap, fmt.Errorf("%w: %s", ErrEstimateNotFound, id)
	}
	return rec, snap, nil
}
