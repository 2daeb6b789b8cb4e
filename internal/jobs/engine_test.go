package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/notify"
	"github.com/foampro/foamsync/internal/state"
)

var errOffline = errors.New("offline")

type fakeRemote struct {
	mu sync.Mutex

	fieldLogURL string
	fieldLogErr error
	fieldLogs   []string

	deleteErr error
	deleted   []string

	paid    model.EstimateRecord
	paidErr error

	completeErr error
	completed   []string

	uploadURL string
	uploadErr error

	timeErr  error
	timeLogs []string
}

func (f *fakeRemote) CreateFieldLog(_ context.Context, rec model.EstimateRecord, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldLogs = append(f.fieldLogs, rec.ID)
	return f.fieldLogURL, f.fieldLogErr
}

func (f *fakeRemote) DeleteEstimate(_ context.Context, id, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeRemote) MarkPaid(_ context.Context, _, _ string) (model.EstimateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paid, f.paidErr
}

func (f *fakeRemote) CompleteJob(_ context.Context, id string, _ model.Actuals, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, id)
	return f.completeErr
}

func (f *fakeRemote) UploadImage(_ context.Context, _ []byte, _, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadURL, f.uploadErr
}

func (f *fakeRemote) LogCrewTime(_ context.Context, sheetURL string, _, _ time.Time, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeLogs = append(f.timeLogs, sheetURL)
	return f.timeErr
}

type fakeSync struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSync) Reconcile(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeSync) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var fixedNow = time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

type harness struct {
	store  *state.Store
	remote *fakeRemote
	sync   *fakeSync
	engine *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := state.NewStore()
	store.Dispatch(state.Batch{
		state.SetSession{Session: &model.Session{Username: "acme", Role: model.RoleAdmin, StoreHandle: "sheet", StorageHandle: "folder"}},
		state.SetLoading{Loading: false},
	})

	var ids, invoices int
	h := &harness{store: store, remote: &fakeRemote{fieldLogURL: "https://docs.example.com/log"}, sync: &fakeSync{}}
	engine, err := New(Options{
		Store:    store,
		Remote:   h.remote,
		Sync:     h.sync,
		Notifier: notify.New(store, 0, log),
		Logger:   log,
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
		InvoiceNumber: func() string {
			invoices++
			return fmt.Sprintf("INV-%d", invoices)
		},
		Now: func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	h.engine = engine
	return h
}

// fillForm puts a named customer and a small job on the form.
func (h *harness) fillForm(name string) {
	form := model.DefaultForm()
	form.CustomerProfile.Name = name
	form.Inventory = []model.WarehouseItem{{Name: "tape", Quantity: 4, Unit: "rolls"}}
	form.JobEquipment = []model.EquipmentItem{{ID: "rig-1", Name: "Rig"}}
	h.store.Dispatch(state.SetForm{Form: form})
}

func (h *harness) messages() []string {
	var out []string
	for _, n := range h.store.Snapshot().UI.Notifications {
		out = append(out, n.Message)
	}
	return out
}

func sampleResults() model.CalculationResults {
	return model.CalculationResults{OpenCellSets: 12, ClosedCellSets: 2, TotalCost: 5000}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Store: state.NewStore(), Remote: &fakeRemote{}})
	require.Error(t, err)
}
