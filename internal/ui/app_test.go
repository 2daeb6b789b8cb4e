package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/prefs"
	"github.com/foampro/foamsync/internal/state"
)

type fakeLifecycle struct {
	mu        sync.Mutex
	calls     []string
	err       error
	loadDelay time.Duration
}

func (f *fakeLifecycle) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeLifecycle) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLifecycle) LoadForEditing(id string) error {
	err := f.record("load " + id)
	time.Sleep(f.loadDelay)
	return err
}
func (f *fakeLifecycle) ConfirmWorkOrder(model.CalculationResults) (model.EstimateRecord, error) {
	return model.EstimateRecord{}, f.record("confirm")
}
func (f *fakeLifecycle) Invoice(model.CalculationResults) (model.EstimateRecord, error) {
	return model.EstimateRecord{}, f.record("invoice")
}
func (f *fakeLifecycle) ApplyActuals(id string) error { return f.record("actuals " + id) }
func (f *fakeLifecycle) MarkPaid(_ context.Context, id string, confirmed bool) (model.EstimateRecord, error) {
	if !confirmed {
		return model.EstimateRecord{}, f.record("paid unconfirmed " + id)
	}
	return model.EstimateRecord{}, f.record("paid " + id)
}
func (f *fakeLifecycle) Archive(id string) error { return f.record("archive " + id) }
func (f *fakeLifecycle) Delete(id string, confirmed bool) error {
	if !confirmed {
		return f.record("delete unconfirmed " + id)
	}
	return f.record("delete " + id)
}
func (f *fakeLifecycle) StartJob(id string) error { return f.record("start " + id) }

type fakeSyncer struct {
	pushes, pulls int
	err           error
}

func (f *fakeSyncer) Push(context.Context) error { f.pushes++; return f.err }
func (f *fakeSyncer) Pull(context.Context) error { f.pulls++; return f.err }

func newTestModel(t *testing.T, records ...model.EstimateRecord) (Model, *fakeLifecycle, *fakeSyncer) {
	t.Helper()
	store := state.NewStore()
	data := model.DefaultAppData()
	data.SavedEstimates = records
	store.Dispatch(state.LoadData{Data: data})

	jobs := &fakeLifecycle{}
	syncer := &fakeSyncer{}
	m := New(Options{
		Store:     store,
		Sync:      syncer,
		Jobs:      jobs,
		PrefsPath: t.TempDir() + "/prefs.toml",
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), jobs, syncer
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_WorkOrderLoadsThenConfirms(t *testing.T) {
	m, jobs, _ := newTestModel(t, model.EstimateRecord{ID: "e1", Status: model.StatusDraft, Customer: model.CustomerProfile{Name: "Ada"}})

	m, cmd := press(t, m, runes("w"))
	if cmd == nil {
		t.Fatalf("w returned no command")
	}
	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	if !ok || done.err != nil {
		t.Fatalf("msg = %#v, want successful actionDoneMsg", msg)
	}
	got := jobs.called()
	if len(got) != 2 || got[0] != "load e1" || got[1] != "confirm" {
		t.Fatalf("calls = %v, want [load e1 confirm]", got)
	}

	next, _ := m.Update(done)
	if next.(Model).lastAction != "Work order" {
		t.Fatalf("lastAction = %q", next.(Model).lastAction)
	}
}

func TestModel_TransitionsDoNotInterleave(t *testing.T) {
	m, jobs, _ := newTestModel(t,
		model.EstimateRecord{ID: "a", Status: model.StatusDraft},
		model.EstimateRecord{ID: "b", Status: model.StatusWorkOrder},
	)
	jobs.loadDelay = 20 * time.Millisecond

	cmds := []tea.Cmd{m.workOrderCmd("a"), m.invoiceCmd("b")}
	var wg sync.WaitGroup
	for _, cmd := range cmds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd()
		}()
	}
	wg.Wait()

	got := jobs.called()
	if len(got) != 4 {
		t.Fatalf("calls = %v, want 4", got)
	}
	for i := 0; i < len(got); i += 2 {
		load, action := got[i], got[i+1]
		if (load == "load a" && action != "confirm") || (load == "load b" && action != "invoice") {
			t.Fatalf("calls = %v, a transition ran against another record's form", got)
		}
	}
}

func TestModel_DeleteRequiresConfirmation(t *testing.T) {
	m, jobs, _ := newTestModel(t, model.EstimateRecord{ID: "e1", Customer: model.CustomerProfile{Name: "Ada"}})

	m, cmd := press(t, m, runes("d"))
	if cmd != nil {
		t.Fatalf("d should only open the modal")
	}
	if m.modal == nil {
		t.Fatalf("modal not opened")
	}

	m, cmd = press(t, m, runes("n"))
	if cmd != nil || m.modal != nil {
		t.Fatalf("cancel should close the modal without a command")
	}
	if got := jobs.called(); len(got) != 0 {
		t.Fatalf("calls = %v, want none", got)
	}

	m, _ = press(t, m, runes("d"))
	m, cmd = press(t, m, runes("y"))
	if m.modal != nil || cmd == nil {
		t.Fatalf("confirm should close the modal and return the delete command")
	}
	cmd()
	if got := jobs.called(); len(got) != 1 || got[0] != "delete e1" {
		t.Fatalf("calls = %v, want [delete e1]", got)
	}
}

func TestModel_MarkPaidIsConfirmed(t *testing.T) {
	m, jobs, _ := newTestModel(t, model.EstimateRecord{ID: "e9", Status: model.StatusInvoiced})

	m, _ = press(t, m, runes("m"))
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter returned no command")
	}
	cmd()
	if got := jobs.called(); len(got) != 1 || got[0] != "paid e9" {
		t.Fatalf("calls = %v, want [paid e9]", got)
	}
}

func TestModel_ActionErrorIsShown(t *testing.T) {
	m, jobs, _ := newTestModel(t, model.EstimateRecord{ID: "e1"})
	jobs.err = errors.New("boom")

	_, cmd := press(t, m, runes("x"))
	done := cmd().(actionDoneMsg)
	next, _ := m.Update(done)
	got := next.(Model)
	if got.lastErr == nil || got.lastAction != "Archive" {
		t.Fatalf("lastAction = %q, lastErr = %v", got.lastAction, got.lastErr)
	}
}

func TestModel_PushAndPull(t *testing.T) {
	m, _, syncer := newTestModel(t)

	_, cmd := press(t, m, runes("p"))
	cmd()
	_, cmd = press(t, m, runes("r"))
	cmd()
	if syncer.pushes != 1 || syncer.pulls != 1 {
		t.Fatalf("pushes = %d, pulls = %d, want 1, 1", syncer.pushes, syncer.pulls)
	}
}

func TestModel_NoJobActionsWithoutSelection(t *testing.T) {
	m, jobs, _ := newTestModel(t)

	for _, k := range []string{"w", "i", "a", "x", "s", "m", "d"} {
		var cmd tea.Cmd
		m, cmd = press(t, m, runes(k))
		if cmd != nil || m.modal != nil {
			t.Fatalf("key %q acted on an empty table", k)
		}
	}
	if got := jobs.called(); len(got) != 0 {
		t.Fatalf("calls = %v, want none", got)
	}
}

func TestModel_Navigation(t *testing.T) {
	m, _, _ := newTestModel(t,
		model.EstimateRecord{ID: "a"},
		model.EstimateRecord{ID: "b"},
		model.EstimateRecord{ID: "c"},
	)

	m, _ = press(t, m, runes("j"))
	m, _ = press(t, m, runes("j"))
	m, _ = press(t, m, runes("j"))
	if m.selectedRow != 2 {
		t.Fatalf("selectedRow = %d, want 2", m.selectedRow)
	}
	m, _ = press(t, m, runes("g"))
	if m.selectedRow != 0 {
		t.Fatalf("selectedRow = %d, want 0", m.selectedRow)
	}
	m, _ = press(t, m, runes("G"))
	if rec, _ := m.selectedJob(); rec.ID != "c" {
		t.Fatalf("selected = %q, want c", rec.ID)
	}
}

func TestModel_ViewSwitching(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = press(t, m, runes("l"))
	if m.currentView != ViewLogs {
		t.Fatalf("currentView = %v, want logs", m.currentView)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.currentView != ViewJobs {
		t.Fatalf("currentView = %v, want jobs", m.currentView)
	}

	m, _ = press(t, m, runes("?"))
	if !m.showHelp {
		t.Fatalf("help not shown")
	}
	m, _ = press(t, m, runes("x"))
	if m.showHelp {
		t.Fatalf("any key should close help")
	}
}

func TestModel_ThemeCycleIsSaved(t *testing.T) {
	m, _, _ := newTestModel(t)
	start := m.theme.Name

	m, _ = press(t, m, runes("T"))
	if m.theme.Name == start {
		t.Fatalf("theme did not change from %q", start)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if saved.Theme != m.theme.Name {
		t.Fatalf("saved theme = %q, want %q", saved.Theme, m.theme.Name)
	}
}

func TestModel_ViewRendersWithoutPanic(t *testing.T) {
	m, _, _ := newTestModel(t, model.EstimateRecord{
		ID:         "e1",
		Status:     model.StatusPaid,
		Customer:   model.CustomerProfile{Name: "Ada"},
		TotalValue: 5000,
		Financials: &model.Financials{Revenue: 5000, NetProfit: 1500},
	})
	if out := m.View(); out == "" {
		t.Fatalf("View() returned empty output")
	}
	m.currentView = ViewLogs
	if out := m.View(); out == "" {
		t.Fatalf("logs View() returned empty output")
	}
}
