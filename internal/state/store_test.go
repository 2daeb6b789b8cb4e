package state

import (
	"sync"
	"testing"
	"time"

	"github.com/foampro/foamsync/internal/model"
)

func TestStore_ZeroValueStartsAtInitial(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if !snap.UI.Loading {
		t.Fatalf("Loading = false, want true")
	}
	if snap.UI.SyncStatus != SyncIdle {
		t.Fatalf("SyncStatus = %q, want %q", snap.UI.SyncStatus, SyncIdle)
	}
	if snap.Data.Yields.OpenCell != 16000 {
		t.Fatalf("Yields.OpenCell = %v, want default 16000", snap.Data.Yields.OpenCell)
	}
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	s := NewStore()
	s.Dispatch(UpsertEstimate{Record: model.EstimateRecord{ID: "e1", Status: model.StatusDraft}})

	snap := s.Snapshot()
	snap.Data.SavedEstimates[0].Status = model.StatusPaid

	again := s.Snapshot()
	if got := again.Data.SavedEstimates[0].Status; got != model.StatusDraft {
		t.Fatalf("stored status = %q, want %q", got, model.StatusDraft)
	}
}

func TestStore_UpsertReplacesOrPrepends(t *testing.T) {
	s := NewStore()
	s.Dispatch(UpsertEstimate{Record: model.EstimateRecord{ID: "a"}})
	s.Dispatch(UpsertEstimate{Record: model.EstimateRecord{ID: "b"}})
	s.Dispatch(UpsertEstimate{Record: model.EstimateRecord{ID: "a", Notes: "updated"}})

	got := s.Snapshot().Data.SavedEstimates
	if len(got) != 2 {
		t.Fatalf("len(SavedEstimates) = %d, want 2", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("order = %s,%s, want b,a", got[0].ID, got[1].ID)
	}
	if got[1].Notes != "updated" {
		t.Fatalf("Notes = %q, want updated", got[1].Notes)
	}
}

func TestStore_ReplaceIgnoresUnknown(t *testing.T) {
	s := NewStore()
	s.Dispatch(ReplaceEstimate{Record: model.EstimateRecord{ID: "ghost"}})
	s.Dispatch(AttachFieldLog{ID: "ghost", URL: "https://x"})
	s.Dispatch(RemoveEstimate{ID: "ghost"})
	s.Dispatch(nil)

	if n := len(s.Snapshot().Data.SavedEstimates); n != 0 {
		t.Fatalf("len(SavedEstimates) = %d, want 0", n)
	}
}

func TestStore_BatchIsOneDispatch(t *testing.T) {
	s := NewStore()
	before := s.Version()

	s.Dispatch(Batch{
		SetWarehouse{Warehouse: model.Warehouse{OpenCellSets: -2}},
		UpsertEstimate{Record: model.EstimateRecord{ID: "wo", Status: model.StatusWorkOrder}},
		SetView{View: ViewDashboard},
	})

	if got := s.Version() - before; got != 1 {
		t.Fatalf("versions advanced by %d, want 1", got)
	}
	snap := s.Snapshot()
	if snap.Data.Warehouse.OpenCellSets != -2 {
		t.Fatalf("OpenCellSets = %v, want -2", snap.Data.Warehouse.OpenCellSets)
	}
	if len(snap.Data.SavedEstimates) != 1 {
		t.Fatalf("len(SavedEstimates) = %d, want 1", len(snap.Data.SavedEstimates))
	}
}

func TestStore_ExpireSyncSuccessOnlyFromSuccess(t *testing.T) {
	s := NewStore()

	s.Dispatch(SetSyncStatus{Status: SyncPending})
	s.Dispatch(ExpireSyncSuccess{})
	if got := s.Snapshot().UI.SyncStatus; got != SyncPending {
		t.Fatalf("SyncStatus = %q, want pending", got)
	}

	s.Dispatch(SetSyncStatus{Status: SyncSuccess})
	s.Dispatch(ExpireSyncSuccess{})
	if got := s.Snapshot().UI.SyncStatus; got != SyncIdle {
		t.Fatalf("SyncStatus = %q, want idle", got)
	}
}

func TestStore_NotificationStackIsBounded(t *testing.T) {
	s := NewStore()
	for i := 0; i < maxNotifications+2; i++ {
		s.Dispatch(PushNotification{Notification: Notification{ID: string(rune('a' + i))}})
	}

	ui := s.Snapshot().UI
	if len(ui.Notifications) != maxNotifications {
		t.Fatalf("len(Notifications) = %d, want %d", len(ui.Notifications), maxNotifications)
	}
	latest, ok := ui.LatestNotification()
	if !ok || latest.ID != string(rune('a'+maxNotifications+1)) {
		t.Fatalf("latest = %+v, want newest", latest)
	}

	s.Dispatch(DismissNotification{ID: latest.ID})
	if len(s.Snapshot().UI.Notifications) != maxNotifications-1 {
		t.Fatalf("dismiss did not remove notification")
	}
}

func TestStore_LogoutResets(t *testing.T) {
	s := NewStore()
	s.Dispatch(SetSession{Session: &model.Session{Username: "acme"}})
	s.Dispatch(UpsertEstimate{Record: model.EstimateRecord{ID: "e1"}})

	s.Dispatch(Logout{})

	snap := s.Snapshot()
	if snap.Session != nil {
		t.Fatalf("Session = %+v, want nil", snap.Session)
	}
	if len(snap.Data.SavedEstimates) != 0 {
		t.Fatalf("SavedEstimates not reset")
	}
	if snap.UI.Loading {
		t.Fatalf("Loading = true after logout, want false")
	}
}

func TestStore_SubscribeCoalesces(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		s.Dispatch(SetView{View: ViewWarehouse})
	}

	select {
	case c := <-ch:
		if c.Version != s.Version() {
			t.Fatalf("Change.Version = %d, want latest %d", c.Version, s.Version())
		}
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
}

func TestStore_ConcurrentDispatchAndSnapshot(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Dispatch(SetWarehouse{Warehouse: model.Warehouse{OpenCellSets: float64(j)}})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()

	if got := s.Version(); got != 200 {
		t.Fatalf("Version = %d, want 200", got)
	}
}
