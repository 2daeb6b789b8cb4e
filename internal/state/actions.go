package state

import (
	"slices"

	"github.com/foampro/foamsync/internal/model"
)

// Action is a named state transition. The set is closed: only this package
// can define actions, and each one is total over any State.
type Action interface {
	apply(State) State
}

// Batch applies its actions in order as one dispatch.
type Batch []Action

func (b Batch) apply(s State) State {
	for _, a := range b {
		if a != nil {
			s = a.apply(s)
		}
	}
	return s
}

// SetSession replaces the active session. A nil session clears it.
type SetSession struct{ Session *model.Session }

func (a SetSession) apply(s State) State {
	s.Session = a.Session.Clone()
	return s
}

// Logout clears the session and resets data and UI to their initial values.
type Logout struct{}

func (Logout) apply(State) State {
	s := Initial()
	s.UI.Loading = false
	return s
}

// LoadData replaces the application data and ends loading.
type LoadData struct{ Data model.AppData }

func (a LoadData) apply(s State) State {
	s.Data = a.Data.Clone()
	s.UI.Loading = false
	return s
}

type SetLoading struct{ Loading bool }

func (a SetLoading) apply(s State) State {
	s.UI.Loading = a.Loading
	return s
}

type SetInitialized struct{ Initialized bool }

func (a SetInitialized) apply(s State) State {
	s.UI.Initialized = a.Initialized
	return s
}

type SetSyncStatus struct{ Status SyncStatus }

func (a SetSyncStatus) apply(s State) State {
	s.UI.SyncStatus = a.Status
	return s
}

// ExpireSyncSuccess returns a success status to idle. Any other status is
// left alone.
type ExpireSyncSuccess struct{}

func (ExpireSyncSuccess) apply(s State) State {
	if s.UI.SyncStatus == SyncSuccess {
		s.UI.SyncStatus = SyncIdle
	}
	return s
}

// PushNotification shows a notification, dropping the oldest when the stack
// is full.
type PushNotification struct{ Notification Notification }

func (a PushNotification) apply(s State) State {
	s.UI.Notifications = append(s.UI.Notifications, a.Notification)
	if extra := len(s.UI.Notifications) - maxNotifications; extra > 0 {
		s.UI.Notifications = s.UI.Notifications[extra:]
	}
	return s
}

type DismissNotification struct{ ID string }

func (a DismissNotification) apply(s State) State {
	s.UI.Notifications = slices.DeleteFunc(s.UI.Notifications, func(n Notification) bool {
		return n.ID == a.ID
	})
	return s
}

type SetView struct{ View View }

func (a SetView) apply(s State) State {
	s.UI.View = a.View
	return s
}

// SetEditingEstimate selects the record the form is bound to. An empty ID
// means the form describes a new estimate.
type SetEditingEstimate struct{ ID string }

func (a SetEditingEstimate) apply(s State) State {
	s.UI.EditingEstimateID = a.ID
	return s
}

type SetViewingCustomer struct{ ID string }

func (a SetViewingCustomer) apply(s State) State {
	s.UI.ViewingCustomerID = a.ID
	return s
}

// SetForm replaces the current form.
type SetForm struct{ Form model.EstimateForm }

func (a SetForm) apply(s State) State {
	s.Data.EstimateForm = a.Form.Clone()
	return s
}

// ResetForm restores a blank form and detaches it from any record.
type ResetForm struct{}

func (ResetForm) apply(s State) State {
	s.Data.EstimateForm = model.DefaultForm()
	s.UI.EditingEstimateID = ""
	return s
}

// UpsertEstimate replaces the record with the same id, or prepends it.
type UpsertEstimate struct{ Record model.EstimateRecord }

func (a UpsertEstimate) apply(s State) State {
	rec := a.Record.Clone()
	if i := indexEstimate(s.Data.SavedEstimates, rec.ID); i >= 0 {
		s.Data.SavedEstimates[i] = rec
		return s
	}
	s.Data.SavedEstimates = append([]model.EstimateRecord{rec}, s.Data.SavedEstimates...)
	return s
}

// ReplaceEstimate replaces the record with the same id. Unknown ids are
// ignored.
type ReplaceEstimate struct{ Record model.EstimateRecord }

func (a ReplaceEstimate) apply(s State) State {
	if i := indexEstimate(s.Data.SavedEstimates, a.Record.ID); i >= 0 {
		s.Data.SavedEstimates[i] = a.Record.Clone()
	}
	return s
}

type RemoveEstimate struct{ ID string }

func (a RemoveEstimate) apply(s State) State {
	s.Data.SavedEstimates = slices.DeleteFunc(s.Data.SavedEstimates, func(r model.EstimateRecord) bool {
		return r.ID == a.ID
	})
	return s
}

// AttachFieldLog records the field log URL on a record if it still exists.
type AttachFieldLog struct {
	ID  string
	URL string
}

func (a AttachFieldLog) apply(s State) State {
	if i := indexEstimate(s.Data.SavedEstimates, a.ID); i >= 0 {
		s.Data.SavedEstimates[i].WorkOrderSheetURL = a.URL
	}
	return s
}

// UpsertCustomer replaces the roster entry with the same id, or appends it.
type UpsertCustomer struct{ Customer model.CustomerProfile }

func (a UpsertCustomer) apply(s State) State {
	c := a.Customer.Clone()
	i := slices.IndexFunc(s.Data.Customers, func(x model.CustomerProfile) bool { return x.ID == c.ID })
	if i >= 0 {
		s.Data.Customers[i] = c
	} else {
		s.Data.Customers = append(s.Data.Customers, c)
	}
	return s
}

type SetWarehouse struct{ Warehouse model.Warehouse }

func (a SetWarehouse) apply(s State) State {
	s.Data.Warehouse = a.Warehouse.Clone()
	return s
}

type SetEquipment struct{ Equipment []model.EquipmentItem }

func (a SetEquipment) apply(s State) State {
	s.Data.Equipment = make([]model.EquipmentItem, 0, len(a.Equipment))
	for _, e := range a.Equipment {
		s.Data.Equipment = append(s.Data.Equipment, e.Clone())
	}
	return s
}

// AddPurchaseOrder prepends a received order.
type AddPurchaseOrder struct{ Order model.PurchaseOrder }

func (a AddPurchaseOrder) apply(s State) State {
	s.Data.PurchaseOrders = append([]model.PurchaseOrder{a.Order.Clone()}, s.Data.PurchaseOrders...)
	return s
}

type AppendMaterialLogs struct{ Entries []model.MaterialUsageLogEntry }

func (a AppendMaterialLogs) apply(s State) State {
	s.Data.MaterialLogs = append(s.Data.MaterialLogs, a.Entries...)
	return s
}

type SetCompanyProfile struct{ Profile model.CompanyProfile }

func (a SetCompanyProfile) apply(s State) State {
	s.Data.CompanyProfile = a.Profile
	return s
}

// SetPricing replaces the company-wide yields and costs.
type SetPricing struct {
	Yields model.Yields
	Costs  model.Costs
}

func (a SetPricing) apply(s State) State {
	s.Data.Yields = a.Yields
	s.Data.Costs = a.Costs
	return s
}

func indexEstimate(list []model.EstimateRecord, id string) int {
	return slices.IndexFunc(list, func(r model.EstimateRecord) bool { return r.ID == id })
}
