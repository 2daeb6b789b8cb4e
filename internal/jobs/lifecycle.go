package jobs

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/state"
)

// ConfirmWorkOrder turns the form into a work order. Stock deduction, the
// record upsert and equipment claims land in one dispatch; the field log
// and the push follow in the background.
func (e *Engine) ConfirmWorkOrder(results model.CalculationResults) (model.EstimateRecord, error) {
	snap := e.store.Snapshot()
	if id := snap.UI.EditingEstimateID; id != "" {
		if rec, ok := snap.Data.FindEstimate(id); ok && rec.Status != model.StatusDraft && rec.Status != "" {
			err := fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, id, rec.Status)
			e.reject(err)
			return model.EstimateRecord{}, err
		}
	}

	d, err := e.buildRecord(snap, results, model.StatusWorkOrder)
	if err != nil {
		e.reject(err)
		return model.EstimateRecord{}, err
	}
	rec := d.record

	warehouse := deductStock(snap.Data.Warehouse, rec.Materials.OpenCellSets, rec.Materials.ClosedCellSets, rec.Materials.Inventory)
	equipment := claimEquipment(snap.Data.Equipment, rec.Materials.Equipment, model.LastSeen{
		JobID:        rec.ID,
		CustomerName: rec.Customer.Name,
		Date:         e.timestamp(),
		CrewMember:   "Assigned to Job",
	})

	actions := append(d.actions,
		state.SetWarehouse{Warehouse: warehouse},
		state.SetEquipment{Equipment: equipment},
		state.SetView{View: state.ViewDashboard},
	)
	e.store.Dispatch(actions)

	log := e.log.WithField("estimate_id", rec.ID)
	log.WithFields(logrus.Fields{
		"open_sets":   rec.Materials.OpenCellSets,
		"closed_sets": rec.Materials.ClosedCellSets,
		"tools":       len(rec.Materials.Equipment),
	}).Info("work order confirmed")
	e.notifier.Success("Work Order Created. Syncing in background...")

	e.background("work_order", func(ctx context.Context, session model.Session) {
		e.store.Dispatch(state.SetSyncStatus{Status: state.SyncSyncing})

		url, err := e.remote.CreateFieldLog(ctx, rec, session.StorageHandle, session.StoreHandle)
		if err != nil {
			log.WithError(err).Warn("field log creation failed")
		} else if url != "" {
			e.store.Dispatch(state.AttachFieldLog{ID: rec.ID, URL: url})
		}

		if err := e.sync.Reconcile(ctx); err != nil {
			log.WithError(err).Error("work order sync failed")
			e.store.Dispatch(state.SetSyncStatus{Status: state.SyncError})
			e.notifier.Error("Background Sync Failed. Check Connection.")
			return
		}
		e.notifier.Success("Work Order & Sheet Synced Successfully")
	})
	return rec, nil
}

// Invoice moves the work order bound to the form to Invoiced, or updates an
// existing invoice. The invoice number is assigned once.
func (e *Engine) Invoice(results model.CalculationResults) (model.EstimateRecord, error) {
	snap := e.store.Snapshot()
	rec, ok := snap.Data.FindEstimate(snap.UI.EditingEstimateID)
	if snap.UI.EditingEstimateID == "" || !ok {
		e.reject(ErrNoActiveEstimate)
		return model.EstimateRecord{}, ErrNoActiveEstimate
	}
	if rec.Status != model.StatusWorkOrder && rec.Status != model.StatusInvoiced {
		err := fmt.Errorf("%w: %s to %s", ErrInvalidTransition, rec.Status, model.StatusInvoiced)
		e.reject(err)
		return model.EstimateRecord{}, err
	}

	d, err := e.buildRecord(snap, results, model.StatusInvoiced)
	if err != nil {
		e.reject(err)
		return model.EstimateRecord{}, err
	}
	e.store.Dispatch(d.actions)
	e.log.WithFields(logrus.Fields{
		"estimate_id":    d.record.ID,
		"invoice_number": d.record.InvoiceNumber,
	}).Info("invoice saved")
	e.notifier.Success("Invoice Saved")
	return d.record, nil
}

// ApplyActuals copies crew-reported hours and materials onto the form,
// replacing what the estimate assumed.
func (e *Engine) ApplyActuals(id string) error {
	rec, snap, err := e.find(id)
	if err != nil {
		return err
	}
	if rec.Actuals == nil {
		return fmt.Errorf("%w: %s", ErrNoActuals, id)
	}

	form := snap.Data.EstimateForm.Clone()
	form.Expenses.ManHours = rec.Actuals.LaborHours
	if len(rec.Actuals.Inventory) > 0 {
		form.Inventory = slices.Clone(rec.Actuals.Inventory)
	}
	e.store.Dispatch(state.SetForm{Form: form})
	e.notifier.Success("Field actuals applied")
	return nil
}

// MarkPaid closes an invoiced job. The remote store computes the financials
// and the local record changes only when it answers.
func (e *Engine) MarkPaid(ctx context.Context, id string, confirmed bool) (model.EstimateRecord, error) {
	if !confirmed {
		return model.EstimateRecord{}, ErrConfirmationRequired
	}
	rec, snap, err := e.find(id)
	if err != nil {
		return model.EstimateRecord{}, err
	}
	if rec.Status != model.StatusInvoiced {
		return model.EstimateRecord{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, rec.Status, model.StatusPaid)
	}
	if snap.Session == nil {
		return model.EstimateRecord{}, ErrNoSession
	}

	log := e.log.WithField("estimate_id", id)
	e.notifier.Success("Processing Payment & P&L...")
	paid, err := e.remote.MarkPaid(ctx, id, snap.Session.StoreHandle)
	if err != nil {
		log.WithError(err).Error("mark paid failed")
		e.store.Dispatch(state.SetSyncStatus{Status: state.SyncError})
		e.notifier.Error("Failed to update P&L.")
		return model.EstimateRecord{}, err
	}
	if paid.ID == "" {
		paid.ID = id
	}

	e.store.Dispatch(state.Batch{
		state.ReplaceEstimate{Record: paid},
		state.SetSyncStatus{Status: state.SyncSuccess},
	})
	log.Info("job paid")
	e.notifier.Success("Paid! Profit Calculated.")
	return paid, nil
}

// Archive shelves any job that has not been paid.
func (e *Engine) Archive(id string) error {
	rec, _, err := e.find(id)
	if err != nil {
		return err
	}
	if !canTransition(rec.Status, model.StatusArchived) {
		err := fmt.Errorf("%w: %s to %s", ErrInvalidTransition, rec.Status, model.StatusArchived)
		e.reject(err)
		return err
	}
	rec.Status = model.StatusArchived
	e.store.Dispatch(state.ReplaceEstimate{Record: rec})
	e.log.WithField("estimate_id", id).Info("job archived")
	e.notifier.Success("Job Archived")
	return nil
}

// Delete removes a job locally and asks the remote store to forget it.
func (e *Engine) Delete(id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	_, snap, err := e.find(id)
	if err != nil {
		return err
	}

	actions := state.Batch{state.RemoveEstimate{ID: id}}
	if snap.UI.EditingEstimateID == id {
		actions = append(actions, state.SetEditingEstimate{ID: ""})
	}
	e.store.Dispatch(actions)

	log := e.log.WithField("estimate_id", id)
	log.Info("job deleted locally")
	e.background("delete", func(ctx context.Context, session model.Session) {
		if err := e.remote.DeleteEstimate(ctx, id, session.StoreHandle); err != nil {
			log.WithError(err).Error("remote delete failed")
			e.notifier.Error("Local delete success, but server failed.")
			return
		}
		e.notifier.Success("Job Deleted")
	})
	return nil
}

// ReceivePurchaseOrder adds an order's lines to the warehouse and records
// the order.
func (e *Engine) ReceivePurchaseOrder(po model.PurchaseOrder) (model.PurchaseOrder, error) {
	if err := validateOrder(po); err != nil {
		e.reject(err)
		return model.PurchaseOrder{}, err
	}
	po = po.Clone()
	if po.ID == "" {
		po.ID = e.newID()
	}
	if po.Date == "" {
		po.Date = e.timestamp()
	}
	if po.Status == "" {
		po.Status = "Received"
	}
	if po.TotalCost == 0 {
		for i := range po.Items {
			if po.Items[i].Total == 0 {
				po.Items[i].Total = po.Items[i].Quantity * po.Items[i].UnitCost
			}
			po.TotalCost += po.Items[i].Total
		}
	}

	snap := e.store.Snapshot()
	e.store.Dispatch(state.Batch{
		state.SetWarehouse{Warehouse: receiveStock(snap.Data.Warehouse, po)},
		state.AddPurchaseOrder{Order: po},
		state.SetView{View: state.ViewWarehouse},
	})

	log := e.log.WithField("order_id", po.ID)
	log.WithField("lines", len(po.Items)).Info("purchase order received")
	e.notifier.Success("Order Saved & Stock Updated")

	e.background("purchase_order", func(ctx context.Context, _ model.Session) {
		if err := e.sync.Reconcile(ctx); err != nil {
			log.WithError(err).Error("purchase order sync failed")
			e.store.Dispatch(state.SetSyncStatus{Status: state.SyncError})
			e.notifier.Error("Background Sync Failed. Check Connection.")
		}
	})
	return po, nil
}

func validateOrder(po model.PurchaseOrder) error {
	if len(po.Items) == 0 {
		return ErrInvalidPurchaseOrder
	}
	for i, line := range po.Items {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line %d has quantity %v", ErrInvalidPurchaseOrder, i+1, line.Quantity)
		}
		switch line.Type {
		case model.LineOpenCell, model.LineClosedCell:
		case model.LineInventory:
			if line.InventoryID == "" {
				return fmt.Errorf("%w: line %d names no inventory item", ErrInvalidPurchaseOrder, i+1)
			}
		default:
			return fmt.Errorf("%w: line %d has type %q", ErrInvalidPurchaseOrder, i+1, line.Type)
		}
	}
	return nil
}

// isValidation reports whether err is a rejection rather than a failure.
func isValidation(err error) bool {
	for _, target := range []error{ErrCustomerNameRequired, ErrInvalidTransition, ErrJobFinalized, ErrInvalidPurchaseOrder, ErrNoActiveEstimate} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
