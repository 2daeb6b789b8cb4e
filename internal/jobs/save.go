package jobs

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/state"
)

// draft is a record built from the current form together with the actions
// that commit it.
type draft struct {
	record  model.EstimateRecord
	actions state.Batch
}

// buildRecord turns the current form into a record. An empty target keeps
// the existing status (Draft for new records).
func (e *Engine) buildRecord(snap state.State, results model.CalculationResults, target model.EstimateStatus) (draft, error) {
	form := snap.Data.EstimateForm
	name := strings.TrimSpace(form.CustomerProfile.Name)
	if name == "" {
		return draft{}, ErrCustomerNameRequired
	}

	id := snap.UI.EditingEstimateID
	existing, exists := model.EstimateRecord{}, false
	if id != "" {
		existing, exists = snap.Data.FindEstimate(id)
	} else {
		id = e.newID()
	}

	from := model.StatusDraft
	if exists {
		from = existing.Status
		if finalized(from) {
			return draft{}, fmt.Errorf("%w: %s is %s", ErrJobFinalized, id, from)
		}
	}
	status := from
	if target != "" {
		if !canTransition(from, target) {
			return draft{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, target)
		}
		status = target
	}

	customer := form.CustomerProfile.Clone()
	customer.Name = name
	if customer.ID == "" {
		customer.ID = e.newID()
	}
	if customer.Status == "" {
		customer.Status = "Active"
	}
	_, known := snap.Data.FindCustomer(customer.ID)

	invoiceNumber := existing.InvoiceNumber
	invoiceDate := form.InvoiceDate
	if status == model.StatusInvoiced {
		if invoiceNumber == "" {
			invoiceNumber = strings.TrimSpace(form.InvoiceNumber)
		}
		if invoiceNumber == "" {
			invoiceNumber = e.invoiceNumber()
		}
		if invoiceDate == "" {
			invoiceDate = e.today()
		}
	}

	date := existing.Date
	if date == "" {
		date = e.timestamp()
	}
	execution := existing.ExecutionStatus
	if execution == "" {
		execution = model.ExecutionNotStarted
	}
	rates := form.SqFtRates

	rec := model.EstimateRecord{
		ID:         id,
		CustomerID: customer.ID,
		Date:       date,
		Status:     status,
		Customer:   customer,
		Inputs: model.JobInputs{
			Mode:            form.Mode,
			Length:          form.Length,
			Width:           form.Width,
			WallHeight:      form.WallHeight,
			RoofPitch:       form.RoofPitch,
			IncludeGables:   form.IncludeGables,
			IsMetalSurface:  form.IsMetalSurface,
			AdditionalAreas: slices.Clone(form.AdditionalAreas),
		},
		Results: results,
		Materials: model.Materials{
			OpenCellSets:   results.OpenCellSets,
			ClosedCellSets: results.ClosedCellSets,
			Inventory:      slices.Clone(form.Inventory),
			Equipment:      form.Clone().JobEquipment,
		},
		TotalValue:        results.TotalCost,
		WallSettings:      form.WallSettings,
		RoofSettings:      form.RoofSettings,
		Expenses:          form.Expenses.Clone(),
		Notes:             form.JobNotes,
		PricingMode:       form.PricingMode,
		SqFtRates:         &rates,
		ExecutionStatus:   execution,
		Actuals:           existing.Clone().Actuals,
		Financials:        existing.Clone().Financials,
		WorkOrderSheetURL: existing.WorkOrderSheetURL,
		SitePhotos:        slices.Clone(form.SitePhotos),
		ScheduledDate:     form.ScheduledDate,
		InvoiceDate:       invoiceDate,
		InvoiceNumber:     invoiceNumber,
		PaymentTerms:      form.PaymentTerms,
	}

	nextForm := form.Clone()
	nextForm.CustomerProfile = customer
	nextForm.InvoiceNumber = invoiceNumber
	nextForm.InvoiceDate = invoiceDate

	actions := state.Batch{
		state.UpsertEstimate{Record: rec},
		state.SetEditingEstimate{ID: id},
		state.SetForm{Form: nextForm},
	}
	if !known {
		actions = append(actions, state.UpsertCustomer{Customer: customer})
	}
	return draft{record: rec, actions: actions}, nil
}

// Save creates or updates the estimate bound to the form, keeping its
// status. The customer is added to the roster if it is not there yet.
func (e *Engine) Save(results model.CalculationResults) (model.EstimateRecord, error) {
	d, err := e.buildRecord(e.store.Snapshot(), results, "")
	if err != nil {
		e.reject(err)
		return model.EstimateRecord{}, err
	}
	e.store.Dispatch(d.actions)
	e.log.WithField("estimate_id", d.record.ID).Info("estimate saved")
	e.notifier.Success("Estimate Saved")
	return d.record, nil
}

// reject surfaces a validation failure to the user.
func (e *Engine) reject(err error) {
	switch {
	case errors.Is(err, ErrCustomerNameRequired):
		e.notifier.Error("Customer Name Required to Save")
	case errors.Is(err, ErrJobFinalized):
		e.notifier.Error("Paid or archived jobs cannot be edited.")
	case errors.Is(err, ErrInvalidTransition):
		e.notifier.Error("That status change is not allowed.")
	case errors.Is(err, ErrInvalidPurchaseOrder):
		e.notifier.Error("Purchase order needs at least one valid line.")
	case errors.Is(err, ErrNoActiveEstimate):
		e.notifier.Error("Open a work order first.")
	default:
		e.notifier.Error(err.Error())
	}
	if isValidation(err) {
		e.log.WithError(err).Warn("operation rejected")
		return
	}
	e.log.WithError(err).Error("operation failed")
}

// SaveCustomer adds or updates a roster customer. The form follows along
// when it refers to the same customer.
func (e *Engine) SaveCustomer(c model.CustomerProfile) (model.CustomerProfile, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		e.reject(ErrCustomerNameRequired)
		return model.CustomerProfile{}, ErrCustomerNameRequired
	}
	if c.ID == "" {
		c.ID = e.newID()
	}
	if c.Status == "" {
		c.Status = "Active"
	}

	actions := state.Batch{state.UpsertCustomer{Customer: c}}
	snap := e.store.Snapshot()
	if snap.Data.CustomerProfile.ID == c.ID {
		form := snap.Data.EstimateForm.Clone()
		form.CustomerProfile = c.Clone()
		actions = append(actions, state.SetForm{Form: form})
	}
	e.store.Dispatch(actions)
	e.notifier.Success("Customer Saved")
	return c, nil
}

// NewEstimate clears the form for a new estimate.
func (e *Engine) NewEstimate() {
	e.store.Dispatch(state.ResetForm{})
}

// LoadForEditing binds the form to an existing record.
func (e *Engine) LoadForEditing(id string) error {
	rec, snap, err := e.find(id)
	if err != nil {
		return err
	}

	form := snap.Data.EstimateForm.Clone()
	form.Mode = rec.Inputs.Mode
	form.Length = rec.Inputs.Length
	form.Width = rec.Inputs.Width
	form.WallHeight = rec.Inputs.WallHeight
	form.RoofPitch = rec.Inputs.RoofPitch
	form.IncludeGables = rec.Inputs.IncludeGables
	form.IsMetalSurface = rec.Inputs.IsMetalSurface
	form.AdditionalAreas = slices.Clone(rec.Inputs.AdditionalAreas)
	form.WallSettings = rec.WallSettings
	form.RoofSettings = rec.RoofSettings
	form.Inventory = slices.Clone(rec.Materials.Inventory)
	form.JobEquipment = rec.Clone().Materials.Equipment
	form.CustomerProfile = rec.Customer.Clone()
	form.Expenses = rec.Expenses.Clone()
	form.JobNotes = rec.Notes
	form.PricingMode = rec.PricingMode
	if rec.SqFtRates != nil {
		form.SqFtRates = *rec.SqFtRates
	}
	form.SitePhotos = slices.Clone(rec.SitePhotos)
	form.ScheduledDate = rec.ScheduledDate
	form.InvoiceDate = rec.InvoiceDate
	form.InvoiceNumber = rec.InvoiceNumber
	form.PaymentTerms = rec.PaymentTerms
	if form.Inventory == nil {
		form.Inventory = []model.WarehouseItem{}
	}
	if form.JobEquipment == nil {
		form.JobEquipment = []model.EquipmentItem{}
	}

	e.store.Dispatch(state.Batch{
		state.SetForm{Form: form},
		state.SetEditingEstimate{ID: id},
		state.SetView{View: state.ViewEstimateDetail},
	})
	return nil
}
