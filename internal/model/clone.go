package model

import "slices"

// Clone returns a deep copy of d.
func (d AppData) Clone() AppData {
	out := d
	out.EstimateForm = d.EstimateForm.Clone()
	out.Warehouse = d.Warehouse.Clone()
	out.Equipment = cloneEquipment(d.Equipment)
	out.Customers = cloneEach(d.Customers, CustomerProfile.Clone)
	out.SavedEstimates = cloneEach(d.SavedEstimates, EstimateRecord.Clone)
	out.PurchaseOrders = cloneEach(d.PurchaseOrders, PurchaseOrder.Clone)
	out.MaterialLogs = slices.Clone(d.MaterialLogs)
	return out
}

// Clone returns a deep copy of f.
func (f EstimateForm) Clone() EstimateForm {
	out := f
	out.AdditionalAreas = slices.Clone(f.AdditionalAreas)
	out.Inventory = slices.Clone(f.Inventory)
	out.JobEquipment = cloneEquipment(f.JobEquipment)
	out.CustomerProfile = f.CustomerProfile.Clone()
	out.Expenses = f.Expenses.Clone()
	out.SitePhotos = slices.Clone(f.SitePhotos)
	return out
}

func (w Warehouse) Clone() Warehouse {
	out := w
	out.Items = slices.Clone(w.Items)
	return out
}

func (e EquipmentItem) Clone() EquipmentItem {
	out := e
	if e.LastSeen != nil {
		ls := *e.LastSeen
		out.LastSeen = &ls
	}
	return out
}

func (c CustomerProfile) Clone() CustomerProfile {
	out := c
	out.Logs = slices.Clone(c.Logs)
	return out
}

func (e Expenses) Clone() Expenses {
	out := e
	if e.LaborRate != nil {
		rate := *e.LaborRate
		out.LaborRate = &rate
	}
	return out
}

func (p PurchaseOrder) Clone() PurchaseOrder {
	out := p
	out.Items = slices.Clone(p.Items)
	return out
}

func (a Actuals) Clone() Actuals {
	out := a
	out.Inventory = slices.Clone(a.Inventory)
	out.CompletionPhotos = slices.Clone(a.CompletionPhotos)
	return out
}

// Clone returns a deep copy of r.
func (r EstimateRecord) Clone() EstimateRecord {
	out := r
	out.Customer = r.Customer.Clone()
	out.Inputs.AdditionalAreas = slices.Clone(r.Inputs.AdditionalAreas)
	out.Materials.Inventory = slices.Clone(r.Materials.Inventory)
	out.Materials.Equipment = cloneEquipment(r.Materials.Equipment)
	out.Expenses = r.Expenses.Clone()
	if r.SqFtRates != nil {
		rates := *r.SqFtRates
		out.SqFtRates = &rates
	}
	if r.Actuals != nil {
		actuals := r.Actuals.Clone()
		out.Actuals = &actuals
	}
	if r.Financials != nil {
		fin := *r.Financials
		out.Financials = &fin
	}
	out.SitePhotos = slices.Clone(r.SitePhotos)
	return out
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

func cloneEquipment(items []EquipmentItem) []EquipmentItem {
	return cloneEach(items, EquipmentItem.Clone)
}

func cloneEach[T any](items []T, clone func(T) T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}
