package model

// DefaultPaymentTerms is applied to new forms.
const DefaultPaymentTerms = "Due on Receipt"

// DefaultForm returns a blank estimate form.
func DefaultForm() EstimateForm {
	return EstimateForm{
		Mode:          ModeBuilding,
		Length:        40,
		Width:         30,
		WallHeight:    10,
		RoofPitch:     "4/12",
		IncludeGables: true,
		WallSettings: FoamSettings{
			Type:            FoamClosedCell,
			Thickness:       1,
			WastePercentage: 5,
		},
		RoofSettings: FoamSettings{
			Type:            FoamOpenCell,
			Thickness:       4,
			WastePercentage: 5,
		},
		AdditionalAreas: []AdditionalArea{},
		Inventory:       []WarehouseItem{},
		JobEquipment:    []EquipmentItem{},
		CustomerProfile: CustomerProfile{Status: "Active"},
		PricingMode:     PricingLevel,
		Expenses: Expenses{
			Other: OtherExpense{Description: "Misc"},
		},
		SitePhotos:   []JobImage{},
		PaymentTerms: DefaultPaymentTerms,
	}
}

// DefaultAppData returns the hard-coded default state. Every call returns
// fresh slices.
func DefaultAppData() AppData {
	return AppData{
		EstimateForm: DefaultForm(),
		Yields: Yields{
			OpenCell:   16000,
			ClosedCell: 4000,
		},
		Costs: Costs{
			OpenCell:   2000,
			ClosedCell: 2600,
			LaborRate:  85,
		},
		Warehouse:      Warehouse{Items: []WarehouseItem{}},
		Equipment:      []EquipmentItem{},
		ShowPricing:    true,
		Customers:      []CustomerProfile{},
		SavedEstimates: []EstimateRecord{},
		PurchaseOrders: []PurchaseOrder{},
		MaterialLogs:   []MaterialUsageLogEntry{},
	}
}
