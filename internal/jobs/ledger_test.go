package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foampro/foamsync/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.EstimateStatus
		want     bool
	}{
		{"", model.StatusWorkOrder, true},
		{model.StatusDraft, model.StatusDraft, true},
		{model.StatusDraft, model.StatusWorkOrder, true},
		{model.StatusDraft, model.StatusInvoiced, false},
		{model.StatusWorkOrder, model.StatusInvoiced, true},
		{model.StatusWorkOrder, model.StatusDraft, false},
		{model.StatusInvoiced, model.StatusPaid, true},
		{model.StatusInvoiced, model.StatusWorkOrder, false},
		{model.StatusInvoiced, model.StatusArchived, true},
		{model.StatusPaid, model.StatusArchived, false},
		{model.StatusArchived, model.StatusDraft, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canTransition(tt.from, tt.to), "%q -> %q", tt.from, tt.to)
	}
}

func TestDeductStock_MatchesByIDThenName(t *testing.T) {
	w := model.Warehouse{
		OpenCellSets: 1,
		Items: []model.WarehouseItem{
			{ID: "a", Name: "Tape", Quantity: 5},
			{ID: "b", Name: "Plastic Sheeting", Quantity: 2},
		},
	}
	got := deductStock(w, 2.5, 0, []model.WarehouseItem{
		{ID: "a", Quantity: 1},
		{Name: " plastic sheeting ", Quantity: 3},
		{Name: "Unknown", Quantity: 9},
	})

	assert.InDelta(t, -1.5, got.OpenCellSets, 1e-9)
	assert.Equal(t, 4.0, got.Items[0].Quantity)
	assert.Equal(t, -1.0, got.Items[1].Quantity)
	assert.Equal(t, 5.0, w.Items[0].Quantity, "input must not be modified")
}

func TestReceiveStock_SkipsUnknownItems(t *testing.T) {
	w := model.Warehouse{Items: []model.WarehouseItem{{ID: "a", Quantity: 1}}}
	got := receiveStock(w, model.PurchaseOrder{Items: []model.PurchaseOrderLine{
		{Type: model.LineInventory, InventoryID: "a", Quantity: 2},
		{Type: model.LineInventory, InventoryID: "zzz", Quantity: 7},
		{Type: model.LineClosedCell, Quantity: 1.5},
	}})

	assert.Equal(t, 3.0, got.Items[0].Quantity)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 1.5, got.ClosedCellSets)
}

func TestUsageLogs_SkipsZeroQuantities(t *testing.T) {
	logs := usageLogs(model.Actuals{ClosedCellSets: 2, Inventory: []model.WarehouseItem{{Name: "Tape"}}}, "Jane", "crew", "2024-03-14")
	assert.Len(t, logs, 1)
	assert.Equal(t, "Closed Cell", logs[0].MaterialName)
}
