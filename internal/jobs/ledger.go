package jobs

import (
	"strings"

	"github.com/foampro/foamsync/internal/model"
)

// canTransition reports whether a record may move from one status to
// another. Staying put is always allowed; otherwise the lifecycle only
// advances one step, and Archived is reachable from anything but Paid.
func canTransition(from, to model.EstimateStatus) bool {
	if from == "" {
		from = model.StatusDraft
	}
	if from == to {
		return true
	}
	if to == model.StatusArchived {
		return from != model.StatusPaid
	}
	if from == model.StatusArchived {
		return false
	}
	return to.Rank() == from.Rank()+1
}

func finalized(s model.EstimateStatus) bool {
	return s == model.StatusPaid || s == model.StatusArchived
}

func sameItem(a, b model.WarehouseItem) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	return strings.TrimSpace(a.Name) != "" && strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(b.Name))
}

// deductStock removes a job's chemical sets and items from the warehouse.
// There is no floor: stock may go negative.
func deductStock(w model.Warehouse, openSets, closedSets float64, used []model.WarehouseItem) model.Warehouse {
	out := w.Clone()
	out.OpenCellSets -= openSets
	out.ClosedCellSets -= closedSets
	for _, u := range used {
		for i := range out.Items {
			if sameItem(out.Items[i], u) {
				out.Items[i].Quantity -= u.Quantity
				break
			}
		}
	}
	return out
}

// receiveStock adds a purchase order's lines to the warehouse. Inventory
// lines that name no existing item are skipped.
func receiveStock(w model.Warehouse, po model.PurchaseOrder) model.Warehouse {
	out := w.Clone()
	for _, line := range po.Items {
		switch line.Type {
		case model.LineOpenCell:
			out.OpenCellSets += line.Quantity
		case model.LineClosedCell:
			out.ClosedCellSets += line.Quantity
		case model.LineInventory:
			for i := range out.Items {
				if out.Items[i].ID == line.InventoryID {
					out.Items[i].Quantity += line.Quantity
					break
				}
			}
		}
	}
	return out
}

// claimEquipment marks every roster tool assigned to a job as in use and
// points its lastSeen at the job.
func claimEquipment(roster, assigned []model.EquipmentItem, seen model.LastSeen) []model.EquipmentItem {
	out := make([]model.EquipmentItem, len(roster))
	for i, tool := range roster {
		out[i] = tool.Clone()
		for _, a := range assigned {
			if a.ID == tool.ID {
				ls := seen
				out[i].Status = model.EquipmentInUse
				out[i].LastSeen = &ls
				break
			}
		}
	}
	return out
}

// usageLogs turns reported actuals into material usage ledger entries.
func usageLogs(a model.Actuals, customer, loggedBy, date string) []model.MaterialUsageLogEntry {
	var out []model.MaterialUsageLogEntry
	add := func(name string, qty float64, unit string) {
		if qty == 0 {
			return
		}
		out = append(out, model.MaterialUsageLogEntry{
			Date:         date,
			CustomerName: customer,
			MaterialName: name,
			Quantity:     qty,
			Unit:         unit,
			LoggedBy:     loggedBy,
		})
	}
	add(string(model.FoamOpenCell), a.OpenCellSets, "sets")
	add(string(model.FoamClosedCell), a.ClosedCellSets, "sets")
	for _, item := range a.Inventory {
		add(item.Name, item.Quantity, item.Unit)
	}
	return out
}
