package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/foampro/foamsync/internal/model"
)

// renderDetailContent renders the selected job as label/value rows.
func (m Model) renderDetailContent(rec model.EstimateRecord, width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	var lines []string
	row := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, bg.Render(padRight(label, 12), styles.MutedText)+
			bg.Render(truncate(value, max(width-12, 8)), styles.Text))
	}
	section := func(title string) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, bg.Render(title, styles.AccentText.Bold(true)))
	}

	status := string(rec.Status)
	if status == "" {
		status = string(model.StatusDraft)
	}
	lines = append(lines, bg.Render(customerName(rec), styles.Text.Bold(true))+bg.Spaces(2)+
		m.statusBadge(status))

	section("Job")
	row("ID", rec.ID)
	row("Date", rec.Date)
	row("Scheduled", rec.ScheduledDate)
	row("Execution", string(rec.ExecutionStatus))
	row("Address", joinNonEmpty(", ", rec.Customer.Address, rec.Customer.City, rec.Customer.State))
	row("Phone", rec.Customer.Phone)
	row("Field log", rec.WorkOrderSheetURL)

	section("Scope")
	row("Walls", fmt.Sprintf("%.0f sqft", rec.Results.TotalWallArea))
	row("Roof", fmt.Sprintf("%.0f sqft", rec.Results.TotalRoofArea))
	row("Open cell", fmt.Sprintf("%.2f sets", rec.Materials.OpenCellSets))
	row("Closed cell", fmt.Sprintf("%.2f sets", rec.Materials.ClosedCellSets))
	for _, item := range rec.Materials.Inventory {
		row("  "+item.Name, fmt.Sprintf("%g %s", item.Quantity, item.Unit))
	}
	if len(rec.Materials.Equipment) > 0 {
		names := make([]string, 0, len(rec.Materials.Equipment))
		for _, e := range rec.Materials.Equipment {
			names = append(names, e.Name)
		}
		row("Equipment", strings.Join(names, ", "))
	}

	section("Money")
	row("Total", formatMoney(rec.TotalValue))
	row("Cost", formatMoney(rec.Results.TotalCost))
	row("Invoice", rec.InvoiceNumber)
	row("Invoiced", rec.InvoiceDate)
	row("Terms", rec.PaymentTerms)
	if f := rec.Financials; f != nil {
		row("Revenue", formatMoney(f.Revenue))
		row("COGS", formatMoney(f.TotalCOGS))
		row("Profit", formatMoney(f.NetProfit))
		if f.Revenue > 0 {
			row("Margin", fmt.Sprintf("%.1f%%", f.NetProfit/f.Revenue*100))
		}
	}

	if a := rec.Actuals; a != nil {
		section("Field actuals")
		row("Completed", joinNonEmpty(" by ", a.CompletionDate, a.CompletedBy))
		row("Hours", fmt.Sprintf("%g", a.LaborHours))
		row("Open cell", fmt.Sprintf("%.2f sets", a.OpenCellSets))
		row("Closed cell", fmt.Sprintf("%.2f sets", a.ClosedCellSets))
		row("Notes", a.Notes)
		if n := len(a.CompletionPhotos); n > 0 {
			row("Photos", fmt.Sprintf("%d", n))
		}
	}

	if rec.Notes != "" {
		section("Notes")
		lines = append(lines, bg.Render(truncate(rec.Notes, width), styles.Text))
	}

	return strings.Join(lines, "\n")
}

// statusBadge renders a status as a colored pill.
func (m Model) statusBadge(status string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Background)).
		Background(lipgloss.Color(m.colorForStatus(status))).
		Padding(0, 1).
		Render(titleCase(status))
}

func joinNonEmpty(sep string, values ...string) string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}
