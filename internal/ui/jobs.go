package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foampro/foamsync/internal/model"
)

// JobFilter narrows the jobs table to one lifecycle status.
type JobFilter int

const (
	FilterAll JobFilter = iota
	FilterDraft
	FilterWorkOrder
	FilterInvoiced
	FilterPaid
	FilterArchived
)

var filterStatus = map[JobFilter]model.EstimateStatus{
	FilterDraft:     model.StatusDraft,
	FilterWorkOrder: model.StatusWorkOrder,
	FilterInvoiced:  model.StatusInvoiced,
	FilterPaid:      model.StatusPaid,
	FilterArchived:  model.StatusArchived,
}

// next returns the filter after f, wrapping to FilterAll.
func (f JobFilter) next() JobFilter {
	if f >= FilterArchived {
		return FilterAll
	}
	return f + 1
}

// Label returns the display label for the filter.
func (f JobFilter) Label() string {
	if s, ok := filterStatus[f]; ok {
		return string(s)
	}
	return "All"
}

func (f JobFilter) matches(rec model.EstimateRecord) bool {
	want, ok := filterStatus[f]
	if !ok {
		return true
	}
	status := rec.Status
	if status == "" {
		status = model.StatusDraft
	}
	return status == want
}

// statusRank orders rows so jobs needing attention come first.
func statusRank(status model.EstimateStatus) int {
	switch status {
	case model.StatusWorkOrder:
		return 0
	case model.StatusInvoiced:
		return 1
	case model.StatusDraft, "":
		return 2
	case model.StatusPaid:
		return 3
	default:
		return 4
	}
}

// visibleJobs returns the filtered saved estimates in display order.
func (m Model) visibleJobs() []model.EstimateRecord {
	var out []model.EstimateRecord
	for _, rec := range m.snapshot.Data.SavedEstimates {
		if m.filter.matches(rec) {
			out = append(out, rec)
		}
	}
	slices.SortStableFunc(out, func(a, b model.EstimateRecord) int {
		return statusRank(a.Status) - statusRank(b.Status)
	})
	return out
}

// selectedJob returns the highlighted record, if any.
func (m Model) selectedJob() (model.EstimateRecord, bool) {
	jobs := m.visibleJobs()
	if m.selectedRow < 0 || m.selectedRow >= len(jobs) {
		return model.EstimateRecord{}, false
	}
	return jobs[m.selectedRow], true
}

func (m *Model) clampSelection() {
	n := len(m.visibleJobs())
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

// handleJobsKey processes keyboard input for the jobs view.
func (m Model) handleJobsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.CycleFilter) {
		m.filter = m.filter.next()
		m.selectedRow = 0
		return m, nil
	}

	count := len(m.visibleJobs())
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(count-1, 0)
		return m, nil
	}

	rec, ok := m.selectedJob()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.WorkOrder):
		return m, m.workOrderCmd(rec.ID)
	case key.Matches(msg, m.keys.Invoice):
		return m, m.invoiceCmd(rec.ID)
	case key.Matches(msg, m.keys.Actuals):
		return m, m.applyActualsCmd(rec.ID)
	case key.Matches(msg, m.keys.Archive):
		return m, m.archiveCmd(rec.ID)
	case key.Matches(msg, m.keys.StartJob):
		return m, m.startJobCmd(rec.ID)
	case key.Matches(msg, m.keys.MarkPaid):
		m.modal = newConfirmModal("Mark Paid",
			"Mark "+customerName(rec)+" as paid and calculate profit?",
			m.markPaidCmd(rec.ID))
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		m.modal = newConfirmModal("Delete Job",
			"Delete the job for "+customerName(rec)+"? This cannot be undone.",
			m.deleteCmd(rec.ID))
		return m, nil
	}
	return m, nil
}

func customerName(rec model.EstimateRecord) string {
	if name := strings.TrimSpace(rec.Customer.Name); name != "" {
		return name
	}
	return "Unnamed customer"
}

// renderJobs renders the jobs table and, when wide enough, the detail pane.
func (m Model) renderJobs() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	title := "Jobs (" + m.filter.Label() + ")"

	jobs := m.visibleJobs()
	if len(jobs) == 0 {
		empty := styles.MutedText.Render("No jobs")
		if m.snapshot.UI.Loading {
			empty = styles.MutedText.Render("Loading company data...")
		}
		return m.renderTitledBox(title, lipgloss.Place(m.width-2, height-2, lipgloss.Center, lipgloss.Center, empty), m.width, height, true)
	}

	if m.width < LayoutCompactWidth {
		return m.renderTitledBox(title, m.renderJobRows(jobs, m.width-2, m.theme.FocusBg), m.width, height, true)
	}

	tableWidth := m.width * 45 / 100
	if m.width >= LayoutExtraWideWidth {
		tableWidth = m.width * 35 / 100
	}
	detailWidth := m.width - tableWidth

	table := m.renderTitledBox(title, m.renderJobRows(jobs, tableWidth-2, m.theme.FocusBg), tableWidth, height, true)

	detail := styles.MutedText.Background(lipgloss.Color(m.theme.SurfaceAlt)).Render("Select a job")
	if rec, ok := m.selectedJob(); ok {
		detail = m.renderDetailContent(rec, detailWidth-4, m.theme.SurfaceAlt)
	}
	pane := m.renderTitledBox("Details", detail, detailWidth, height, false)

	return lipgloss.JoinHorizontal(lipgloss.Top, table, pane)
}

// renderJobRows renders one line per job, scrolled to keep the selection visible.
func (m Model) renderJobRows(jobs []model.EstimateRecord, width int, bgColor string) string {
	visible := max(m.contentHeight()-2, 1)
	start := 0
	if m.selectedRow >= visible {
		start = m.selectedRow - visible + 1
	}
	end := min(start+visible, len(jobs))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.selectedRow
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatJobRow(jobs[i], width, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatJobRow formats "Customer · Status $Total".
func (m Model) formatJobRow(rec model.EstimateRecord, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	status := string(rec.Status)
	if status == "" {
		status = string(model.StatusDraft)
	}
	if rec.Status == model.StatusWorkOrder && rec.ExecutionStatus != "" && rec.ExecutionStatus != model.ExecutionNotStarted {
		status += " (" + string(rec.ExecutionStatus) + ")"
	}
	amount := formatMoney(rec.TotalValue)
	nameWidth := max(width-len(status)-len(amount)-5, 10)

	var nameStyle, sepStyle, statusStyle, amountStyle lipgloss.Style
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		nameStyle, sepStyle, statusStyle, amountStyle = sel, sel, sel, sel
	} else {
		styles := m.theme.Styles()
		nameStyle = styles.Text
		sepStyle = styles.FaintText
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(string(rec.Status))))
		amountStyle = styles.MutedText
	}

	return bg.Render(truncate(customerName(rec), nameWidth), nameStyle) +
		bg.Render(" · ", sepStyle) +
		bg.Render(status, statusStyle) +
		bg.Space() +
		bg.Render(amount, amountStyle)
}

// colorForStatus returns the theme color for a job or sync status.
func (m Model) colorForStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = "draft"
	}
	if color, ok := m.theme.StatusColors[status]; ok {
		return color
	}
	return m.theme.Text
}

// renderTitledBox renders content in a box with the title embedded in the top border.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := len([]rune(title))
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	padded := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		padded = append(padded,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(padded, "\n") + "\n" + bottomBorder
}
