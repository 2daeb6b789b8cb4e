package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/state"
)

// renderHeader shows who is signed in, job counts and the sync badge.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("foamsync", styles.Logo)}

	session := m.snapshot.Session
	if session == nil {
		parts = append(parts, bg.Render("Signed out", styles.WarningText.Bold(true)))
		if m.snapshot.UI.Loading {
			parts = append(parts, bg.Render("Loading...", styles.MutedText))
		}
	} else {
		company := strings.TrimSpace(session.CompanyName)
		if company == "" {
			company = session.Username
		}
		parts = append(parts,
			bg.Render(company, styles.Text.Bold(true)),
			bg.Render(string(session.Role), styles.MutedText),
		)
		counts := countByStatus(m.snapshot.Data.SavedEstimates)
		for _, s := range []model.EstimateStatus{model.StatusDraft, model.StatusWorkOrder, model.StatusInvoiced} {
			parts = append(parts,
				bg.Render(string(s), styles.FaintText)+bg.Space()+
					bg.Render(fmt.Sprintf("%d", counts[s]), lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(string(s))))))
		}
	}

	parts = append(parts, m.syncBadge(m.snapshot.UI.SyncStatus))
	if !m.lastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.lastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(strings.Join(parts, sep))
}

func (m Model) syncBadge(status state.SyncStatus) string {
	if status == "" {
		status = state.SyncIdle
	}
	label := "Sync " + titleCase(string(status))
	return m.theme.Styles().StatusStyle(string(status)).Render(label)
}

func countByStatus(records []model.EstimateRecord) map[model.EstimateStatus]int {
	counts := make(map[model.EstimateStatus]int)
	for _, r := range records {
		s := r.Status
		if s == "" {
			s = model.StatusDraft
		}
		counts[s]++
	}
	return counts
}

// renderCommandBar lists the keys that apply to the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		commands = []cmd{
			{"Space", ternary(m.logState.follow, "Pause", "Follow")},
			{"v", "Level"},
			{"j/k", "Scroll"},
			{"esc", "Jobs"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"f", m.filter.Label()},
			{"w", "Work order"},
			{"i", "Invoice"},
			{"m", "Paid"},
			{"d", "Delete"},
			{"p/r", "Push/Pull"},
			{"l", "Log"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderStatusLine shows the newest notification, or the last action error.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var text string
	if n, ok := m.snapshot.UI.LatestNotification(); ok {
		style := styles.SuccessText
		switch n.Kind {
		case state.NotifyWarning:
			style = styles.WarningText
		case state.NotifyError:
			style = styles.DangerText
		}
		text = bg.Render(truncate(n.Message, max(m.width-2, 10)), style)
	} else if m.lastErr != nil {
		text = bg.Render(truncate(m.lastAction+": "+m.lastErr.Error(), max(m.width-2, 10)), styles.DangerText)
	} else if m.logPath != "" {
		text = bg.Render("log "+truncateMiddle(m.logPath, 60), styles.FaintText)
	}
	return styles.Footer.Width(m.width).Render(text)
}
