package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/foampro/foamsync/internal/calc"
	"github.com/foampro/foamsync/internal/model"
)

// actionDoneMsg reports the outcome of a key-driven action.
type actionDoneMsg struct {
	label string
	err   error
}

var errNotWired = errors.New("not available")

func (m Model) actionCmd(label string, fn func(ctx context.Context) error) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, ActionTimeout)
		defer cancel()
		return actionDoneMsg{label: label, err: fn(ctx)}
	}
}

func (m Model) pushCmd() tea.Cmd {
	sync := m.sync
	return m.actionCmd("Push", func(ctx context.Context) error {
		if sync == nil {
			return errNotWired
		}
		return sync.Push(ctx)
	})
}

func (m Model) pullCmd() tea.Cmd {
	sync := m.sync
	return m.actionCmd("Pull", func(ctx context.Context) error {
		if sync == nil {
			return errNotWired
		}
		return sync.Pull(ctx)
	})
}

// transition binds the form to the record, recalculates, and hands the
// results to fn. The form is shared, so transitions run one at a time.
func (m Model) transition(label, id string, fn func(Lifecycle, model.CalculationResults) error) tea.Cmd {
	jobs, store, editing := m.jobs, m.store, m.editing
	return m.actionCmd(label, func(context.Context) error {
		if jobs == nil || store == nil {
			return errNotWired
		}
		editing.Lock()
		defer editing.Unlock()
		if err := jobs.LoadForEditing(id); err != nil {
			return err
		}
		return fn(jobs, calc.Calculate(store.Snapshot().Data))
	})
}

func (m Model) workOrderCmd(id string) tea.Cmd {
	return m.transition("Work order", id, func(j Lifecycle, r model.CalculationResults) error {
		_, err := j.ConfirmWorkOrder(r)
		return err
	})
}

func (m Model) invoiceCmd(id string) tea.Cmd {
	return m.transition("Invoice", id, func(j Lifecycle, r model.CalculationResults) error {
		_, err := j.Invoice(r)
		return err
	})
}

func (m Model) jobCmd(label string, fn func(Lifecycle) error) tea.Cmd {
	jobs := m.jobs
	return m.actionCmd(label, func(context.Context) error {
		if jobs == nil {
			return errNotWired
		}
		return fn(jobs)
	})
}

func (m Model) applyActualsCmd(id string) tea.Cmd {
	return m.jobCmd("Apply actuals", func(j Lifecycle) error { return j.ApplyActuals(id) })
}

func (m Model) archiveCmd(id string) tea.Cmd {
	return m.jobCmd("Archive", func(j Lifecycle) error { return j.Archive(id) })
}

func (m Model) startJobCmd(id string) tea.Cmd {
	return m.jobCmd("Start job", func(j Lifecycle) error { return j.StartJob(id) })
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return m.jobCmd("Delete", func(j Lifecycle) error { return j.Delete(id, true) })
}

func (m Model) markPaidCmd(id string) tea.Cmd {
	jobs := m.jobs
	return m.actionCmd("Mark paid", func(ctx context.Context) error {
		if jobs == nil {
			return errNotWired
		}
		_, err := jobs.MarkPaid(ctx, id, true)
		return err
	})
}
