package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada-remote/internal/checkbox"
)

// checklistMountMsg asks the model to hydrate its checkboxes. It is sent
// after the first frame, so toggles that land before it do not persist.
type checklistMountMsg struct{}

var (
	upBind    = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	downBind  = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	checkBind = key.NewBinding(key.WithKeys(" ", "enter", "x"), key.WithHelp("space", "check"))
)

// ChecklistModel shows tutorial steps as persistent checkboxes.
type ChecklistModel struct {
	cl     *checkbox.Checklist
	cursor int
}

func NewChecklist(cl *checkbox.Checklist) ChecklistModel {
	return ChecklistModel{cl: cl}
}

func (m ChecklistModel) Init() tea.Cmd {
	return func() tea.Msg { return checklistMountMsg{} }
}

func (m ChecklistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checklistMountMsg:
		m.cl.Mount()
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, quitBind):
			return m, tea.Quit
		case key.Matches(msg, upBind):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, downBind):
			if m.cursor < m.cl.Len()-1 {
				m.cursor++
			}
		case key.Matches(msg, checkBind):
			if m.cursor < m.cl.Len() {
				m.cl.Entries()[m.cursor].Box.Toggle()
			}
		}
	}
	return m, nil
}

func (m ChecklistModel) View() string {
	done, total := m.cl.Progress()
	var b strings.Builder
	fmt.Fprintf(&b, "%s   %s\n\n", titleStyle.Render("チェックリスト"), mutedStyle.Render(progressBar(done, total, 28)))
	for i, e := range m.cl.Entries() {
		label := e.Label
		if e.Box.Checked() {
			label = doneStyle.Render(label)
		}
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, checkBox(e.Box.Checked()), label)
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ move • space check • q quit"))
	return panelString(b.String())
}
