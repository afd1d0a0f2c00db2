// Package tui holds the Bubble Tea models: the remote todo list and the
// persistent tutorial checklist.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada-remote/internal/client"
	"github.com/Makepad-fr/tada-remote/internal/model"
)

// TodoAPI is the subset of the remote client the list view calls.
type TodoAPI interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, title string) (model.Todo, error)
	Complete(ctx context.Context, id int) (model.Todo, error)
	Delete(ctx context.Context, id int) (json.RawMessage, error)
}

const confirmDeletePrompt = "このTodoを削除しますか？"

// Results of the four remote calls. session ties a result to the mount
// that issued it; results from an older mount are dropped.
type (
	todosLoadedMsg struct {
		session int
		todos   []model.Todo
		err     error
	}
	todoCreatedMsg struct {
		session int
		todo    model.Todo
		err     error
	}
	todoToggledMsg struct {
		session int
		id      int
		todo    model.Todo
		err     error
	}
	todoDeletedMsg struct {
		session int
		id      int
		err     error
	}
)

// todoItem adapts model.Todo to bubbles/list.Item
type todoItem struct {
	model.Todo
}

func (i todoItem) Title() string       { return i.Todo.Title }
func (i todoItem) Description() string { return "" }
func (i todoItem) FilterValue() string { return i.Todo.Title }

// Custom delegate to control how items render (single line)
type todoDelegate struct{}

func (d todoDelegate) Height() int                               { return 1 }
func (d todoDelegate) Spacing() int                              { return 0 }
func (d todoDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d todoDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(todoItem)
	text := it.Todo.Title
	if it.Completed {
		text = doneStyle.Render(text)
	}
	line := fmt.Sprintf("%s %s %s", checkBox(it.Completed), mutedStyle.Render(fmt.Sprintf("#%d", it.ID)), text)
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "complete"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	reloadBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	quitBind   = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit"))
)

// TodosModel is the todo list view. The todos slice is the single source of
// truth; the bubbles list only mirrors it for rendering.
type TodosModel struct {
	api    TodoAPI
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	session  int
	todos    []model.Todo
	quitting bool

	list list.Model

	// Inline add
	adding bool
	ti     textinput.Model
	addErr string

	// Delete confirmation
	confirming bool
	confirmID  int

	status    string
	statusErr bool
}

// NewTodos builds an unmounted list view. The first load is issued by Init.
func NewTodos(ctx context.Context, api TodoAPI, logger *log.Logger) TodosModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(ctx)

	l := list.New(nil, todoDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	// "d" is taken by delete
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f")
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("todo", "todos")
	bindings := func() []key.Binding { return []key.Binding{addBind, toggleBind, deleteBind, reloadBind} }
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "新しいTodoを入力"
	ti.CharLimit = 200

	m := TodosModel{
		api:     api,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
		session: 1,
		list:    l,
		ti:      ti,
	}
	m.syncList()
	return m
}

// Todos returns the current in-memory list.
func (m TodosModel) Todos() []model.Todo { return m.todos }

func (m TodosModel) Init() tea.Cmd { return m.loadCmd() }

func (m TodosModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := msg.Height - 4
		if m.adding {
			h -= 3
		}
		m.list.SetSize(msg.Width-4, h)
		return m, nil

	case todosLoadedMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		if msg.err != nil {
			m.failed("load", msg.err)
			return m, nil
		}
		m.todos = msg.todos
		m.syncList()
		return m, nil

	case todoCreatedMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		if msg.err != nil {
			m.failed("create", msg.err)
			return m, nil
		}
		// appended in arrival order; overlapping creates are not serialized
		m.todos = append(m.todos, msg.todo)
		m.ti.SetValue("")
		m.syncList()
		m.setStatus(fmt.Sprintf("added #%d", msg.todo.ID))
		return m, nil

	case todoToggledMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		if msg.err != nil {
			m.failed("toggle", msg.err)
			return m, nil
		}
		todos := make([]model.Todo, len(m.todos))
		for i, t := range m.todos {
			if t.ID == msg.id {
				t = msg.todo
			}
			todos[i] = t
		}
		m.todos = todos
		m.syncList()
		return m, nil

	case todoDeletedMsg:
		if m.stale(msg.session) {
			return m, nil
		}
		if msg.err != nil {
			m.failed("delete", msg.err)
			return m, nil
		}
		kept := m.todos[:0:0]
		for _, t := range m.todos {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		m.todos = kept
		m.syncList()
		m.setStatus(fmt.Sprintf("removed #%d", msg.id))
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m TodosModel) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		newTitle := m.ti.Value()
		if strings.TrimSpace(newTitle) == "" {
			m.addErr = "タイトルを入力してください"
			return m, nil
		}
		m.addErr = ""
		return m, m.createCmd(newTitle)
	case "esc":
		m.adding = false
		m.addErr = ""
		m.ti.SetValue("")
		m.ti.Blur()
		return m, nil
	case "ctrl+c":
		return m.quit()
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m TodosModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	m.confirming = false
	m.confirmID = 0
	switch msg.String() {
	case "y", "Y":
		return m, m.deleteCmd(id)
	case "ctrl+c":
		return m.quit()
	}
	m.setStatus("削除をキャンセルしました")
	return m, nil
}

func (m TodosModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, quitBind):
		return m.quit()
	case key.Matches(msg, addBind):
		m.adding = true
		m.addErr = ""
		return m, m.ti.Focus()
	case key.Matches(msg, toggleBind):
		if t, ok := m.selected(); ok {
			return m, m.toggleCmd(t.ID)
		}
		return m, nil
	case key.Matches(msg, deleteBind):
		if t, ok := m.selected(); ok {
			m.confirming = true
			m.confirmID = t.ID
		}
		return m, nil
	case key.Matches(msg, reloadBind):
		return m.reload()
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// reload remounts: the list is reset and fetched again, and anything still
// in flight from the previous mount is ignored when it lands.
func (m TodosModel) reload() (tea.Model, tea.Cmd) {
	m.session++
	m.todos = nil
	m.status = ""
	m.syncList()
	return m, m.loadCmd()
}

func (m TodosModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

func (m TodosModel) stale(session int) bool {
	return m.quitting || session != m.session
}

func (m TodosModel) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.Todo, true
}

func (m *TodosModel) failed(action string, err error) {
	msg := describe(err)
	m.logger.Error(msg, "action", action, "err", err)
	m.status = msg
	m.statusErr = true
}

func (m *TodosModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *TodosModel) syncList() {
	items := make([]list.Item, 0, len(m.todos))
	for _, t := range m.todos {
		items = append(items, todoItem{t})
	}
	m.list.SetItems(items)

	dn, pn := stats(m.todos)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todoリスト"),
		successStyle.Render("✔"), dn,
		pendingStyle.Render("•"), pn,
		accentStyle.Render("Total"), len(m.todos),
	)
}

func (m TodosModel) loadCmd() tea.Cmd {
	ctx, api, session := m.ctx, m.api, m.session
	return func() tea.Msg {
		todos, err := api.List(ctx)
		return todosLoadedMsg{session: session, todos: todos, err: err}
	}
}

func (m TodosModel) createCmd(title string) tea.Cmd {
	ctx, api, session := m.ctx, m.api, m.session
	return func() tea.Msg {
		todo, err := api.Create(ctx, title)
		return todoCreatedMsg{session: session, todo: todo, err: err}
	}
}

func (m TodosModel) toggleCmd(id int) tea.Cmd {
	ctx, api, session := m.ctx, m.api, m.session
	return func() tea.Msg {
		todo, err := api.Complete(ctx, id)
		return todoToggledMsg{session: session, id: id, todo: todo, err: err}
	}
}

func (m TodosModel) deleteCmd(id int) tea.Cmd {
	ctx, api, session := m.ctx, m.api, m.session
	return func() tea.Msg {
		_, err := api.Delete(ctx, id)
		return todoDeletedMsg{session: session, id: id, err: err}
	}
}

func (m TodosModel) View() string {
	content := m.list.View()
	switch {
	case m.adding:
		title := "Todoを追加"
		if m.addErr != "" {
			title += "  " + errorStyle.Render(m.addErr)
		}
		content += "\n" + inputBarStyle.Render(title+"\n"+m.ti.View())
	case m.confirming:
		content += "\n" + inputBarStyle.Render(errorStyle.Render(fmt.Sprintf("%s #%d", confirmDeletePrompt, m.confirmID))+"  "+helpStyle.Render("y: 削除 / その他: キャンセル"))
	}
	if m.status != "" {
		style := mutedStyle
		if m.statusErr {
			style = errorStyle
		}
		content += "\n" + style.Render(m.status)
	}
	return panelString(content)
}

// describe prefers the client's per-operation message.
func describe(err error) string {
	var rf *client.RequestFailedError
	if errors.As(err, &rf) {
		return rf.Message()
	}
	return err.Error()
}

// small list stats used for the header
func stats(todos []model.Todo) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
