package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada-remote/internal/checkbox"
)

// RunTodos starts the interactive todo list and blocks until it quits.
func RunTodos(ctx context.Context, api TodoAPI, logger *log.Logger) error {
	p := tea.NewProgram(NewTodos(ctx, api, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// RunChecklist starts the interactive checklist. Toggles are persisted as
// they happen, so there is nothing to save on quit.
func RunChecklist(ctx context.Context, cl *checkbox.Checklist) error {
	p := tea.NewProgram(NewChecklist(cl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
