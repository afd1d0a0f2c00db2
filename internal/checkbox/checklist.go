package checkbox

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

// Entry pairs a checklist label with its checkbox.
type Entry struct {
	Label string
	Box   *Checkbox
}

// Checklist is an ordered set of checkboxes sharing one store.
type Checklist struct {
	entries []Entry
	index   map[string]int
}

// NewChecklist builds unhydrated checkboxes for items. Duplicate ids are rejected
// since they would share a store key.
func NewChecklist(items []model.ChecklistItem, store Store, logger *log.Logger) (*Checklist, error) {
	cl := &Checklist{index: make(map[string]int, len(items))}
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("checklist item %q: empty id", it.Label)
		}
		if _, dup := cl.index[it.ID]; dup {
			return nil, fmt.Errorf("checklist item %q: duplicate id", it.ID)
		}
		label := it.Label
		if label == "" {
			label = it.ID
		}
		cl.index[it.ID] = len(cl.entries)
		cl.entries = append(cl.entries, Entry{Label: label, Box: New(it.ID, store, it.Default, logger)})
	}
	return cl, nil
}

// Mount hydrates every checkbox.
func (cl *Checklist) Mount() {
	for _, e := range cl.entries {
		e.Box.Mount()
	}
}

func (cl *Checklist) Entries() []Entry { return cl.entries }

func (cl *Checklist) Len() int { return len(cl.entries) }

// Lookup returns the checkbox with id.
func (cl *Checklist) Lookup(id string) (*Checkbox, bool) {
	i, ok := cl.index[id]
	if !ok {
		return nil, false
	}
	return cl.entries[i].Box, true
}

// Progress counts checked boxes.
func (cl *Checklist) Progress() (done, total int) {
	for _, e := range cl.entries {
		if e.Box.Checked() {
			done++
		}
	}
	return done, len(cl.entries)
}
