// Package checkbox keeps one boolean per identifier in a persistent
// key-value store, for marking tutorial steps done across sessions.
package checkbox

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"
)

// KeyPrefix is prepended to every identifier to form the store key.
const KeyPrefix = "checkbox-"

// Store is the persistent key-value capability a Checkbox reads and writes.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Checkbox is a single persisted flag. It is not safe for concurrent use.
type Checkbox struct {
	id       string
	store    Store
	logger   *log.Logger
	def      bool
	checked  bool
	hydrated bool
}

// New returns an unhydrated checkbox showing defaultChecked. A nil store
// behaves like an unavailable one.
func New(id string, store Store, defaultChecked bool, logger *log.Logger) *Checkbox {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Checkbox{id: id, store: store, logger: logger, def: defaultChecked, checked: defaultChecked}
}

func Key(id string) string { return KeyPrefix + id }

func (c *Checkbox) ID() string { return c.id }

func (c *Checkbox) Key() string { return Key(c.id) }

func (c *Checkbox) Checked() bool { return c.checked }

// Hydrated reports whether Mount has run.
func (c *Checkbox) Hydrated() bool { return c.hydrated }

// Mount adopts the persisted value when there is one. Otherwise (absent key,
// store failure, unparsable value) the box falls back to its default, which
// also undoes any toggle made before hydration since that one was never saved.
func (c *Checkbox) Mount() {
	c.checked = c.load()
	c.hydrated = true
}

func (c *Checkbox) load() bool {
	if c.store == nil {
		return c.def
	}
	raw, ok, err := c.store.Get(c.Key())
	if err != nil {
		c.logger.Debug("checkbox read skipped", "key", c.Key(), "err", err)
		return c.def
	}
	if !ok {
		return c.def
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Debug("checkbox value ignored", "key", c.Key(), "err", err)
		return c.def
	}
	return v
}

// Toggle flips the flag and returns the new value. The value is only
// written once hydrated, so a default never clobbers an unread one.
func (c *Checkbox) Toggle() bool {
	c.checked = !c.checked
	if !c.hydrated || c.store == nil {
		return c.checked
	}
	b, _ := json.Marshal(c.checked)
	if err := c.store.Set(c.Key(), b); err != nil {
		c.logger.Debug("checkbox write skipped", "key", c.Key(), "err", err)
	}
	return c.checked
}
