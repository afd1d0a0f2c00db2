package model

// Todo is a task record as served by the /todos backend.
// The server assigns ID; Completed is only ever changed server-side.
type Todo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// NewTodo is the create payload.
type NewTodo struct {
	Title string `json:"title"`
}

// ChecklistItem describes one persistent checkbox on a tutorial page.
type ChecklistItem struct {
	ID      string `toml:"id" json:"id"`
	Label   string `toml:"label" json:"label"`
	Default bool   `toml:"default" json:"default"`
}
