package domain

import (
	"errors"
	"time"
)

// DefaultListName is reported for lists whose payload carries no name.
const DefaultListName = "Untitled"

var (
	ErrListNotFound = errors.New("list not found")
	ErrListExists   = errors.New("list id already in use")
	ErrValidation   = errors.New("validation failed")
)

// Payload is the schema-free JSON document a client stores. Only "name" and
// "tasks" are ever interpreted server-side.
type Payload map[string]any

// Task is one entry of a payload's task list.
type Task struct {
	Text string
	Done bool
}

// Name returns the display name, or DefaultListName when missing or not a string.
func (p Payload) Name() string {
	if name, ok := p["name"].(string); ok && name != "" {
		return name
	}
	return DefaultListName
}

// Tasks extracts the ordered task entries. Malformed entries are skipped.
func (p Payload) Tasks() []Task {
	raw, ok := p["tasks"].([]any)
	if !ok {
		return nil
	}
	tasks := make([]Task, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, _ := entry["text"].(string)
		done, _ := entry["disabled"].(bool)
		tasks = append(tasks, Task{Text: text, Done: done})
	}
	return tasks
}

// Clone returns a shallow copy; nested values are shared.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// SharedList is a stored payload addressed by an unguessable id. An empty
// OwnerID marks an anonymous share that nobody can list or delete.
type SharedList struct {
	ID        string
	Payload   Payload
	OwnerID   string
	CreatedAt time.Time
}

// Anonymous reports whether the list has no owner.
func (l *SharedList) Anonymous() bool {
	return l.OwnerID == ""
}

// ListSummary is the lightweight view returned for "my lists".
type ListSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Notification describes a list received from another user.
type Notification struct {
	ListID       string
	ToEmail      string
	FromUsername string
	ListName     string
	Tasks        []Task
}
