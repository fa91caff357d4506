// Package modal tracks which task, if any, is open for editing. It is
// separate from the board store and never persisted.
package modal

import (
	"sync"

	"github.com/jask/kanban/internal/notify"
)

// State is a snapshot of the flag.
type State struct {
	Open        bool   `json:"isOpen"`
	TaskID      int64  `json:"taskId"`
	ColumnLabel string `json:"columnLabel"`
}

// Flag is the shared open/closed signal.
type Flag struct {
	mu        sync.RWMutex
	state     State
	listeners notify.Listeners
}

func New() *Flag {
	return &Flag{}
}

// Open marks the task as being edited and notifies.
func (f *Flag) Open(taskID int64, columnLabel string) {
	f.mu.Lock()
	f.state = State{Open: true, TaskID: taskID, ColumnLabel: columnLabel}
	f.mu.Unlock()
	f.listeners.Notify()
}

// Close clears the flag and notifies.
func (f *Flag) Close() {
	f.mu.Lock()
	f.state = State{}
	f.mu.Unlock()
	f.listeners.Notify()
}

func (f *Flag) AddListener(fn func()) (remove func()) {
	return f.listeners.Add(fn)
}

func (f *Flag) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *Flag) IsOpen() bool        { return f.State().Open }
func (f *Flag) TaskID() int64       { return f.State().TaskID }
func (f *Flag) ColumnLabel() string { return f.State().ColumnLabel }
