// Package slot implements the local persistence substrate: a single named
// key-value entry holding the serialized note collection.
package slot

import (
	"errors"
	"sync"
)

// DefaultName is the slot key the note collection is stored under.
const DefaultName = "scribble-notes"

// ErrEmpty is returned by Load when nothing has been stored yet.
var ErrEmpty = errors.New("slot is empty")

// Slot is one named value in a local store. Save replaces the whole value.
type Slot interface {
	Name() string
	Load() ([]byte, error)
	Save(data []byte) error
}

// --- Memory ---

// Memory is an in-process slot, used by tests and for ephemeral sessions.
type Memory struct {
	mu      sync.Mutex
	name    string
	data    []byte
	set     bool
	saves   int
	saveErr error
}

// NewMemory creates an empty memory slot.
func NewMemory(name string) *Memory {
	if name == "" {
		name = DefaultName
	}
	return &Memory{name: name}
}

// NewMemoryWith creates a memory slot pre-filled with data.
func NewMemoryWith(name string, data []byte) *Memory {
	m := NewMemory(name)
	m.data = append([]byte(nil), data...)
	m.set = true
	return m
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrEmpty
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.set = true
	m.saves++
	return nil
}

// Saves reports how many successful writes the slot has seen.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailSaves makes subsequent Save calls return err. Pass nil to recover.
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}
