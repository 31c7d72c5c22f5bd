package note

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitrone/scribble/internal/slot"
)

// Store owns the note collection and writes it to its slot after every
// mutation.
type Store struct {
	mu    sync.RWMutex
	notes map[string]*Note
	order []string // insertion order, breaks recency ties

	slot   slot.Slot
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	seeded bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides note id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger used for load fallbacks and write failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open loads the collection from sl. A missing or malformed value installs
// the seed note instead of failing. When the slot itself cannot be read the
// seed stays in memory and the slot is left alone until the first mutation.
func Open(sl slot.Slot, opts ...Option) *Store {
	s := &Store{
		notes:  make(map[string]*Note),
		slot:   sl,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := sl.Load()
	switch {
	case errors.Is(err, slot.ErrEmpty):
		s.installSeed(true)
		return s
	case err != nil:
		s.logger.Warn("stored notes could not be read, using seed note without saving", "slot", sl.Name(), "err", err)
		s.installSeed(false)
		return s
	}

	loaded, err := Decode(data)
	if err != nil {
		s.logger.Warn("stored notes unreadable, installing seed note", "slot", sl.Name(), "err", err)
		s.installSeed(true)
		return s
	}
	for i := range loaded {
		n := loaded[i]
		s.notes[n.ID] = &n
		s.order = append(s.order, n.ID)
	}
	return s
}

func (s *Store) installSeed(persist bool) {
	n := &Note{
		ID:        s.newID(),
		Title:     seedTitle,
		Content:   seedContent,
		UpdatedAt: s.now().UnixMilli(),
	}
	s.notes[n.ID] = n
	s.order = []string{n.ID}
	s.seeded = true
	if !persist {
		return
	}
	if err := s.persistLocked(); err != nil {
		s.logger.Warn("write seed note", "err", err)
	}
}

// Seeded reports whether Open fell back to the seed note.
func (s *Store) Seeded() bool { return s.seeded }

// Create inserts a note with the default title and returns its id.
func (s *Store) Create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, taken := s.notes[id]; !taken {
			break
		}
		id = s.newID()
	}
	s.notes[id] = &Note{
		ID:        id,
		Title:     DefaultTitle,
		UpdatedAt: s.now().UnixMilli(),
	}
	s.order = append(s.order, id)
	return id, s.persistLocked()
}

// Delete removes a note. It reports false without error when id is the only
// remaining note.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return false, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if len(s.notes) <= 1 {
		return false, nil
	}
	delete(s.notes, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true, s.persistLocked()
}

// UpdateContent replaces a note's content.
func (s *Store) UpdateContent(id, text string) error {
	return s.mutate(id, func(n *Note) { n.Content = text })
}

// UpdateTitle replaces a note's title.
func (s *Store) UpdateTitle(id, text string) error {
	return s.mutate(id, func(n *Note) { n.Title = text })
}

func (s *Store) mutate(id string, apply func(*Note)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	apply(n)
	n.UpdatedAt = max(s.now().UnixMilli(), n.UpdatedAt)
	return s.persistLocked()
}

// Get returns a copy of the note with id.
func (s *Store) Get(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	if !ok {
		return Note{}, false
	}
	return *n, true
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// IDs returns note ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Snapshot returns copies of all notes in insertion order.
func (s *Store) Snapshot() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []Note {
	out := make([]Note, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.notes[id])
	}
	return out
}

// SortedByRecency yields notes newest first, ties in insertion order. Each
// iteration sorts a fresh snapshot, so the sequence can be ranged repeatedly.
func (s *Store) SortedByRecency() iter.Seq[Note] {
	return func(yield func(Note) bool) {
		notes := s.Snapshot()
		slices.SortStableFunc(notes, func(a, b Note) int {
			return cmp.Compare(b.UpdatedAt, a.UpdatedAt)
		})
		for _, n := range notes {
			if !yield(n) {
				return
			}
		}
	}
}

// MostRecent returns the first note in recency order.
func (s *Store) MostRecent() (Note, bool) {
	for n := range s.SortedByRecency() {
		return n, true
	}
	return Note{}, false
}

func (s *Store) persistLocked() error {
	data, err := Encode(s.snapshotLocked())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.slot.Save(data); err != nil {
		s.logger.Warn("save notes", "slot", s.slot.Name(), "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
