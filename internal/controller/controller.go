// Package controller owns the application state: the note store, the
// active selection, and the single in-flight AI job.
//
// A Controller is not safe for concurrent use. One goroutine (the UI update
// loop, or a CLI command) owns it. AI work runs in three steps so the slow
// middle part can leave that goroutine:
//
//	job, err := c.Begin(controller.JobAction, ai.Summarize) // owner
//	res := job.Run(ctx, gateway)                            // any goroutine
//	err = c.Finish(res)                                     // owner
package controller

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/gravitrone/scribble/internal/ai"
	"github.com/gravitrone/scribble/internal/note"
)

// ErrBusy is returned by Begin while another job is in flight.
var ErrBusy = errors.New("an AI operation is already running")

var errNoJob = errors.New("finish: result carries no job")

// Gateway is the AI surface the controller needs.
type Gateway interface {
	RunAction(ctx context.Context, content string, action ai.Action) (string, error)
	GenerateTitle(ctx context.Context, content string) string
}

// State is a read-only view for rendering.
type State struct {
	ActiveID  string
	Busy      bool
	LastError string
}

// Controller mediates every mutation of the note store.
type Controller struct {
	store   *note.Store
	gateway Gateway
	logger  *slog.Logger

	activeID string
	busy     bool
	lastErr  string

	seq     uint64 // last issued job sequence
	pending uint64 // sequence of the in-flight job, 0 when idle
}

// New creates a controller over store. The most recent note becomes active.
func New(store *note.Store, gateway Gateway, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{store: store, gateway: gateway, logger: logger}
	if n, ok := store.MostRecent(); ok {
		c.activeID = n.ID
	}
	return c
}

// Gateway returns the gateway jobs should run against.
func (c *Controller) Gateway() Gateway { return c.gateway }

// State returns the current render state.
func (c *Controller) State() State {
	return State{ActiveID: c.activeID, Busy: c.busy, LastError: c.lastErr}
}

// Busy reports whether a job is in flight.
func (c *Controller) Busy() bool { return c.busy }

// LastError returns the message of the last failed AI operation.
func (c *Controller) LastError() string { return c.lastErr }

// ClearError dismisses the last error.
func (c *Controller) ClearError() { c.lastErr = "" }

// Active returns the active note.
func (c *Controller) Active() (note.Note, bool) {
	if c.activeID == "" {
		return note.Note{}, false
	}
	return c.store.Get(c.activeID)
}

// Notes yields notes newest first.
func (c *Controller) Notes() iter.Seq[note.Note] {
	return c.store.SortedByRecency()
}

// Len returns the number of notes.
func (c *Controller) Len() int { return c.store.Len() }

// --- Note mutations ---

// CreateNote adds a note and makes it active.
func (c *Controller) CreateNote() (string, error) {
	id, err := c.store.Create()
	if id != "" {
		c.activeID = id
	}
	return id, err
}

// SelectNote makes id the active note.
func (c *Controller) SelectNote(id string) error {
	if _, ok := c.store.Get(id); !ok {
		return fmt.Errorf("select %s: %w", id, note.ErrNotFound)
	}
	c.activeID = id
	return nil
}

// DeleteNote removes id. Deleting the only note is silently ignored.
// Deleting the active note moves the selection to the most recent
// remaining note.
func (c *Controller) DeleteNote(id string) (bool, error) {
	deleted, err := c.store.Delete(id)
	if !deleted {
		return false, err
	}
	if id == c.activeID {
		c.activeID = ""
		if n, ok := c.store.MostRecent(); ok {
			c.activeID = n.ID
		}
	}
	return true, err
}

// EditTitle replaces the active note's title. No-op without a selection.
func (c *Controller) EditTitle(text string) error {
	if c.activeID == "" {
		return nil
	}
	return c.store.UpdateTitle(c.activeID, text)
}

// EditContent replaces the active note's content. No-op without a
// selection.
func (c *Controller) EditContent(text string) error {
	if c.activeID == "" {
		return nil
	}
	return c.store.UpdateContent(c.activeID, text)
}

// --- AI lifecycle ---

// Begin starts a job against the active note. It returns nil, nil when there
// is nothing to do: no active note or blank content.
func (c *Controller) Begin(kind JobKind, action ai.Action) (*Job, error) {
	if c.busy {
		return nil, ErrBusy
	}
	n, ok := c.Active()
	if !ok || strings.TrimSpace(n.Content) == "" {
		return nil, nil
	}

	c.seq++
	c.pending = c.seq
	c.busy = true
	c.lastErr = ""

	return &Job{
		seq:     c.seq,
		Kind:    kind,
		Action:  action,
		NoteID:  n.ID,
		Content: n.Content,
	}, nil
}

// Finish applies a job result and returns the controller to idle. The
// result lands on the note captured by Begin, whatever is active now.
// Only the pending job returns the controller to idle: results of other
// jobs are ignored, and a result without a job is rejected.
func (c *Controller) Finish(res Result) error {
	if res.Job == nil {
		return errNoJob
	}
	if res.Job.seq != c.pending {
		c.logger.Debug("ignoring stale ai result")
		return nil
	}
	c.pending = 0
	c.busy = false

	job := res.Job
	if res.Err != nil {
		c.lastErr = ai.UserMessage(res.Err)
		return nil
	}

	if _, ok := c.store.Get(job.NoteID); !ok {
		c.logger.Info("target note deleted, dropping ai result", "note", job.NoteID, "kind", job.Kind.String())
		return nil
	}

	switch job.Kind {
	case JobTitle:
		return c.store.UpdateTitle(job.NoteID, res.Text)
	default:
		return c.store.UpdateContent(job.NoteID, job.Action.ApplyResult(job.Content, res.Text))
	}
}

// RunAIAction runs action on the active note and waits for the result.
func (c *Controller) RunAIAction(ctx context.Context, action ai.Action) error {
	return c.runSync(ctx, JobAction, action)
}

// AutoTitle generates a title for the active note and waits for it.
func (c *Controller) AutoTitle(ctx context.Context) error {
	return c.runSync(ctx, JobTitle, "")
}

func (c *Controller) runSync(ctx context.Context, kind JobKind, action ai.Action) error {
	job, err := c.Begin(kind, action)
	if err != nil || job == nil {
		return err
	}
	res := job.Run(ctx, c.gateway)
	return c.Finish(res)
}
