package controller

import (
	"context"
	"fmt"

	"github.com/gravitrone/scribble/internal/ai"
)

// JobKind selects what a job asks the gateway for.
type JobKind int

const (
	JobAction JobKind = iota
	JobTitle
)

func (k JobKind) String() string {
	switch k {
	case JobAction:
		return "action"
	case JobTitle:
		return "title"
	default:
		return fmt.Sprintf("JobKind(%d)", int(k))
	}
}

// Job is an immutable snapshot of one AI request: the target note id and
// its content at the moment the request was made.
type Job struct {
	seq     uint64
	Kind    JobKind
	Action  ai.Action
	NoteID  string
	Content string
}

// Result carries a job's outcome back to the controller.
type Result struct {
	Job  *Job
	Text string
	Err  error
}

// Run calls the gateway. It touches no controller state and may run on any
// goroutine.
func (j *Job) Run(ctx context.Context, gw Gateway) Result {
	if j.Kind == JobTitle {
		return Result{Job: j, Text: gw.GenerateTitle(ctx, j.Content)}
	}
	text, err := gw.RunAction(ctx, j.Content, j.Action)
	return Result{Job: j, Text: text, Err: err}
}
