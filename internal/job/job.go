// Package job runs one comic posting: acquisition, publication and cleanup
// of the local image, tracked as a Run with a small state machine.
package job

import (
	"errors"
	"time"

	"github.com/maauso/comicpost/internal/job/id"
)

// Status represents the current state of a Run.
type Status string

const (
	// StatusAcquiring indicates the comic is being selected and downloaded.
	StatusAcquiring Status = "ACQUIRING"
	// StatusPublishing indicates the image is going through the upload protocol.
	StatusPublishing Status = "PUBLISHING"
	// StatusCompleted indicates the post was created.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the run stopped on an error.
	StatusFailed Status = "FAILED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusAcquiring:  {StatusPublishing, StatusFailed},
	StatusPublishing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

func canTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Run records what happened during one invocation.
type Run struct {
	// ID correlates log lines of this run.
	ID string
	// Status is the current run state.
	Status Status
	// ComicID is the chosen comic, zero until acquisition succeeds.
	ComicID int
	// ArtifactPath is the local image path, empty until acquisition succeeds.
	ArtifactPath string
	// PostID is the created wall post, zero unless the run completed.
	PostID int
	// Cleaned reports whether the local image was removed.
	Cleaned bool
	// Error contains the failure message if the run failed.
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
}

// New creates a Run in ACQUIRING state with a generated ID.
func New() *Run {
	return NewWithID(id.Generate())
}

// NewWithID creates a Run in ACQUIRING state with the given ID.
func NewWithID(runID string) *Run {
	return &Run{
		ID:        runID,
		Status:    StatusAcquiring,
		StartedAt: time.Now(),
	}
}

// TransitionTo changes the run status.
// Returns ErrInvalidTransition if the transition is not allowed.
func (r *Run) TransitionTo(status Status) error {
	if !canTransition(r.Status, status) {
		return ErrInvalidTransition
	}
	r.Status = status
	if r.IsTerminal() {
		r.CompletedAt = time.Now()
	}
	return nil
}

// Complete transitions the run to COMPLETED.
func (r *Run) Complete(postID int) error {
	if err := r.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	r.PostID = postID
	return nil
}

// Fail transitions the run to FAILED with an error message.
func (r *Run) Fail(errMsg string) error {
	if err := r.TransitionTo(StatusFailed); err != nil {
		return err
	}
	r.Error = errMsg
	return nil
}

// IsTerminal returns true if the run is in a terminal state.
func (r *Run) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
