package tasks

import (
	"errors"
	"fmt"
	"time"
)

// Namespace is the data-access namespace the DAO registers under.
const Namespace = "tasks"

var (
	// ErrInvalidID is returned when a task ID is not positive.
	ErrInvalidID = errors.New("task ID must be positive")

	// ErrEmptyAssignee is returned when a task has no assignee.
	ErrEmptyAssignee = errors.New("task assignee cannot be empty")

	// ErrEndBeforeStart is returned when a task ends before it starts.
	ErrEndBeforeStart = errors.New("task end date cannot precede its start date")

	// ErrInvalidPostpone is returned when a postponement is not positive.
	ErrInvalidPostpone = errors.New("postponement must be positive")
)

// Task is one row of the tasks table. Optional columns are pointers.
type Task struct {
	ID        int64      `json:"id"`
	Assignee  string     `json:"assignee"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Comments  *string    `json:"comments,omitempty"`
}

// Validate checks that the task can be stored.
func (t Task) Validate() error {
	if t.ID <= 0 {
		return ErrInvalidID
	}
	if t.Assignee == "" {
		return ErrEmptyAssignee
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return fmt.Errorf("%w: %s < %s", ErrEndBeforeStart,
			t.EndDate.Format(time.RFC3339), t.StartDate.Format(time.RFC3339))
	}
	return nil
}

// postponed returns the end date pushed back by d. A task without an end
// date is postponed from its start date, or from now if it has neither.
func (t Task) postponed(d time.Duration, now time.Time) time.Time {
	switch {
	case t.EndDate != nil:
		return t.EndDate.Add(d)
	case t.StartDate != nil:
		return t.StartDate.Add(d)
	default:
		return now.Add(d)
	}
}
