package api

import (
	"time"

	"github.com/phrazzld/handlescope/internal/tasks"
)

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	ID        int64      `json:"id"         validate:"required,gt=0"`
	Assignee  string     `json:"assignee"   validate:"required,max=255"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Comments  *string    `json:"comments"   validate:"omitempty,max=1024"`
}

func (req CreateTaskRequest) toTask() tasks.Task {
	return tasks.Task{
		ID:        req.ID,
		Assignee:  req.Assignee,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Comments:  req.Comments,
	}
}

// ImportTasksRequest defines the payload for importing tasks in bulk.
type ImportTasksRequest struct {
	Tasks []CreateTaskRequest `json:"tasks" validate:"required,min=1,max=1000,dive"`
}

// PostponeTaskRequest defines the payload for postponing a task.
type PostponeTaskRequest struct {
	// Hours to push the end date back by.
	Hours int `json:"hours" validate:"required,gt=0,lte=8760"`
}

// TaskResponse is the response representation of a task. Timestamps are
// rendered in RFC 3339 with the offset they were read back with.
type TaskResponse struct {
	ID        int64      `json:"id"`
	Assignee  string     `json:"assignee"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Comments  *string    `json:"comments,omitempty"`
}

// TaskListResponse wraps a list of tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

func taskToResponse(t tasks.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Assignee:  t.Assignee,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		Comments:  t.Comments,
	}
}
