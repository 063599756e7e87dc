// Package tasks is the task-tracking data-access layer: a DAO over the tasks
// table, bound to whatever session the unit of work hands it, and a Service
// composing DAO calls into operations that each run in one unit of work.
package tasks
