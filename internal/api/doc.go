// Package api handles incoming HTTP requests, routing, request validation
// and response formatting for the task endpoints. Every request under /api
// runs as one unit of work: the handle opened for it is shared by all data
// access the request triggers and closed when the handler returns.
package api
