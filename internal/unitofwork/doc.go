// Package unitofwork scopes database handles to units of work.
//
// A data-access type is a struct whose exported func fields are its
// methods, each taking a context.Context first and returning an error last.
// Methods are classified read or write by a KindSource, by default the
// `dao` struct tag:
//
//	type DAO struct {
//		Insert   func(ctx context.Context, t Task) error          `dao:"write"`
//		FindByID func(ctx context.Context, id int) (Task, error)  `dao:"read"`
//	}
//
// Provider.GetProxy (or Get) returns a *DAO whose fields are filled with
// proxies. A proxied call asks the HandleManager for the handle of the
// caller's unit of work, opening one if none is open, builds the real
// implementation on that handle's session and calls it. Afterwards the
// handle is closed only if this call opened it. Nested calls made with the
// context the implementation receives are borrowers and share the handle,
// so a whole call tree uses one session.
//
// The unit of work is an ExecutionContext carried explicitly in the
// context.Context. A context without one starts a new unit of work at the
// first proxied call. HandleManager.Run and Middleware open a unit of
// work spanning several calls.
//
// Calls from one unit of work must not overlap; fan-out goroutines need
// their own ExecutionContext.
package unitofwork
