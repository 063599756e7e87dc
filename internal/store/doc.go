// Package store defines the store-session capability the unit-of-work layer
// is built on: Opener opens a Session, a Session executes statements and is
// closed when its unit of work ends.
//
// It also carries the error vocabulary shared by store implementations,
// including WithSuppressed for attaching cleanup failures (rollback, close)
// to the error that caused them without replacing it.
package store
